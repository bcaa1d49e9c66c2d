// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/my-vote/cliparse"
	"github.com/danielhkuo/my-vote/db"
	"github.com/danielhkuo/my-vote/handlers"
	"github.com/danielhkuo/my-vote/metrics"
	"github.com/danielhkuo/my-vote/middleware"
	"github.com/danielhkuo/my-vote/source"
)

// NewRouter registers every endpoint. store and m may be nil.
func NewRouter(catalog *source.Catalog, store *db.Store, cfg cliparse.Config, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	houseHandler := handlers.NewHouseHandler(catalog, m)
	senateHandler := handlers.NewSenateHandler(catalog, m)
	datasetHandler := handlers.NewDatasetHandler(catalog, store, cfg)

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(m, pattern, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", m.Handler())

	// House
	handle("GET /house/divisions", houseHandler.ListDivisions)
	handle("GET /house/divisions/{division}", houseHandler.GetDivision)
	handle("POST /house/divisions/{division}/narrative", houseHandler.Narrate)

	// Senate
	handle("GET /senate/states", senateHandler.ListStates)
	handle("GET /senate/states/{state}", senateHandler.GetState)
	handle("POST /senate/states/{state}/narrative", senateHandler.Narrate)

	// Datasets (import requires X-Admin-Key)
	handle("GET /datasets/{chamber}", datasetHandler.Status)
	handle("POST /datasets/{chamber}", datasetHandler.Import)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("my-vote API v1"))
	})

	return mux
}
