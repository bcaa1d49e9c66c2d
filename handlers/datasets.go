// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/my-vote/auth"
	"github.com/danielhkuo/my-vote/cliparse"
	"github.com/danielhkuo/my-vote/db"
	"github.com/danielhkuo/my-vote/middleware"
	"github.com/danielhkuo/my-vote/models"
	"github.com/danielhkuo/my-vote/source"
)

// maxDatasetBytes bounds an imported dataset. A full federal House
// dataset is a few megabytes.
const maxDatasetBytes = 64 << 20

// DatasetHandler imports result datasets. store is nil when the server
// runs without a database.
type DatasetHandler struct {
	catalog *source.Catalog
	store   *db.Store
	cfg     cliparse.Config
}

func NewDatasetHandler(catalog *source.Catalog, store *db.Store, cfg cliparse.Config) *DatasetHandler {
	return &DatasetHandler{catalog: catalog, store: store, cfg: cfg}
}

func validChamber(chamber string) bool {
	return chamber == models.ChamberHouse || chamber == models.ChamberSenate
}

// Import handles POST /datasets/{chamber}
func (h *DatasetHandler) Import(w http.ResponseWriter, r *http.Request) {
	chamber := r.PathValue("chamber")
	if !validChamber(chamber) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown chamber")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(chamber, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	if h.store == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "No database configured")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDatasetBytes))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read dataset")
		return
	}

	records, err := source.Records(chamber, data)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	importID, err := h.store.Import(r.Context(), chamber, records)
	if errors.Is(err, db.ErrEmptyImport) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Dataset has no records")
		return
	}
	if err != nil {
		slog.Error("failed to import dataset", "chamber", chamber, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to import dataset")
		return
	}

	h.catalog.Invalidate(chamber)

	slog.Info("dataset imported",
		"request_id", middleware.RequestID(r),
		"import_id", importID,
		"chamber", chamber,
		"records", len(records),
		"importer", auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.ImportResponse{
		ImportID: importID,
		Chamber:  chamber,
		Records:  len(records),
	})
}

// Status handles GET /datasets/{chamber}
func (h *DatasetHandler) Status(w http.ResponseWriter, r *http.Request) {
	chamber := r.PathValue("chamber")
	if !validChamber(chamber) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown chamber")
		return
	}

	status := models.DatasetStatus{Chamber: chamber, Driver: h.catalog.Driver()}
	if h.store != nil {
		id, err := h.store.LatestImport(r.Context(), chamber)
		if err != nil {
			slog.Error("failed to query import", "chamber", chamber, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		status.ImportID = id
	}
	middleware.JSONResponse(w, http.StatusOK, status)
}
