// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/my-vote/count"
	"github.com/danielhkuo/my-vote/metrics"
	"github.com/danielhkuo/my-vote/middleware"
	"github.com/danielhkuo/my-vote/models"
	"github.com/danielhkuo/my-vote/source"
)

type SenateHandler struct {
	catalog *source.Catalog
	metrics *metrics.Metrics
}

func NewSenateHandler(catalog *source.Catalog, m *metrics.Metrics) *SenateHandler {
	return &SenateHandler{catalog: catalog, metrics: m}
}

// ListStates handles GET /senate/states
func (h *SenateHandler) ListStates(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalog.States(r.Context())
	if err != nil {
		writeLoadError(w, r, err, "Senate dataset")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, names)
}

// GetState handles GET /senate/states/{state}
func (h *SenateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.State(r.Context(), r.PathValue("state"))
	if err != nil {
		writeLoadError(w, r, err, "State")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, result)
}

// Narrate handles POST /senate/states/{state}/narrative
func (h *SenateHandler) Narrate(w http.ResponseWriter, r *http.Request) {
	method, b, err := readBallot(w, r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if method != models.VoteAboveTheLine && method != models.VoteBelowTheLine {
		middleware.ErrorResponse(w, http.StatusBadRequest, "method must be atl or btl")
		return
	}

	result, err := h.catalog.State(r.Context(), r.PathValue("state"))
	if err != nil {
		writeLoadError(w, r, err, "State")
		return
	}

	n, err := count.NarrateSenate(result, method, b)
	writeNarrative(w, r, h.metrics, models.ChamberSenate, method, models.NarrativeResponse{Senate: &n}, err)
}
