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

type HouseHandler struct {
	catalog *source.Catalog
	metrics *metrics.Metrics
}

func NewHouseHandler(catalog *source.Catalog, m *metrics.Metrics) *HouseHandler {
	return &HouseHandler{catalog: catalog, metrics: m}
}

// ListDivisions handles GET /house/divisions
func (h *HouseHandler) ListDivisions(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalog.Divisions(r.Context())
	if err != nil {
		writeLoadError(w, r, err, "House dataset")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, names)
}

// GetDivision handles GET /house/divisions/{division}
func (h *HouseHandler) GetDivision(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.Division(r.Context(), r.PathValue("division"))
	if err != nil {
		writeLoadError(w, r, err, "Division")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, result)
}

// Narrate handles POST /house/divisions/{division}/narrative
func (h *HouseHandler) Narrate(w http.ResponseWriter, r *http.Request) {
	_, b, err := readBallot(w, r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.catalog.Division(r.Context(), r.PathValue("division"))
	if err != nil {
		writeLoadError(w, r, err, "Division")
		return
	}

	n, err := count.NarrateHouse(result, b)
	writeNarrative(w, r, h.metrics, models.ChamberHouse, result.Method.Type, models.NarrativeResponse{House: &n}, err)
}
