// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/danielhkuo/my-vote/ballot"
	"github.com/danielhkuo/my-vote/count"
	"github.com/danielhkuo/my-vote/metrics"
	"github.com/danielhkuo/my-vote/middleware"
	"github.com/danielhkuo/my-vote/models"
	"github.com/danielhkuo/my-vote/source"
)

// maxBallotBytes bounds a narrative request body.
const maxBallotBytes = 1 << 20

// readBallot reads a ballot from a JSON body or from a form post, where
// the "method" field is the voting method and every other field is a box.
func readBallot(w http.ResponseWriter, r *http.Request) (string, ballot.Ballot, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBallotBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if ct == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxBallotBytes); err != nil {
				return "", nil, fmt.Errorf("invalid form: %w", err)
			}
		} else if err := r.ParseForm(); err != nil {
			return "", nil, fmt.Errorf("invalid form: %w", err)
		}
		return r.PostForm.Get("method"), ballot.FromForm(r.PostForm, "method"), nil
	}

	var req models.NarrativeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		return "", nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return req.Method, ballot.Ballot(req.Preferences), nil
}

// writeLoadError maps a catalog failure to a response. what names the
// requested record in the 404 message.
func writeLoadError(w http.ResponseWriter, r *http.Request, err error, what string) {
	// A missing dataset wraps both, and is a fetch failure
	switch {
	case errors.Is(err, source.ErrUnavailable):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Dataset unavailable")
	case errors.Is(err, source.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, what+" not found")
	default:
		slog.Error("failed to load result",
			"request_id", middleware.RequestID(r),
			"path", r.URL.Path,
			"error", err,
		)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Result data is inconsistent")
	}
}

// writeNarrative answers a replay. An incomplete ballot is a normal
// answer with no narrative; any other error is a data problem.
func writeNarrative(w http.ResponseWriter, r *http.Request, m *metrics.Metrics, chamber, method string, resp models.NarrativeResponse, err error) {
	switch {
	case err == nil:
		m.Narration(chamber, method, metrics.OutcomeNarrated)
		resp.Valid = true
		middleware.JSONResponse(w, http.StatusOK, resp)
	case errors.Is(err, count.ErrIncompleteBallot):
		m.Narration(chamber, method, metrics.OutcomeIncomplete)
		middleware.JSONResponse(w, http.StatusOK, models.NarrativeResponse{Valid: false})
	default:
		m.Narration(chamber, method, metrics.OutcomeError)
		slog.Error("failed to narrate ballot",
			"request_id", middleware.RequestID(r),
			"chamber", chamber,
			"path", r.URL.Path,
			"error", err,
		)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Result data is inconsistent")
	}
}
