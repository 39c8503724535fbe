package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/meronoumer/moodreads/internal/domain"
	"github.com/meronoumer/moodreads/internal/form"
	"github.com/meronoumer/moodreads/internal/logger"
)

// POST /api/recommend
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	req := form.Submission{Limit: form.DefaultResultCount}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be JSON with mood and limit")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	result, err := h.service.GetRecommendations(r.Context(), req.Mood, req.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyResult) {
			writeError(w, http.StatusNotFound, "no_results",
				fmt.Sprintf("No recommendations for mood %q", req.Mood))
			return
		}
		logger.Component(r.Context(), "handler").WithError(err).Warn("recommend failed")
		// Request timeout
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			writeError(w, http.StatusServiceUnavailable, "request_timeout",
				"Request timed out, please try again")
			return
		}
		if errors.Is(err, domain.ErrBackendUnavailable) {
			writeError(w, http.StatusBadGateway, "backend_unavailable",
				"Recommendation backend is temporarily unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, RecommendationResponse{
		Mood:            req.Mood,
		Recommendations: result.Books,
		Metadata: domain.RecommendationMeta{
			CacheHit:    result.CacheHit,
			Endpoint:    result.Endpoint,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Books),
		},
	})
}

// DELETE /api/cache/{mood}
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "mood")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	mood, err := form.Normalize(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	if err := h.service.ClearCache(r.Context(), mood); err != nil {
		logger.Component(r.Context(), "handler").WithError(err).Error("clear cache failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/state
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	v := h.sessions.Peek(r)
	writeJSON(w, http.StatusOK, StateResponse{
		State:          v.State(),
		Accent:         v.Accent(),
		SubmitDisabled: v.SubmitDisabled(),
	})
}
