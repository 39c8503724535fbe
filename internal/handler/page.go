package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/meronoumer/moodreads/internal/domain"
	"github.com/meronoumer/moodreads/internal/form"
	"github.com/meronoumer/moodreads/internal/logger"
	"github.com/meronoumer/moodreads/internal/view"
)

// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, h.sessions.Peek(r), http.StatusOK)
}

// POST /submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	v := h.sessions.ViewFor(w, r)
	if err := r.ParseForm(); err != nil {
		h.writePage(w, r, v, http.StatusBadRequest)
		return
	}

	if v.SubmitDisabled() {
		h.writePage(w, r, v, http.StatusConflict)
		return
	}

	f := v.Form()
	preset := r.PostForm.Get("preset")
	custom := r.PostForm.Get("custom")
	switch {
	case strings.TrimSpace(custom) != "":
		f.SetCustom(custom)
	case preset != "":
		if err := f.SelectPreset(preset); err != nil {
			h.writePage(w, r, v, http.StatusUnprocessableEntity)
			return
		}
	default:
		f.ClearSelection()
	}

	if raw := r.PostForm.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = 0
		}
		if err := f.SetLimit(n); err != nil {
			h.writePage(w, r, v, http.StatusUnprocessableEntity)
			return
		}
	}

	if _, err := f.Submit(detach(r)); err != nil {
		switch {
		case domain.IsValidationError(err):
			h.writePage(w, r, v, http.StatusUnprocessableEntity)
		case errors.Is(err, form.ErrSubmitDisabled):
			h.writePage(w, r, v, http.StatusConflict)
		default:
			h.writePage(w, r, v, http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// POST /quick submits an example mood directly, bypassing the form's
// in-flight guard.
func (h *Handler) Quick(w http.ResponseWriter, r *http.Request) {
	v := h.sessions.ViewFor(w, r)
	if err := r.ParseForm(); err != nil {
		h.writePage(w, r, v, http.StatusBadRequest)
		return
	}

	mood, err := form.Normalize(r.PostForm.Get("mood"))
	if err != nil {
		h.writePage(w, r, v, http.StatusBadRequest)
		return
	}

	v.Submit(detach(r), mood, v.Form().Limit())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) writePage(w http.ResponseWriter, r *http.Request, v *view.View, status int) {
	var buf bytes.Buffer
	if err := v.Render(&buf); err != nil {
		logger.Component(r.Context(), "handler").WithError(err).Error("render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// the backend call outlives the HTTP request that triggered it
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
