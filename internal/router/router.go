package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meronoumer/moodreads/internal/handler"
	mw "github.com/meronoumer/moodreads/internal/middleware"
	"github.com/meronoumer/moodreads/internal/view"
)

type Options struct {
	// SubmitRateLimit is the per-IP budget for submit routes per minute.
	// Zero disables limiting.
	SubmitRateLimit int
}

func Setup(h *handler.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(mw.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Routes
	r.Get("/", h.Index)
	r.Get("/api/state", h.State)
	r.Get("/health", healthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", view.Static())

	r.Group(func(r chi.Router) {
		if opts.SubmitRateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.SubmitRateLimit, time.Minute))
		}
		r.Post("/submit", h.Submit)
		r.Post("/quick", h.Quick)
		r.Post("/api/recommend", h.Recommend)
		r.Delete("/api/cache/{mood}", h.ClearCache)
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
