// Package mockbackend is a stand-in recommendation backend for local
// development. It answers POST /recommend with a stable list cycled from a
// handful of sample books.
package mockbackend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/meronoumer/moodreads/internal/domain"
)

const defaultLimit = 5

var validate = validator.New(validator.WithRequiredStructEnabled())

// Request mirrors what the backend accepts; Sentiment is accepted and ignored.
type Request struct {
	Mood      string   `json:"mood" validate:"required"`
	Sentiment *string  `json:"sentiment,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	Limit     *int     `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

func score(v float64) *float64 { return &v }

var samples = []domain.Book{
	{Title: "The Little Guide to Feeling Good", Author: "A. Author", Genres: []string{"self-help"}, Score: score(0.9)},
	{Title: "A Cozy Mystery", Author: "B. Writer", Genres: []string{"mystery", "cozy"}, Score: score(0.85)},
	{Title: "Space Adventures", Author: "C. Scribe", Genres: []string{"sci-fi"}, Score: score(0.8)},
	{Title: "Historical Tales", Author: "D. Chronicler", Genres: []string{"history"}, Score: score(0.75)},
	{Title: "Poems for Quiet Nights", Author: "E. Lyric", Genres: []string{"poetry"}, Score: score(0.72)},
}

// Generate returns up to limit numbered copies of the samples, preferring
// those sharing a genre with the filter. It gives up after limit*10 probes.
func Generate(limit int, genres []string) []domain.Book {
	want := make(map[string]bool, len(genres))
	for _, g := range genres {
		want[g] = true
	}

	out := make([]domain.Book, 0, limit)
	for i := 0; len(out) < limit; i++ {
		item := samples[i%len(samples)]
		if len(want) == 0 || sharesGenre(item.Genres, want) {
			item.Title = fmt.Sprintf("%s (%d)", item.Title, len(out)+1)
			item.Genres = append([]string(nil), item.Genres...)
			out = append(out, item)
		}
		if i+1 > limit*10 {
			break
		}
	}
	return out
}

func sharesGenre(have []string, want map[string]bool) bool {
	for _, g := range have {
		if want[g] {
			return true
		}
	}
	return false
}

// Handler returns the mock backend's router.
func Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/recommend", recommend)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func recommend(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid json body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": detailFor(err)})
		return
	}

	limit := defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	writeJSON(w, http.StatusOK, domain.RecommendResponse{Recommendations: Generate(limit, req.Genres)})
}

func detailFor(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Mood" {
		return "mood is required"
	}
	return "limit must be between 1 and 50"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
