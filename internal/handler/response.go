package handler

import (
	"github.com/meronoumer/moodreads/internal/domain"
	"github.com/meronoumer/moodreads/internal/view"
)

type RecommendationResponse struct {
	Mood            string                    `json:"mood"`
	Recommendations []domain.Book             `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type StateResponse struct {
	State          view.State `json:"state"`
	Accent         string     `json:"accent"`
	SubmitDisabled bool       `json:"submit_disabled"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
