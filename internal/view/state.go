package view

import (
	"errors"

	"github.com/meronoumer/moodreads/internal/domain"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ErrorKind separates "the backend had nothing" from "the request failed".
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNoResults
	KindFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoResults:
		return "no_results"
	case KindFailure:
		return "failure"
	default:
		return ""
	}
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

const (
	NoResultsTitle   = "No results"
	NoResultsMessage = "No results for this mood. Try another mood or describe it differently."
	FailureTitle     = "Something went wrong"
	FailureMessage   = "Something went wrong while fetching recommendations. Check your network and try again."
)

// State is the request lifecycle. Exactly one Phase holds; the other fields
// are only meaningful for their phase.
type State struct {
	Phase     Phase         `json:"phase"`
	Mood      string        `json:"mood,omitempty"`
	Requested int           `json:"requested,omitempty"`
	Results   []domain.Book `json:"results,omitempty"`
	Kind      ErrorKind     `json:"kind,omitempty"`
	Message   string        `json:"message,omitempty"`
}

func loadingState(mood string, limit int) State {
	return State{Phase: PhaseLoading, Mood: mood, Requested: limit}
}

// settle maps a finished request onto the next state.
func settle(mood string, books []domain.Book, err error) State {
	switch {
	case errors.Is(err, domain.ErrEmptyResult):
		return State{Phase: PhaseError, Mood: mood, Kind: KindNoResults, Message: NoResultsMessage}
	case err != nil:
		return State{Phase: PhaseError, Mood: mood, Kind: KindFailure, Message: FailureMessage}
	case len(books) == 0:
		return State{Phase: PhaseError, Mood: mood, Kind: KindNoResults, Message: NoResultsMessage}
	default:
		return State{Phase: PhaseSuccess, Mood: mood, Results: books}
	}
}

func (s State) clone() State {
	if s.Results != nil {
		s.Results = append([]domain.Book(nil), s.Results...)
	}
	return s
}
