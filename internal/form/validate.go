package form

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/meronoumer/moodreads/internal/domain"
)

const (
	msgMoodRequired = "Please pick a mood or describe how you feel."
	msgBadLimit     = "Choose how many books to show: 3, 6, 9 or 12."
	msgUnknownMood  = "%q is not one of the listed moods."
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Submission is what the form hands to its callback.
type Submission struct {
	Mood  string `json:"mood" validate:"required"`
	Limit int    `json:"limit" validate:"oneof=3 6 9 12"`
}

// Validate trims the mood in place and checks both fields.
func (s *Submission) Validate() error {
	s.Mood = strings.TrimSpace(s.Mood)
	if err := validatorInstance().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Limit" {
			return &domain.ValidationError{Field: "limit", Msg: msgBadLimit}
		}
		return &domain.ValidationError{Field: "mood", Msg: msgMoodRequired}
	}
	return nil
}

// Normalize trims a mood string and rejects blank input.
func Normalize(text string) (string, error) {
	mood := strings.TrimSpace(text)
	if err := validatorInstance().Var(mood, "required"); err != nil {
		return "", &domain.ValidationError{Field: "mood", Msg: msgMoodRequired}
	}
	return mood, nil
}

// ValidLimit reports whether n is a selectable result count.
func ValidLimit(n int) bool {
	return validatorInstance().Var(n, "oneof=3 6 9 12") == nil
}
