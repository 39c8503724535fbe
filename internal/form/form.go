// Package form implements the mood submission form: a preset-or-custom mood
// selection plus a result count, validated locally before the caller's
// submit callback is invoked.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/meronoumer/moodreads/internal/domain"
	"github.com/meronoumer/moodreads/internal/metrics"
)

// ErrSubmitDisabled is returned while a previous submission is in flight.
var ErrSubmitDisabled = errors.New("submission already in flight")

// SubmitFunc starts a submission and returns a channel closed on completion.
type SubmitFunc func(ctx context.Context, mood string, limit int) <-chan struct{}

type Option func(*Form)

// WithAccentObserver registers a callback notified whenever the selection
// changes the display accent.
func WithAccentObserver(fn func(accent string)) Option {
	return func(f *Form) { f.onAccent = fn }
}

func WithDefaultLimit(n int) Option {
	return func(f *Form) {
		if ValidLimit(n) {
			f.limit = n
		}
	}
}

type Form struct {
	mu       sync.Mutex
	preset   string
	custom   string
	isCustom bool
	limit    int
	busy     bool
	message  string

	onSubmit SubmitFunc
	onAccent func(string)
}

func New(onSubmit SubmitFunc, opts ...Option) *Form {
	f := &Form{
		limit:    DefaultResultCount,
		onSubmit: onSubmit,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Snapshot is a copy of the form's state for rendering.
type Snapshot struct {
	Preset   string
	Custom   string
	IsCustom bool
	Limit    int
	Disabled bool
	Message  string
	Accent   string
}

func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Preset:   f.preset,
		Custom:   f.custom,
		IsCustom: f.isCustom,
		Limit:    f.limit,
		Disabled: f.busy,
		Message:  f.message,
		Accent:   f.accentLocked(),
	}
}

// SelectPreset picks a preset mood and discards any custom text.
func (f *Form) SelectPreset(label string) error {
	p, ok := LookupPreset(label)
	if !ok {
		return f.reject(&domain.ValidationError{Field: "mood", Msg: fmt.Sprintf(msgUnknownMood, label)})
	}

	f.mu.Lock()
	f.preset = p.Label
	f.custom = ""
	f.isCustom = false
	f.message = ""
	f.mu.Unlock()

	f.notifyAccent(p.Accent)
	return nil
}

// SetCustom switches to free-text entry and clears the preset.
func (f *Form) SetCustom(text string) {
	f.mu.Lock()
	f.custom = text
	f.preset = ""
	f.isCustom = true
	f.message = ""
	f.mu.Unlock()

	f.notifyAccent(DefaultAccent)
}

func (f *Form) ClearSelection() {
	f.mu.Lock()
	f.custom = ""
	f.preset = ""
	f.isCustom = false
	f.mu.Unlock()

	f.notifyAccent(DefaultAccent)
}

func (f *Form) SetLimit(n int) error {
	if !ValidLimit(n) {
		return f.reject(&domain.ValidationError{Field: "limit", Msg: msgBadLimit})
	}
	f.mu.Lock()
	f.limit = n
	f.mu.Unlock()
	return nil
}

func (f *Form) Limit() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.limit
}

// Disabled reports whether the submit control is disabled.
func (f *Form) Disabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Submit validates the selection and hands the trimmed mood and limit to the
// callback. Validation failures are returned synchronously as
// *domain.ValidationError and never reach the callback. The returned channel
// closes after the callback completed and the form was re-enabled.
func (f *Form) Submit(ctx context.Context) (<-chan struct{}, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return nil, ErrSubmitDisabled
	}

	sub := Submission{Mood: f.moodLocked(), Limit: f.limit}
	if err := sub.Validate(); err != nil {
		f.mu.Unlock()
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, f.reject(verr)
		}
		return nil, err
	}
	f.message = ""
	f.busy = true
	f.mu.Unlock()

	pending := f.onSubmit(ctx, sub.Mood, sub.Limit)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer f.setBusy(false)
		if pending != nil {
			<-pending
		}
	}()
	return done, nil
}

// reject records err as the form's visible message.
func (f *Form) reject(err *domain.ValidationError) error {
	f.mu.Lock()
	f.message = err.Msg
	f.mu.Unlock()
	metrics.SubmissionsTotal.WithLabelValues("validation").Inc()
	return err
}

func (f *Form) setBusy(b bool) {
	f.mu.Lock()
	f.busy = b
	f.mu.Unlock()
}

func (f *Form) moodLocked() string {
	if f.isCustom {
		return f.custom
	}
	return f.preset
}

func (f *Form) accentLocked() string {
	if f.isCustom || f.preset == "" {
		return DefaultAccent
	}
	return AccentFor(f.preset)
}

func (f *Form) notifyAccent(accent string) {
	if f.onAccent != nil {
		f.onAccent(accent)
	}
}
