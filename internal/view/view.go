// Package view owns the recommendation request lifecycle for one page and
// renders it as HTML.
//
// A View moves between Idle, Loading, Success and Error. Every Submit enters
// Loading synchronously and tags the request with a sequence number; when
// requests overlap only the completion carrying the latest sequence number
// is applied. After Close, completions are dropped.
package view

import (
	"context"
	"sync"

	"github.com/meronoumer/moodreads/internal/domain"
	"github.com/meronoumer/moodreads/internal/form"
	"github.com/meronoumer/moodreads/internal/logger"
	"github.com/meronoumer/moodreads/internal/metrics"
)

// Recommender fetches books for a mood.
type Recommender interface {
	Recommend(ctx context.Context, mood string, limit int) ([]domain.Book, error)
}

var DefaultExamples = []string{
	"cozy rainy afternoon",
	"adventurous and curious",
	"nostalgic for summer",
	"need something uplifting",
}

type View struct {
	mu       sync.Mutex
	rec      Recommender
	state    State
	seq      uint64
	inFlight int
	closed   bool
	accent   string
	examples []string

	form *form.Form
}

type Option func(*View)

// WithExamples replaces the moods offered on the empty page. An empty list
// keeps DefaultExamples.
func WithExamples(examples []string) Option {
	return func(v *View) {
		if len(examples) > 0 {
			v.examples = examples
		}
	}
}

func WithFormOptions(opts ...form.Option) Option {
	return func(v *View) {
		v.form = form.New(v.Submit, append([]form.Option{form.WithAccentObserver(v.setAccent)}, opts...)...)
	}
}

func New(rec Recommender, opts ...Option) *View {
	v := &View{
		rec:      rec,
		accent:   form.DefaultAccent,
		examples: DefaultExamples,
	}
	v.form = form.New(v.Submit, form.WithAccentObserver(v.setAccent))
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Form returns the view's submission form.
func (v *View) Form() *form.Form {
	return v.form
}

// Submit enters Loading(limit) and issues one backend request in the
// background. The returned channel closes once the outcome was applied or
// discarded.
func (v *View) Submit(ctx context.Context, mood string, limit int) <-chan struct{} {
	done := make(chan struct{})

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		close(done)
		return done
	}
	v.seq++
	seq := v.seq
	v.state = loadingState(mood, limit)
	v.inFlight++
	v.mu.Unlock()

	go func() {
		defer close(done)
		defer v.release()

		books, err := v.rec.Recommend(ctx, mood, limit)
		v.apply(ctx, seq, settle(mood, books, err), err)
	}()

	return done
}

func (v *View) apply(ctx context.Context, seq uint64, next State, err error) {
	log := logger.Component(ctx, "view").WithField("mood", next.Mood).WithField("seq", seq)

	v.mu.Lock()
	switch {
	case v.closed:
		v.mu.Unlock()
		log.Debug("view closed, dropping completion")
		return
	case seq != v.seq:
		latest := v.seq
		v.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("stale").Inc()
		log.WithField("latest", latest).Debug("stale completion dropped")
		return
	}
	v.state = next
	v.mu.Unlock()

	switch next.Kind {
	case KindFailure:
		metrics.SubmissionsTotal.WithLabelValues("failure").Inc()
		log.WithError(err).Warn("recommendation request failed")
	case KindNoResults:
		metrics.SubmissionsTotal.WithLabelValues("no_results").Inc()
		log.Info("no recommendations for mood")
	default:
		metrics.SubmissionsTotal.WithLabelValues("success").Inc()
		log.WithField("count", len(next.Results)).Info("recommendations received")
	}
}

func (v *View) release() {
	v.mu.Lock()
	v.inFlight--
	v.mu.Unlock()
}

// State returns a copy of the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

// SubmitDisabled reports whether the submit control is unavailable: the form
// is busy or any submission, quick ones included, is still pending.
func (v *View) SubmitDisabled() bool {
	if v.form.Disabled() {
		return true
	}
	return v.Loading()
}

func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Phase == PhaseLoading
}

// InFlight counts requests that have not returned yet, stale ones included.
func (v *View) InFlight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inFlight
}

func (v *View) Accent() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.accent
}

func (v *View) setAccent(accent string) {
	v.mu.Lock()
	v.accent = accent
	v.mu.Unlock()
}

// Close tears the view down. Requests still in flight finish but their
// results are discarded.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
