package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meronoumer/moodreads/internal/logger"
	"github.com/meronoumer/moodreads/internal/metrics"
	"github.com/meronoumer/moodreads/internal/view"
)

const (
	sessionCookie      = "moodreads_session"
	defaultMaxSessions = 10000
)

type session struct {
	view     *view.View
	lastSeen time.Time
}

// Sessions keeps one View per browser, keyed by a cookie. Sessions are only
// started by submissions; at most max are kept and the least recently seen
// one is closed to make room.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*session
	newView func() *view.View
	idle    time.Duration
	max     int
	now     func() time.Time
}

type SessionOption func(*Sessions)

func WithMaxSessions(n int) SessionOption {
	return func(s *Sessions) {
		if n > 0 {
			s.max = n
		}
	}
}

func NewSessions(newView func() *view.View, idle time.Duration, opts ...SessionOption) *Sessions {
	s := &Sessions{
		entries: make(map[string]*session),
		newView: newView,
		idle:    idle,
		max:     defaultMaxSessions,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Peek returns the caller's view without starting a session. Callers with
// no known cookie get a fresh idle view that is not tracked.
func (s *Sessions) Peek(r *http.Request) *view.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.lookupLocked(r); ok {
		return v
	}
	return s.newView()
}

// ViewFor returns the caller's view, starting a new session when the
// cookie is missing or unknown.
func (s *Sessions) ViewFor(w http.ResponseWriter, r *http.Request) *view.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.lookupLocked(r); ok {
		return v
	}

	if len(s.entries) >= s.max {
		s.evictOldestLocked(r.Context())
	}

	id := uuid.NewString()
	sess := &session{view: s.newView(), lastSeen: s.now()}
	s.entries[id] = sess
	metrics.ActiveSessions.Set(float64(len(s.entries)))

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	logger.Component(r.Context(), "session").WithField("session", id).Debug("session started")
	return sess.view
}

func (s *Sessions) lookupLocked(r *http.Request) (*view.View, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	sess, ok := s.entries[c.Value]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.view, true
}

func (s *Sessions) evictOldestLocked(ctx context.Context) {
	var (
		oldestID string
		oldest   *session
	)
	for id, sess := range s.entries {
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, sess
		}
	}
	if oldest == nil {
		return
	}
	oldest.view.Close()
	delete(s.entries, oldestID)
	logger.Component(ctx, "session").WithField("session", oldestID).Info("session limit reached, oldest session closed")
}

// Sweep closes and forgets sessions idle for longer than the idle timeout.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idle)
	evicted := 0
	for id, sess := range s.entries {
		if sess.lastSeen.Before(cutoff) {
			sess.view.Close()
			delete(s.entries, id)
			evicted++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.entries)))
	return evicted
}

// Run sweeps periodically until ctx is done, then closes every view.
func (s *Sessions) Run(ctx context.Context) {
	interval := s.idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := logger.Component(ctx, "session")
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.WithField("evicted", n).Info("idle sessions closed")
			}
		}
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.entries {
		sess.view.Close()
		delete(s.entries, id)
	}
	metrics.ActiveSessions.Set(0)
}
