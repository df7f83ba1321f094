// Package session keeps calculator engines alive between requests. Each
// session owns one engine and serializes every mutation of it.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"go-chi-calculator/internal/engine"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrCapacity = errors.New("session capacity reached")
)

const (
	DefaultTTL         = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// Session is one calculator on a user's screen.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	engine *engine.Engine

	// Read and written without mu so the store never waits on an engine.
	lastUsed atomic.Int64
	removed  atomic.Bool
}

// Apply runs fn with exclusive access to the session engine and returns the
// resulting state. The snapshot is taken even when fn fails.
//
// Once the session has been deleted or swept, Apply returns ErrNotFound
// without calling fn.
func (s *Session) Apply(fn func(*engine.Engine) error) (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removed.Load() {
		return s.engine.Snapshot(), ErrNotFound
	}

	err := fn(s.engine)
	return s.engine.Snapshot(), err
}

// Snapshot returns the current engine state.
func (s *Session) Snapshot() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) touch(t time.Time) {
	s.lastUsed.Store(t.UnixNano())
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithMaxSessions caps live sessions. Zero or less means unlimited.
func WithMaxSessions(n int) Option {
	return func(s *Store) { s.max = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithObserver registers a callback invoked with the live session count
// every time it changes.
func WithObserver(fn func(active int)) Option {
	return func(s *Store) { s.observe = fn }
}

// Store is an in-memory session registry safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl     time.Duration
	max     int
	now     func() time.Time
	observe func(int)
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      DefaultTTL,
		max:      DefaultMaxSessions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		return nil, ErrCapacity
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		engine:    engine.New(),
	}
	sess.touch(now)
	s.sessions[sess.ID] = sess
	s.notify()

	return sess, nil
}

// Get returns the session and marks it as used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	sess.touch(s.now())
	return sess, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.removed.Store(true)
	delete(s.sessions, id)
	s.notify()

	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and reports how many
// were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0

	for id, sess := range s.sessions {
		if sess.LastUsed().Before(cutoff) {
			sess.removed.Store(true)
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.notify()
	}
	return removed
}

// Run sweeps every interval until ctx is done. onSweep, when non-nil, is
// called after each sweep that removed sessions.
func (s *Store) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// notify must be called with s.mu held.
func (s *Store) notify() {
	if s.observe != nil {
		s.observe(len(s.sessions))
	}
}
