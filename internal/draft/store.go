package draft

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrSessionRequired = errors.New("session id is required")

// Cache is the durable key/value store drafts are mirrored to.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

func draftKey(sessionID string) string { return "ratingData:" + sessionID }
func hintsKey(sessionID string) string { return "session:" + sessionID }

// lockStripes bounds the per-session write locks a Manager holds.
const lockStripes = 64

// Store is one request's view of a session draft. The cache holds the
// authoritative copy; every write re-reads it before applying a change.
// All methods are safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	id     string
	draft  Draft
	hints  Hints
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger

	// write serialises read-modify-write cycles on the session within this process.
	write *sync.Mutex
}

func (s *Store) SessionID() string { return s.id }

// Get returns a copy of the current draft.
func (s *Store) Get() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

func (s *Store) Hints() Hints {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hints
}

// current returns the cached draft. A missing entry means the draft expired or
// was reset elsewhere; an unreachable or unreadable cache keeps the local copy.
func (s *Store) current(ctx context.Context) Draft {
	var d Draft
	err := s.cache.Get(ctx, draftKey(s.id), &d)
	switch {
	case errors.Is(err, redis.Nil):
		return New(s.id)
	case err != nil:
		s.logger.Warn("draft reread failed, using local copy", zap.String("session", s.id), zap.Error(err))
		return s.Get()
	}
	d.SessionID = s.id
	return d.Clone()
}

// Patch merges p into the latest cached draft and writes the result back. The
// local draft is updated even when the cache write fails.
func (s *Store) Patch(ctx context.Context, p Patch) error {
	s.write.Lock()
	defer s.write.Unlock()

	base := s.current(ctx)
	s.mu.Lock()
	s.draft = base.apply(p)
	snapshot := s.draft.Clone()
	s.mu.Unlock()

	if err := s.cache.Set(ctx, draftKey(s.id), snapshot, s.ttl); err != nil {
		s.logger.Warn("failed to persist draft", zap.String("session", s.id), zap.Error(err))
		return fmt.Errorf("persist draft: %w", err)
	}
	return nil
}

// SubmissionKey returns the idempotency key of the current draft, creating it
// on first use. Concurrent callers receive the same key.
func (s *Store) SubmissionKey(ctx context.Context) (string, error) {
	s.write.Lock()
	defer s.write.Unlock()

	d := s.current(ctx)
	if d.SubmissionKey != "" {
		s.mu.Lock()
		s.draft = d
		s.mu.Unlock()
		return d.SubmissionKey, nil
	}

	d.SubmissionKey = uuid.NewString()
	s.mu.Lock()
	s.draft = d.Clone()
	s.mu.Unlock()

	if err := s.cache.Set(ctx, draftKey(s.id), d, s.ttl); err != nil {
		return d.SubmissionKey, fmt.Errorf("persist draft: %w", err)
	}
	return d.SubmissionKey, nil
}

// Reset restores the empty draft and removes its cache entry. Hints are kept.
func (s *Store) Reset(ctx context.Context) error {
	s.write.Lock()
	defer s.write.Unlock()

	s.mu.Lock()
	s.draft = New(s.id)
	s.mu.Unlock()

	if err := s.cache.Delete(ctx, draftKey(s.id)); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// ScheduleReset resets the draft after delay, leaving the submitted values
// readable until then. onDone, if set, receives the reset outcome.
func (s *Store) ScheduleReset(delay time.Duration, onDone func(error)) {
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := s.Reset(ctx)
		if err != nil {
			s.logger.Warn("scheduled draft reset failed", zap.String("session", s.id), zap.Error(err))
		}
		if onDone != nil {
			onDone(err)
		}
	})
}

// Manager hands out Stores backed by a shared cache. It keeps no drafts of its
// own, so several processes may serve the same sessions.
type Manager struct {
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger

	locks [lockStripes]sync.Mutex
}

type ManagerOption func(*Manager)

// WithTTL sets the cache expiry of drafts and hints. Zero keeps them until deleted.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.ttl = ttl }
}

func NewManager(cache Cache, logger *zap.Logger, opts ...ManagerOption) *Manager {
	if cache == nil {
		panic("cache must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		cache:  cache,
		logger: logger.Named("draft"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start opens a new session carrying hints and returns its store.
func (m *Manager) Start(ctx context.Context, hints Hints) (*Store, error) {
	id := uuid.NewString()
	if err := m.cache.Set(ctx, hintsKey(id), hints, m.ttl); err != nil {
		return nil, fmt.Errorf("persist session hints: %w", err)
	}

	s := m.newStore(id, New(id), hints)
	if err := s.Patch(ctx, Patch{}); err != nil {
		return nil, err
	}

	m.logger.Debug("session started", zap.String("session", id), zap.String("company", hints.CompanyID))
	return s, nil
}

// Open loads a session's hints and draft from the cache. An unreadable cached
// draft is replaced by an empty one.
func (m *Manager) Open(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	var hints Hints
	if err := m.cache.Get(ctx, hintsKey(sessionID), &hints); err != nil && !errors.Is(err, redis.Nil) {
		m.logger.Warn("unreadable session hints", zap.String("session", sessionID), zap.Error(err))
		hints = Hints{}
	}

	return m.newStore(sessionID, m.load(ctx, sessionID), hints), nil
}

func (m *Manager) load(ctx context.Context, sessionID string) Draft {
	var d Draft
	err := m.cache.Get(ctx, draftKey(sessionID), &d)
	switch {
	case errors.Is(err, redis.Nil):
		m.logger.Debug("no cached draft", zap.String("session", sessionID))
		return New(sessionID)
	case err != nil:
		m.logger.Warn("discarding unreadable draft", zap.String("session", sessionID), zap.Error(err))
		return New(sessionID)
	}
	d.SessionID = sessionID
	return d.Clone()
}

func (m *Manager) newStore(id string, d Draft, hints Hints) *Store {
	return &Store{
		id:     id,
		draft:  d,
		hints:  hints,
		cache:  m.cache,
		ttl:    m.ttl,
		logger: m.logger,
		write:  m.lockFor(id),
	}
}

func (m *Manager) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &m.locks[h.Sum32()%lockStripes]
}
