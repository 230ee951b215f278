package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/perspective-viz/pkg/config"
	"github.com/gilchrisn/perspective-viz/pkg/debounce"
	"github.com/gilchrisn/perspective-viz/pkg/models"
	"github.com/gilchrisn/perspective-viz/pkg/session"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	mu         sync.Mutex
	session    *session.Session
	threshold  *debounce.Debouncer
	createdAt  time.Time
	lastAccess time.Time
}

// SessionService keeps live visualization sessions in memory
type SessionService struct {
	cfg             *config.Config
	sessions        map[string]*entry
	mutex           sync.RWMutex
	seeds           atomic.Int64
	sessionTTL      time.Duration
	cleanupInterval time.Duration
}

// NewSessionService creates a new session service. Expired sessions are only
// removed while Run is active.
func NewSessionService(cfg *config.Config) *SessionService {
	return &SessionService{
		cfg:             cfg,
		sessions:        make(map[string]*entry),
		sessionTTL:      cfg.SessionTTL(),
		cleanupInterval: cfg.CleanupInterval(),
	}
}

// Create loads a perspective into a new session and returns its id
func (s *SessionService) Create(p *models.Perspective, view models.ViewOptions) (string, *session.Session, error) {
	sessionCfg := session.Config{
		Layout:       s.cfg.LayoutOptions(),
		Boxes:        s.cfg.BoxOptions(),
		ElectMedoids: s.cfg.ElectMedoids(),
		EdgeLabels:   s.cfg.EdgeLabels(),
		// rand.Rand is not safe for concurrent use, so every session draws from its own source
		Rand: rand.New(rand.NewSource(s.cfg.RandomSeed() + s.seeds.Add(1))),
	}

	sess, err := session.Load(p, view, sessionCfg)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := time.Now()
	sessionID := uuid.New().String()

	s.mutex.Lock()
	s.sessions[sessionID] = &entry{
		session:    sess,
		threshold:  debounce.New(s.cfg.DebounceQuiet()),
		createdAt:  now,
		lastAccess: now,
	}
	s.mutex.Unlock()

	log.Info().
		Str("session_id", sessionID).
		Str("perspective_id", p.ID).
		Int("nodes", len(p.Nodes)).
		Msg("Session created")

	return sessionID, sess, nil
}

func (s *SessionService) lookup(sessionID string) (*entry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, exists := s.sessions[sessionID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return e, nil
}

// With runs fn while holding the session's lock
func (s *SessionService) With(sessionID string, fn func(*session.Session) error) error {
	e, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastAccess = time.Now()
	return fn(e.session)
}

// Snapshot returns the render state of a session
func (s *SessionService) Snapshot(sessionID string) (session.Snapshot, error) {
	var snap session.Snapshot
	err := s.With(sessionID, func(sess *session.Session) error {
		snap = sess.Snapshot()
		return nil
	})
	return snap, err
}

// UpdateThreshold schedules a threshold change. Calls arriving within the quiet
// window replace each other and only the last one is applied.
func (s *SessionService) UpdateThreshold(sessionID string, threshold float64) error {
	e, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.lastAccess = time.Now()
	e.mu.Unlock()

	scheduled := e.threshold.Trigger(func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		e.session.UpdateThreshold(threshold)

		log.Debug().
			Str("session_id", sessionID).
			Float64("threshold", threshold).
			Int("active_edges", len(e.session.Edges().ActiveIDs())).
			Msg("Edge threshold applied")
	})
	if !scheduled {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// Delete removes a session and drops its pending threshold update
func (s *SessionService) Delete(sessionID string) error {
	s.mutex.Lock()
	e, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mutex.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	e.threshold.Stop()

	log.Info().Str("session_id", sessionID).Msg("Session deleted")
	return nil
}

// Count returns the number of live sessions
func (s *SessionService) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.sessions)
}

// Run removes expired sessions until ctx is cancelled
func (s *SessionService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.cleanup(time.Now())
		}
	}
}

// cleanup removes sessions idle since before now minus the TTL
func (s *SessionService) cleanup(now time.Time) int {
	cutoff := now.Add(-s.sessionTTL)

	s.mutex.Lock()
	var expired []*entry
	for sessionID, e := range s.sessions {
		e.mu.Lock()
		idle := e.lastAccess.Before(cutoff)
		e.mu.Unlock()

		if idle {
			delete(s.sessions, sessionID)
			expired = append(expired, e)
		}
	}
	s.mutex.Unlock()

	for _, e := range expired {
		e.threshold.Stop()
	}

	if len(expired) > 0 {
		log.Info().
			Int("cleaned_sessions", len(expired)).
			Msg("Session cleanup completed")
	}
	return len(expired)
}
