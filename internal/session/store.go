package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/chatledger/internal/model"
)

// DefaultTimeout is the inactivity window after which a session expires.
const DefaultTimeout = 30 * time.Minute

// Store manages all live edit sessions. It enforces at-most-one session per
// user and evicts expired sessions lazily on access; SweepExpired exists for
// hygiene, not correctness.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*model.EditSession
	byUser  map[string]string
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTimeout overrides the default inactivity timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) { s.timeout = timeout }
}

// WithClock injects a clock, used by tests to drive expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty session store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		byID:    make(map[string]*model.EditSession),
		byUser:  make(map[string]string),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create allocates a new session for userID editing the given draft. Any
// existing session for the user is unrecoverably dropped first.
func (s *Store) Create(userID, draftID string, attrs model.Attributes) *model.EditSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroyUserLocked(userID)

	sess := model.NewEditSession(userID, draftID, attrs, s.now())
	s.byID[sess.ID] = sess
	s.byUser[userID] = sess.ID

	slog.Info("created edit session", "session_id", sess.ID, "user_id", userID, "draft_id", draftID)
	return sess
}

// Get returns the user's live session, or nil. An expired session is
// destroyed on access before nil is returned, so callers can never act on a
// session that outlived its timeout, swept or not.
func (s *Store) Get(userID string) *model.EditSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUser[userID]
	if !ok {
		return nil
	}
	sess, ok := s.byID[id]
	if !ok {
		delete(s.byUser, userID)
		return nil
	}
	if sess.Expired(s.timeout, s.now()) {
		s.destroyLocked(id)
		slog.Info("evicted expired session on access", "session_id", id, "user_id", userID)
		return nil
	}
	return sess
}

// UpdateField overwrites a field of the session's working copy, refreshes
// its activity timestamp, and appends one change record. The store performs
// no validation of the value; that is the flow's job before calling this.
func (s *Store) UpdateField(sess *model.EditSession, field string, newValue any, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdateField(field, newValue, reason, s.now())
}

// Touch refreshes a session's activity timestamp without recording a change.
func (s *Store) Touch(sess *model.EditSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.LastActivity = s.now()
}

// Destroy removes the session with the given id from both indices.
// Idempotent: destroying an absent session is a no-op.
func (s *Store) Destroy(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyLocked(sessionID)
}

// DestroyUser removes the user's session, if any.
func (s *Store) DestroyUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyUserLocked(userID)
}

// SweepExpired removes every session whose inactivity exceeds the timeout
// and returns the count removed.
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var expired []string
	for id, sess := range s.byID {
		if sess.Expired(s.timeout, now) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		s.destroyLocked(id)
	}

	if len(expired) > 0 {
		slog.Info("swept expired sessions", "count", len(expired))
	}
	return len(expired)
}

// ActiveUsers returns the ids of every user with a session in the store,
// expired or not. The engine's sweep walks this list and lets Get apply the
// eviction under the per-user lock.
func (s *Store) ActiveUsers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.byUser))
	for userID := range s.byUser {
		users = append(users, userID)
	}
	return users
}

// Stats summarizes the live sessions for observability.
type Stats struct {
	TotalSessions int
	ActiveUsers   int
	Under5Min     int
	Under30Min    int
	Over30Min     int
}

// GetStats returns counts of live sessions bucketed by age.
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalSessions: len(s.byID),
		ActiveUsers:   len(s.byUser),
	}
	now := s.now()
	for _, sess := range s.byID {
		age := now.Sub(sess.CreatedAt)
		switch {
		case age < 5*time.Minute:
			stats.Under5Min++
		case age < 30*time.Minute:
			stats.Under30Min++
		default:
			stats.Over30Min++
		}
	}
	return stats
}

// Timeout reports the configured inactivity timeout.
func (s *Store) Timeout() time.Duration {
	return s.timeout
}

func (s *Store) destroyLocked(sessionID string) {
	sess, ok := s.byID[sessionID]
	if !ok {
		return
	}
	delete(s.byID, sessionID)
	if s.byUser[sess.UserID] == sessionID {
		delete(s.byUser, sess.UserID)
	}
	slog.Debug("destroyed session", "session_id", sessionID, "user_id", sess.UserID)
}

func (s *Store) destroyUserLocked(userID string) {
	if id, ok := s.byUser[userID]; ok {
		s.destroyLocked(id)
	}
}
