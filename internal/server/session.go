package server

import (
	"sync"
	"time"

	"talentscout/internal/errors"
	"talentscout/internal/types"

	"github.com/google/uuid"
)

// Session holds the per-conversation state: the collected candidate
// record, the running transcript, and whether the conversation has ended.
type Session struct {
	// Guards Record, History, and Ended against concurrent requests
	// reusing the same session ID.
	mu sync.Mutex

	ID         string
	Record     types.CandidateRecord
	History    []types.ConversationTurn
	Ended      bool
	CreatedAt  time.Time
	LastActive time.Time
}

// Lock acquires the per-session mutex
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session mutex
func (s *Session) Unlock() { s.mu.Unlock() }

// SessionManager tracks active conversations in memory. Idle sessions are
// evicted by a background janitor after the configured TTL.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	done     chan struct{}
	logger   *errors.Logger
}

// NewSessionManager creates a session manager and starts its eviction
// janitor. Call Close on shutdown to stop the janitor.
func NewSessionManager(ttl time.Duration, logger *errors.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	m := &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
		logger:   logger,
	}

	go m.janitor(ttl / 2)
	return m
}

// Create starts a new session with a fresh candidate record
func (m *SessionManager) Create() *Session {
	now := time.Now()
	session := &Session{
		ID:         uuid.NewString(),
		Record:     types.CandidateRecord{},
		History:    []types.ConversationTurn{},
		CreatedAt:  now,
		LastActive: now,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Debug("Session created", "session_id", session.ID)
	return session
}

// Get returns the session for the given ID, or nil when the session does
// not exist or has been evicted.
func (m *SessionManager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil
	}
	session.LastActive = time.Now()
	return session
}

// Reset replaces a session's state with a fresh record and transcript.
// The session keeps its ID so the client can continue using it.
func (m *SessionManager) Reset(id string) *Session {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		// LastActive is read by evictIdle under m.mu, so it must be
		// written under the same lock.
		session.LastActive = time.Now()
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.Record = types.CandidateRecord{}
	session.History = []types.ConversationTurn{}
	session.Ended = false

	m.logger.Debug("Session reset", "session_id", id)
	return session
}

// Remove deletes a session
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of active sessions
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the eviction janitor
func (m *SessionManager) Close() {
	close(m.done)
}

// janitor periodically evicts sessions idle past the TTL
func (m *SessionManager) janitor(interval time.Duration) {
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.done:
			return
		}
	}
}

// evictIdle removes sessions that have been idle longer than the TTL
func (m *SessionManager) evictIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	evicted := 0
	for id, session := range m.sessions {
		if now.Sub(session.LastActive) > m.ttl {
			delete(m.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		m.logger.Debug("Evicted idle sessions",
			"evicted", evicted,
			"remaining", len(m.sessions))
	}
}
