package server

import (
	"sync"
	"testing"
	"time"

	"talentscout/internal/errors"
	"talentscout/internal/types"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()

	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	m := NewSessionManager(30*time.Minute, logger)
	t.Cleanup(m.Close)
	return m
}

func TestSessionManagerCreateAndGet(t *testing.T) {
	m := newTestSessionManager(t)

	created := m.Create()
	if created.ID == "" {
		t.Fatal("Create() returned a session with an empty ID")
	}
	if created.Record == nil || len(created.Record) != 0 {
		t.Errorf("new session record = %v, expected empty non-nil record", created.Record)
	}
	if created.Ended {
		t.Error("new session is already ended")
	}

	got := m.Get(created.ID)
	if got == nil {
		t.Fatal("Get() returned nil for an existing session")
	}
	if got.ID != created.ID {
		t.Errorf("Get() ID = %q, expected %q", got.ID, created.ID)
	}

	if m.Count() != 1 {
		t.Errorf("Count() = %d, expected 1", m.Count())
	}
}

func TestSessionManagerGetUnknownID(t *testing.T) {
	m := newTestSessionManager(t)

	if got := m.Get("does-not-exist"); got != nil {
		t.Errorf("Get() for unknown ID = %v, expected nil", got)
	}
}

func TestSessionManagerUniqueIDs(t *testing.T) {
	m := newTestSessionManager(t)

	seen := make(map[string]bool)
	for range 50 {
		s := m.Create()
		if seen[s.ID] {
			t.Fatalf("Create() returned duplicate session ID %q", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestSessionManagerReset(t *testing.T) {
	m := newTestSessionManager(t)

	session := m.Create()
	session.Record[types.FieldName] = "jane doe"
	session.History = append(session.History,
		types.ConversationTurn{Role: types.RoleUser, Content: "hi"})
	session.Ended = true

	reset := m.Reset(session.ID)
	if reset == nil {
		t.Fatal("Reset() returned nil for an existing session")
	}
	if reset.ID != session.ID {
		t.Errorf("Reset() changed the session ID from %q to %q", session.ID, reset.ID)
	}
	if len(reset.Record) != 0 {
		t.Errorf("Reset() record = %v, expected empty", reset.Record)
	}
	if len(reset.History) != 0 {
		t.Errorf("Reset() history = %v, expected empty", reset.History)
	}
	if reset.Ended {
		t.Error("Reset() left the session ended")
	}
}

func TestSessionManagerResetUnknownID(t *testing.T) {
	m := newTestSessionManager(t)

	if got := m.Reset("does-not-exist"); got != nil {
		t.Errorf("Reset() for unknown ID = %v, expected nil", got)
	}
}

func TestSessionManagerRemove(t *testing.T) {
	m := newTestSessionManager(t)

	session := m.Create()
	m.Remove(session.ID)

	if got := m.Get(session.ID); got != nil {
		t.Errorf("Get() after Remove() = %v, expected nil", got)
	}
	if m.Count() != 0 {
		t.Errorf("Count() after Remove() = %d, expected 0", m.Count())
	}
}

func TestSessionManagerResetConcurrentWithEviction(t *testing.T) {
	m := newTestSessionManager(t)
	session := m.Create()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(2)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				m.Reset(session.ID)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				m.evictIdle()
			}
		}
	}()

	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()

	// A session being reset is active, so the janitor must not have
	// removed it.
	if got := m.Get(session.ID); got == nil {
		t.Error("session disappeared while being reset")
	}
}

func TestSessionManagerEvictIdle(t *testing.T) {
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	m := NewSessionManager(time.Minute, logger)
	t.Cleanup(m.Close)

	stale := m.Create()
	stale.LastActive = time.Now().Add(-2 * time.Minute)
	fresh := m.Create()

	m.evictIdle()

	if got := m.Get(stale.ID); got != nil {
		t.Error("idle session survived eviction")
	}
	if got := m.Get(fresh.ID); got == nil {
		t.Error("active session was evicted")
	}
}
