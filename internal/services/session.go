package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"campaign/internal/models"

	"github.com/google/logger"
)

// SessionStore persists one session document per session key.
// A missing key is reported as ok == false, never as an error.
type SessionStore interface {
	Load(ctx context.Context, key string) (session models.Session, ok bool, err error)
	Save(ctx context.Context, key string, session models.Session) error
	Clear(ctx context.Context, key string) error
	// Sweep drops sessions untouched for longer than idle and returns how many went.
	Sweep(ctx context.Context, idle time.Duration) (int, error)
}

type memorySession struct {
	doc          []byte
	lastActivity time.Time
}

// MemorySessionStore keeps session documents in process memory as JSON.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Load(_ context.Context, key string) (models.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.sessions[key]
	if !ok {
		return models.Session{}, false, nil
	}
	var session models.Session
	if err := json.Unmarshal(ms.doc, &session); err != nil {
		return models.Session{}, false, err
	}
	ms.lastActivity = s.now()
	return session, true, nil
}

func (s *MemorySessionStore) Save(_ context.Context, key string, session models.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = &memorySession{doc: doc, lastActivity: s.now()}
	return nil
}

func (s *MemorySessionStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	logger.Infof("Cleared session %s", key)
	return nil
}

// Sweep removes sessions that have been inactive for longer than idle.
func (s *MemorySessionStore) Sweep(_ context.Context, idle time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, ms := range s.sessions {
		if s.now().Sub(ms.lastActivity) > idle {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed, nil
}

// RunSessionJanitor sweeps store every interval until ctx is done.
func RunSessionJanitor(ctx context.Context, store SessionStore, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Sweep(ctx, idle)
			if err != nil {
				logger.Errorf("session sweep failed: %v", err)
				continue
			}
			logger.Infof("Performed cleanup of inactive sessions: %d removed", n)
		}
	}
}
