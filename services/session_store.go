package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yeremiapane/restaurant-ordering/models"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side record behind a session token.
type Session struct {
	ID        string      `json:"id"`
	UserID    uint        `json:"userId"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// SessionStore keeps live sessions. A token whose session is gone is
// rejected even if its signature and expiry are still valid.
type SessionStore interface {
	Create(ctx context.Context, userID uint, role models.Role, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Touch(ctx context.Context, id string, ttl time.Duration) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, userID uint) error
}

// MemorySessionStore is a process-local SessionStore.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session), now: time.Now}
}

func (m *MemorySessionStore) Create(_ context.Context, userID uint, role models.Role, ttl time.Duration) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: m.now().Add(ttl),
	}
	m.sessions[session.ID] = session
	copied := *session
	return &copied, nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok || !m.now().Before(session.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *MemorySessionStore) Touch(_ context.Context, id string, ttl time.Duration) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok || !m.now().Before(session.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	session.ExpiresAt = m.now().Add(ttl)
	copied := *session
	return &copied, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) DeleteUser(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

// sweep drops expired sessions. Callers hold mu.
func (m *MemorySessionStore) sweep() {
	now := m.now()
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
}
