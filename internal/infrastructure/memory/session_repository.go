// Package memory holds session state in process memory. Conversation
// history intentionally does not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
)

// sessionRepository implements domain.SessionRepository with a map
// guarded by a RWMutex.
type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entity.ChatSession
	now      func() time.Time
}

// NewSessionRepository creates an empty repository.
func NewSessionRepository() domain.SessionRepository {
	return &sessionRepository{
		sessions: make(map[string]*entity.ChatSession),
		now:      time.Now,
	}
}

func (r *sessionRepository) GetOrCreate(ctx context.Context, sessionID string, childAge *int) (*entity.ChatSession, error) {
	if sessionID == "" {
		return nil, domain.NewInvalidInputError("session id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		if s.ChildAge == nil && childAge != nil {
			s.ChildAge = childAge
		}
		return cloneSession(s), nil
	}

	now := r.now()
	s := &entity.ChatSession{
		SessionID: sessionID,
		ChildAge:  childAge,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.sessions[sessionID] = s
	return cloneSession(s), nil
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, domain.NewNotFoundError("session", sessionID)
	}
	return cloneSession(s), nil
}

func (r *sessionRepository) AppendMessage(ctx context.Context, sessionID string, msg entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.NewNotFoundError("session", sessionID)
	}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = r.now()
	return nil
}

func (r *sessionRepository) Clear(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.NewNotFoundError("session", sessionID)
	}
	s.Messages = nil
	s.UpdatedAt = r.now()
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return domain.NewNotFoundError("session", sessionID)
	}
	delete(r.sessions, sessionID)
	return nil
}

// cloneSession copies the session so callers cannot mutate shared state.
func cloneSession(s *entity.ChatSession) *entity.ChatSession {
	out := *s
	out.Messages = make([]entity.ChatMessage, len(s.Messages))
	copy(out.Messages, s.Messages)
	return &out
}
