package domain

import (
	"context"

	"github.com/sajjad939/safechild-lite/internal/domain/entity"
	"github.com/sajjad939/safechild-lite/internal/safety"
)

// ============ Usecase-level DTOs ============

// ChatRequest is an internal chat request (used by the usecase layer).
type ChatRequest struct {
	SessionID string // empty means start a new session
	Message   string
	ChildAge  *int
}

// ChatResponse is the full outcome of one chat turn.
type ChatResponse struct {
	SessionID string
	Reply     string
	Level     string
	AgeBand   string
	Signals   []safety.RiskSignal
	Fallback  bool // true when the reply came from the built-in templates
}

// ChatStream is a streamed chat turn. The safety decision is taken
// before streaming starts, so level and band are known up front.
type ChatStream struct {
	SessionID string
	Level     string
	AgeBand   string
	Chunks    <-chan entity.StreamChunk
}

// AnalyzeRequest asks for classification only, without generating a
// reply or touching session state.
type AnalyzeRequest struct {
	Message  string
	ChildAge *int
}

// AnalyzeResponse reports what the classifier saw in one message.
type AnalyzeResponse struct {
	Signals []safety.RiskSignal
	Floor   string // minimum escalation level the message implies
	AgeBand string
}

// ChatStats aggregates the tracked sessions for the stats endpoint.
type ChatStats struct {
	TotalSessions int
	TotalMessages int
	ByLevel       map[string]int
}

// SessionInfo is the reportable state of one tracked session.
type SessionInfo struct {
	SessionID    string
	Level        string
	AgeBand      string
	MessageCount int
	Categories   map[string]int
	CreatedAt    string
	UpdatedAt    string
}

// ============ Infrastructure interfaces ============

// SessionRepository stores conversation history for active sessions.
// Implementations keep everything in memory; history is deliberately
// not persisted.
type SessionRepository interface {
	// GetOrCreate returns the session, creating it when absent.
	GetOrCreate(ctx context.Context, sessionID string, childAge *int) (*entity.ChatSession, error)

	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*entity.ChatSession, error)

	// AppendMessage adds one message to the session history.
	AppendMessage(ctx context.Context, sessionID string, msg entity.ChatMessage) error

	// Clear empties the session's transcript but keeps the session.
	Clear(ctx context.Context, sessionID string) error

	// Delete removes the session and its history.
	Delete(ctx context.Context, sessionID string) error
}

// LLMClient talks to the external language model. The system prompt
// carries the safety directive; implementations must not alter it.
type LLMClient interface {
	// Complete sends the conversation and waits for the full reply.
	Complete(ctx context.Context, systemPrompt string, history []entity.ChatMessage) (string, error)

	// CompleteStreaming sends the conversation and streams the reply.
	CompleteStreaming(ctx context.Context, systemPrompt string, history []entity.ChatMessage) (<-chan entity.StreamChunk, error)
}

// ============ Usecase interfaces ============

// ChatUsecase runs chat turns through the safety engine and the
// language model.
type ChatUsecase interface {
	// Chat processes one message and waits for the full reply.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// ChatStreaming processes one message and streams the reply (SSE).
	ChatStreaming(ctx context.Context, req *ChatRequest) (*ChatStream, error)

	// Analyze classifies a message without generating a reply and
	// without updating any session.
	Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error)

	// GetSession returns a session's safety state.
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)

	// ListSessions returns all tracked sessions.
	ListSessions(ctx context.Context) ([]*SessionInfo, error)

	// GetHistory returns the last limit messages of a session's
	// transcript (all of them when limit <= 0).
	GetHistory(ctx context.Context, sessionID string, limit int) ([]entity.ChatMessage, error)

	// ClearHistory empties a session's transcript. Escalation state is
	// untouched; only ResetSession lowers it.
	ClearHistory(ctx context.Context, sessionID string) error

	// Stats aggregates the tracked sessions.
	Stats(ctx context.Context) (*ChatStats, error)

	// ResetSession clears a session's escalation state. This is the
	// only de-escalation path and is always logged.
	ResetSession(ctx context.Context, sessionID string) error

	// DeleteSession removes a session and its history entirely.
	DeleteSession(ctx context.Context, sessionID string) error
}
