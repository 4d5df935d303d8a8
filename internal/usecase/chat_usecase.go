package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
	"github.com/sajjad939/safechild-lite/internal/safety"
)

// chatUsecase implements domain.ChatUsecase. Every message goes
// through the safety engine first; the resulting directive shapes the
// LLM call, and a level-appropriate fallback answers when the LLM is
// down. The engine update happens before any I/O, so a slow provider
// can never delay an escalation decision.
type chatUsecase struct {
	engine        *safety.Engine
	sessionRepo   domain.SessionRepository
	llm           domain.LLMClient
	historyWindow int
	logger        *slog.Logger
}

// NewChatUsecase wires the chat flow together. historyWindow bounds
// how many recent messages are sent to the LLM.
func NewChatUsecase(
	engine *safety.Engine,
	sessionRepo domain.SessionRepository,
	llm domain.LLMClient,
	historyWindow int,
	logger *slog.Logger,
) domain.ChatUsecase {
	if historyWindow <= 0 {
		historyWindow = 10
	}
	return &chatUsecase{
		engine:        engine,
		sessionRepo:   sessionRepo,
		llm:           llm,
		historyWindow: historyWindow,
		logger:        logger,
	}
}

// Chat processes one message and waits for the full reply.
func (u *chatUsecase) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if err := u.validateChatRequest(req); err != nil {
		return nil, err
	}

	// 1. Safety decision first; no I/O happens before it.
	decision, err := u.engine.ProcessMessage(ctx, req.SessionID, req.Message, req.ChildAge)
	if err != nil {
		return nil, err
	}

	// 2. Record the child's message.
	history, err := u.recordUserMessage(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3. Ask the LLM, falling back to templates when it fails.
	reply, fallback := u.generateReply(ctx, decision, history)

	// 4. Record the reply so follow-up turns see it.
	u.recordAssistantMessage(req.SessionID, reply)

	return &domain.ChatResponse{
		SessionID: req.SessionID,
		Reply:     reply,
		Level:     decision.State.Level.String(),
		AgeBand:   string(decision.State.AgeBand),
		Signals:   decision.Signals,
		Fallback:  fallback,
	}, nil
}

// ChatStreaming processes one message and streams the reply.
func (u *chatUsecase) ChatStreaming(ctx context.Context, req *domain.ChatRequest) (*domain.ChatStream, error) {
	if err := u.validateChatRequest(req); err != nil {
		return nil, err
	}

	decision, err := u.engine.ProcessMessage(ctx, req.SessionID, req.Message, req.ChildAge)
	if err != nil {
		return nil, err
	}

	history, err := u.recordUserMessage(ctx, req)
	if err != nil {
		return nil, err
	}

	upstream, err := u.llm.CompleteStreaming(ctx, decision.Directive.SystemPrompt(), history)
	if err != nil {
		u.logger.Error("llm streaming unavailable, using fallback reply",
			"session_id", req.SessionID, "error", err)
		upstream = u.fallbackStream(decision)
	}

	// Relay chunks while accumulating the reply for session history.
	// The send is guarded by ctx so an abandoned consumer (client
	// disconnect) releases the relay instead of blocking it forever;
	// whatever text already arrived is still recorded.
	out := make(chan entity.StreamChunk, 16)
	go func() {
		defer close(out)
		var full string
		defer func() {
			if full != "" {
				u.recordAssistantMessage(req.SessionID, full)
			}
		}()
		for chunk := range upstream {
			if chunk.Error == "" {
				full += chunk.Text
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &domain.ChatStream{
		SessionID: req.SessionID,
		Level:     decision.State.Level.String(),
		AgeBand:   string(decision.State.AgeBand),
		Chunks:    out,
	}, nil
}

// Analyze classifies a message without generating a reply and without
// updating any session.
func (u *chatUsecase) Analyze(ctx context.Context, req *domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	if req == nil {
		return nil, domain.NewInvalidInputError("request is required")
	}
	if len(req.Message) > maxMessageLength {
		return nil, domain.NewInvalidInputError("message too long")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	signals, floor := u.engine.Analyze(req.Message)
	return &domain.AnalyzeResponse{
		Signals: signals,
		Floor:   floor.String(),
		AgeBand: string(safety.ResolveAgeBand(req.ChildAge)),
	}, nil
}

// GetSession returns a session's safety state.
func (u *chatUsecase) GetSession(ctx context.Context, sessionID string) (*domain.SessionInfo, error) {
	state, ok := u.engine.Snapshot(sessionID)
	if !ok {
		return nil, domain.NewNotFoundError("session", sessionID)
	}
	return sessionInfo(state), nil
}

// ListSessions returns all tracked sessions.
func (u *chatUsecase) ListSessions(ctx context.Context) ([]*domain.SessionInfo, error) {
	states := u.engine.Sessions()
	out := make([]*domain.SessionInfo, 0, len(states))
	for _, s := range states {
		out = append(out, sessionInfo(s))
	}
	return out, nil
}

// GetHistory returns the last limit messages of the transcript.
func (u *chatUsecase) GetHistory(ctx context.Context, sessionID string, limit int) ([]entity.ChatMessage, error) {
	session, err := u.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	messages := session.Messages
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// ClearHistory empties the transcript. Escalation state is untouched.
func (u *chatUsecase) ClearHistory(ctx context.Context, sessionID string) error {
	if err := u.sessionRepo.Clear(ctx, sessionID); err != nil {
		return err
	}
	u.logger.Info("session history cleared", "session_id", sessionID)
	return nil
}

// Stats aggregates the tracked sessions.
func (u *chatUsecase) Stats(ctx context.Context) (*domain.ChatStats, error) {
	states := u.engine.Sessions()
	stats := &domain.ChatStats{
		TotalSessions: len(states),
		ByLevel:       make(map[string]int),
	}
	for _, s := range states {
		stats.TotalMessages += s.MessageCount
		stats.ByLevel[s.Level.String()]++
	}
	return stats, nil
}

// ResetSession clears a session's escalation state.
func (u *chatUsecase) ResetSession(ctx context.Context, sessionID string) error {
	if !u.engine.Reset(sessionID) {
		return domain.NewNotFoundError("session", sessionID)
	}
	return nil
}

// DeleteSession removes a session and its history entirely.
func (u *chatUsecase) DeleteSession(ctx context.Context, sessionID string) error {
	existed := u.engine.Remove(sessionID)
	err := u.sessionRepo.Delete(ctx, sessionID)
	if err != nil && !domain.IsNotFound(err) {
		return err
	}
	if !existed && err != nil {
		return domain.NewNotFoundError("session", sessionID)
	}
	u.logger.Info("session deleted", "session_id", sessionID)
	return nil
}

const maxMessageLength = 4000

// validateChatRequest validates and normalizes the request. A missing
// session ID starts a new session.
func (u *chatUsecase) validateChatRequest(req *domain.ChatRequest) error {
	if req == nil {
		return domain.NewInvalidInputError("request is required")
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
		u.logger.Info("new session started", "session_id", req.SessionID)
	}

	if len(req.Message) > maxMessageLength {
		return domain.NewInvalidInputError(fmt.Sprintf("message too long (max %d characters)", maxMessageLength))
	}

	return nil
}

// recordUserMessage appends the child's message and returns the
// history window for the LLM call.
func (u *chatUsecase) recordUserMessage(ctx context.Context, req *domain.ChatRequest) ([]entity.ChatMessage, error) {
	if _, err := u.sessionRepo.GetOrCreate(ctx, req.SessionID, req.ChildAge); err != nil {
		return nil, err
	}
	msg := entity.ChatMessage{
		Role:      "user",
		Content:   req.Message,
		MessageID: uuid.New().String(),
		Timestamp: time.Now(),
	}
	if err := u.sessionRepo.AppendMessage(ctx, req.SessionID, msg); err != nil {
		return nil, err
	}

	session, err := u.sessionRepo.Get(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	history := session.Messages
	if len(history) > u.historyWindow {
		history = history[len(history)-u.historyWindow:]
	}
	return history, nil
}

// recordAssistantMessage stores the reply. A fresh context is used so
// a cancelled request cannot lose the assistant turn.
func (u *chatUsecase) recordAssistantMessage(sessionID, reply string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msg := entity.ChatMessage{
		Role:      "assistant",
		Content:   reply,
		MessageID: uuid.New().String(),
		Timestamp: time.Now(),
	}
	if err := u.sessionRepo.AppendMessage(ctx, sessionID, msg); err != nil {
		u.logger.Error("failed to record assistant message",
			"session_id", sessionID, "error", err)
	}
}

// generateReply asks the LLM and falls back to templates on failure.
func (u *chatUsecase) generateReply(ctx context.Context, decision *safety.Decision, history []entity.ChatMessage) (string, bool) {
	reply, err := u.llm.Complete(ctx, decision.Directive.SystemPrompt(), history)
	if err == nil && reply != "" {
		return reply, false
	}
	if err != nil {
		u.logger.Error("llm unavailable, using fallback reply",
			"session_id", decision.SessionID, "error", err)
	}
	return fallbackReply(decision.State), true
}

// fallbackStream yields the fallback reply as a single-chunk stream.
func (u *chatUsecase) fallbackStream(decision *safety.Decision) <-chan entity.StreamChunk {
	ch := make(chan entity.StreamChunk, 2)
	ch <- entity.StreamChunk{Text: fallbackReply(decision.State), MessageID: uuid.New().String()}
	ch <- entity.StreamChunk{IsEnd: true}
	close(ch)
	return ch
}

// Fallback replies per level. Variants rotate on message count so a
// broken LLM does not answer a child with the exact same sentence
// every turn.
var fallbackReplies = map[safety.EscalationLevel][]string{
	safety.LevelNone: {
		"Thanks for telling me! What else is going on?",
		"That sounds interesting. Tell me more!",
		"I like talking with you. What happened next?",
	},
	safety.LevelConcern: {
		"It is good that you told me. How are you feeling about it?",
		"Thank you for sharing that with me. Do you want to tell me more?",
	},
	safety.LevelUrgent: {
		"It is good that you told me. This is not your fault. Please talk to a trusted adult, like a parent or a teacher, about this.",
		"You did the right thing telling me. Please tell a trusted adult you feel safe with about what happened.",
	},
	safety.LevelEmergency: {
		"You are not in trouble. Please tell a trusted adult right away. If you are in danger, call your local emergency number now.",
	},
}

func fallbackReply(state safety.SessionState) string {
	variants := fallbackReplies[state.Level]
	return variants[state.MessageCount%len(variants)]
}

// sessionInfo converts engine state to the reportable DTO.
func sessionInfo(s safety.SessionState) *domain.SessionInfo {
	categories := make(map[string]int, len(s.Categories))
	for k, v := range s.Categories {
		categories[string(k)] = v
	}
	return &domain.SessionInfo{
		SessionID:    s.SessionID,
		Level:        s.Level.String(),
		AgeBand:      string(s.AgeBand),
		MessageCount: s.MessageCount,
		Categories:   categories,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    s.UpdatedAt.Format(time.RFC3339),
	}
}
