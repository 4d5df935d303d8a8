package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
	"github.com/sajjad939/safechild-lite/internal/infrastructure/memory"
	"github.com/sajjad939/safechild-lite/internal/safety"
)

// testLLM is a hand-written LLM fake. It records system prompts and
// can be told to fail. When stream is set, CompleteStreaming feeds the
// chunks from a producer goroutine that honors ctx, like the real
// clients.
type testLLM struct {
	prompts []string
	history [][]entity.ChatMessage
	reply   string
	stream  []string
	fail    bool
}

func (l *testLLM) Complete(ctx context.Context, systemPrompt string, history []entity.ChatMessage) (string, error) {
	l.prompts = append(l.prompts, systemPrompt)
	l.history = append(l.history, history)
	if l.fail {
		return "", fmt.Errorf("provider down")
	}
	return l.reply, nil
}

func (l *testLLM) CompleteStreaming(ctx context.Context, systemPrompt string, history []entity.ChatMessage) (<-chan entity.StreamChunk, error) {
	l.prompts = append(l.prompts, systemPrompt)
	l.history = append(l.history, history)
	if l.fail {
		return nil, fmt.Errorf("provider down")
	}
	if len(l.stream) > 0 {
		ch := make(chan entity.StreamChunk)
		go func() {
			defer close(ch)
			for _, text := range l.stream {
				select {
				case ch <- entity.StreamChunk{Text: text}:
				case <-ctx.Done():
					return
				}
			}
			select {
			case ch <- entity.StreamChunk{IsEnd: true}:
			case <-ctx.Done():
			}
		}()
		return ch, nil
	}
	ch := make(chan entity.StreamChunk, 2)
	ch <- entity.StreamChunk{Text: l.reply}
	ch <- entity.StreamChunk{IsEnd: true}
	close(ch)
	return ch, nil
}

func newTestChatUsecase(t *testing.T, llm *testLLM) domain.ChatUsecase {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	classifier, err := safety.NewClassifier(nil, logger)
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	engine := safety.NewEngine(classifier, safety.NewTracker(), logger)
	return NewChatUsecase(engine, memory.NewSessionRepository(), llm, 10, logger)
}

func TestChatEscalatesAndDirectsLLM(t *testing.T) {
	llm := &testLLM{reply: "I hear you. Please talk to a trusted adult."}
	uc := newTestChatUsecase(t, llm)
	age := 8

	resp, err := uc.Chat(context.Background(), &domain.ChatRequest{
		SessionID: "s1",
		Message:   "someone touched me and told me not to tell",
		ChildAge:  &age,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Level != "urgent" {
		t.Errorf("level = %q, want urgent", resp.Level)
	}
	if resp.AgeBand != "middle" {
		t.Errorf("age band = %q, want middle", resp.AgeBand)
	}
	if resp.Fallback {
		t.Error("reply flagged as fallback with a healthy LLM")
	}
	if len(llm.prompts) != 1 || !strings.Contains(llm.prompts[0], "urgent") {
		t.Errorf("system prompt does not carry the level: %v", llm.prompts)
	}
	if !strings.Contains(llm.prompts[0], "trusted adult") {
		t.Errorf("system prompt does not require the trusted adult phrase: %q", llm.prompts[0])
	}

	// The follow-up turn keeps the escalated level and sees history.
	resp, err = uc.Chat(context.Background(), &domain.ChatRequest{
		SessionID: "s1",
		Message:   "ok. can we talk about football?",
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Level != "urgent" {
		t.Errorf("level after follow-up = %q, want urgent", resp.Level)
	}
	last := llm.history[len(llm.history)-1]
	if len(last) != 3 { // user, assistant, user
		t.Errorf("history length = %d, want 3", len(last))
	}
}

func TestChatGeneratesSessionID(t *testing.T) {
	llm := &testLLM{reply: "hi!"}
	uc := newTestChatUsecase(t, llm)

	resp, err := uc.Chat(context.Background(), &domain.ChatRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.SessionID == "" {
		t.Error("no session id assigned")
	}
}

func TestChatFallbackWhenLLMDown(t *testing.T) {
	llm := &testLLM{fail: true}
	uc := newTestChatUsecase(t, llm)

	resp, err := uc.Chat(context.Background(), &domain.ChatRequest{
		SessionID: "s1",
		Message:   "someone touched me and told me not to tell",
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if !resp.Fallback {
		t.Error("fallback not flagged")
	}
	if resp.Level != "urgent" {
		t.Errorf("level = %q, want urgent even with LLM down", resp.Level)
	}
	if !strings.Contains(resp.Reply, "trusted adult") {
		t.Errorf("fallback reply lacks trusted adult guidance: %q", resp.Reply)
	}
}

func TestChatRejectsOversizedMessage(t *testing.T) {
	uc := newTestChatUsecase(t, &testLLM{reply: "ok"})

	_, err := uc.Chat(context.Background(), &domain.ChatRequest{
		SessionID: "s1",
		Message:   strings.Repeat("a", maxMessageLength+1),
	})
	if !domain.IsInvalidInput(err) {
		t.Errorf("error = %v, want invalid input", err)
	}
}

func TestChatStreaming(t *testing.T) {
	llm := &testLLM{reply: "hello there"}
	uc := newTestChatUsecase(t, llm)

	stream, err := uc.ChatStreaming(context.Background(), &domain.ChatRequest{
		SessionID: "s1",
		Message:   "hi",
	})
	if err != nil {
		t.Fatalf("ChatStreaming() error = %v", err)
	}
	if stream.Level != "none" {
		t.Errorf("level = %q, want none", stream.Level)
	}

	var full string
	for chunk := range stream.Chunks {
		full += chunk.Text
	}
	if full != "hello there" {
		t.Errorf("streamed reply = %q, want %q", full, "hello there")
	}
}

func TestChatStreamingAbandonedConsumer(t *testing.T) {
	chunks := make([]string, 200)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("word%d ", i)
	}
	llm := &testLLM{stream: chunks}
	uc := newTestChatUsecase(t, llm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := uc.ChatStreaming(ctx, &domain.ChatRequest{
		SessionID: "s1",
		Message:   "hi",
	})
	if err != nil {
		t.Fatalf("ChatStreaming() error = %v", err)
	}

	// Read one chunk, then walk away like a disconnected client.
	first := <-stream.Chunks
	cancel()

	// The relay must notice the cancellation and close the channel
	// instead of blocking on the next send forever.
	deadline := time.After(2 * time.Second)
	for open := true; open; {
		select {
		case _, ok := <-stream.Chunks:
			open = ok
		case <-deadline:
			t.Fatal("stream not closed after the consumer cancelled")
		}
	}

	// The text delivered before the disconnect is kept in the session.
	history, err := uc.GetHistory(context.Background(), "s1", 0)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	last := history[len(history)-1]
	if last.Role != "assistant" || !strings.Contains(last.Content, first.Text) {
		t.Errorf("partial reply not recorded: role=%s content=%q", last.Role, last.Content)
	}
}

func TestAnalyzeDoesNotTouchSessions(t *testing.T) {
	uc := newTestChatUsecase(t, &testLLM{reply: "ok"})

	resp, err := uc.Analyze(context.Background(), &domain.AnalyzeRequest{
		Message: "a stranger followed me home",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.Floor != "urgent" {
		t.Errorf("floor = %q, want urgent", resp.Floor)
	}

	sessions, err := uc.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("Analyze created %d sessions", len(sessions))
	}
}

func TestResetSession(t *testing.T) {
	uc := newTestChatUsecase(t, &testLLM{reply: "ok"})

	if _, err := uc.Chat(context.Background(), &domain.ChatRequest{
		SessionID: "s1", Message: "help me now",
	}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	info, err := uc.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if info.Level != "emergency" {
		t.Fatalf("level = %q, want emergency", info.Level)
	}

	if err := uc.ResetSession(context.Background(), "s1"); err != nil {
		t.Fatalf("ResetSession() error = %v", err)
	}
	info, err = uc.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if info.Level != "none" {
		t.Errorf("level after reset = %q, want none", info.Level)
	}

	if err := uc.ResetSession(context.Background(), "missing"); !domain.IsNotFound(err) {
		t.Errorf("reset of unknown session: error = %v, want not found", err)
	}
}

func TestGetHistory(t *testing.T) {
	uc := newTestChatUsecase(t, &testLLM{reply: "ok"})

	for i := 0; i < 3; i++ {
		if _, err := uc.Chat(context.Background(), &domain.ChatRequest{
			SessionID: "s1", Message: fmt.Sprintf("message %d", i),
		}); err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
	}

	history, err := uc.GetHistory(context.Background(), "s1", 0)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(history) != 6 { // three user/assistant pairs
		t.Fatalf("history length = %d, want 6", len(history))
	}
	if history[0].Role != "user" || history[0].Content != "message 0" {
		t.Errorf("first message = %s %q, want the oldest user turn", history[0].Role, history[0].Content)
	}

	tail, err := uc.GetHistory(context.Background(), "s1", 2)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(tail) != 2 || tail[1].Role != "assistant" {
		t.Errorf("limited history = %d messages ending in %s, want 2 ending in assistant", len(tail), tail[len(tail)-1].Role)
	}

	if _, err := uc.GetHistory(context.Background(), "missing", 0); !domain.IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestClearHistoryKeepsEscalation(t *testing.T) {
	uc := newTestChatUsecase(t, &testLLM{reply: "ok"})

	if _, err := uc.Chat(context.Background(), &domain.ChatRequest{
		SessionID: "s1", Message: "someone touched me and told me not to tell",
	}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if err := uc.ClearHistory(context.Background(), "s1"); err != nil {
		t.Fatalf("ClearHistory() error = %v", err)
	}

	history, err := uc.GetHistory(context.Background(), "s1", 0)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history length after clear = %d, want 0", len(history))
	}

	info, err := uc.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if info.Level != "urgent" {
		t.Errorf("level after clear = %q, want urgent", info.Level)
	}

	if err := uc.ClearHistory(context.Background(), "missing"); !domain.IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestChatStats(t *testing.T) {
	uc := newTestChatUsecase(t, &testLLM{reply: "ok"})

	if _, err := uc.Chat(context.Background(), &domain.ChatRequest{
		SessionID: "s1", Message: "hello",
	}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if _, err := uc.Chat(context.Background(), &domain.ChatRequest{
		SessionID: "s2", Message: "help me now",
	}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	stats, err := uc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalSessions != 2 {
		t.Errorf("total sessions = %d, want 2", stats.TotalSessions)
	}
	if stats.TotalMessages != 2 {
		t.Errorf("total messages = %d, want 2", stats.TotalMessages)
	}
	if stats.ByLevel["none"] != 1 || stats.ByLevel["emergency"] != 1 {
		t.Errorf("by level = %v", stats.ByLevel)
	}
}

func TestDeleteSession(t *testing.T) {
	uc := newTestChatUsecase(t, &testLLM{reply: "ok"})

	if _, err := uc.Chat(context.Background(), &domain.ChatRequest{
		SessionID: "s1", Message: "hello",
	}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if err := uc.DeleteSession(context.Background(), "s1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := uc.GetSession(context.Background(), "s1"); !domain.IsNotFound(err) {
		t.Errorf("GetSession after delete: error = %v, want not found", err)
	}
}
