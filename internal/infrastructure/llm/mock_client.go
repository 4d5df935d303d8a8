package llm

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
)

// mockClient answers with canned text derived from the system prompt.
// It exists for local development and tests (llm.mock: true).
type mockClient struct{}

// NewMockClient returns an LLM client that needs no provider.
func NewMockClient() domain.LLMClient {
	return &mockClient{}
}

func (m *mockClient) Complete(ctx context.Context, systemPrompt string, history []entity.ChatMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.reply(systemPrompt), nil
}

func (m *mockClient) CompleteStreaming(ctx context.Context, systemPrompt string, history []entity.ChatMessage) (<-chan entity.StreamChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan entity.StreamChunk, 4)
	messageID := uuid.New().String()
	go func() {
		defer close(ch)
		for _, word := range strings.SplitAfter(m.reply(systemPrompt), " ") {
			select {
			case ch <- entity.StreamChunk{Text: word, MessageID: messageID}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case ch <- entity.StreamChunk{IsEnd: true, MessageID: messageID}:
		case <-ctx.Done():
		}
	}()
	return ch, nil
}

// reply echoes the required phrases from the directive so callers can
// verify prompt plumbing end to end.
func (m *mockClient) reply(systemPrompt string) string {
	switch {
	case strings.Contains(systemPrompt, "level: emergency"):
		return "You are not in trouble. Please tell a trusted adult right away. If you are in danger, call your local emergency number."
	case strings.Contains(systemPrompt, "level: urgent"):
		return "It is good that you told me. This is not your fault. Please talk to a trusted adult about this."
	case strings.Contains(systemPrompt, "level: concern"):
		return "It is good that you told me. How are you feeling about it?"
	default:
		return "Thanks for chatting with me! What would you like to talk about?"
	}
}
