// Package llm implements the language model client used to generate
// replies. The safety directive always travels as the system message.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sajjad939/safechild-lite/internal/config"
	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
)

// openaiClient implements domain.LLMClient on the OpenAI chat
// completions API.
type openaiClient struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger
}

// NewOpenAIClient builds the client from configuration.
func NewOpenAIClient(cfg config.LLMConfig, logger *slog.Logger) domain.LLMClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 300
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &openaiClient{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

// buildParams converts history into chat completion params with the
// directive as the system message.
func (c *openaiClient) buildParams(systemPrompt string, history []entity.ChatMessage) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(c.temperature),
	}
}

func (c *openaiClient) Complete(ctx context.Context, systemPrompt string, history []entity.ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, c.buildParams(systemPrompt, history))
	if err != nil {
		return "", domain.NewUnavailableError("language model", err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewUnavailableError("language model", fmt.Errorf("no choices returned"))
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *openaiClient) CompleteStreaming(ctx context.Context, systemPrompt string, history []entity.ChatMessage) (<-chan entity.StreamChunk, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.buildParams(systemPrompt, history))

	ch := make(chan entity.StreamChunk, 16)
	messageID := uuid.New().String()

	go func() {
		defer close(ch)

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				select {
				case ch <- entity.StreamChunk{Text: text, MessageID: messageID}:
				case <-ctx.Done():
					return
				}
			}
		}

		final := entity.StreamChunk{IsEnd: true, MessageID: messageID}
		if err := stream.Err(); err != nil {
			c.logger.Error("llm stream failed", "error", err)
			final.Error = err.Error()
		}
		select {
		case ch <- final:
		case <-ctx.Done():
		}
	}()

	return ch, nil
}
