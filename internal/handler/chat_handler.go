package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/handler/dto"
	"github.com/sajjad939/safechild-lite/internal/safety"
)

// ChatHandler serves the OpenAI-compatible chat API.
type ChatHandler struct {
	usecase domain.ChatUsecase
	logger  *slog.Logger
}

// NewChatHandler creates the handler.
func NewChatHandler(usecase domain.ChatUsecase, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// CreateChatCompletion handles one chat turn, streaming or not.
// The last message must come from the user; earlier messages are
// ignored because the server keeps its own history.
func (h *ChatHandler) CreateChatCompletion(ctx context.Context, c *app.RequestContext) {
	var req dto.ChatCompletionRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("failed to bind request", "error", err)
		ErrorResponse(c, domain.NewInvalidInputError("malformed request body"))
		return
	}

	if len(req.Messages) == 0 {
		ErrorResponse(c, domain.NewInvalidInputError("messages is required"))
		return
	}
	lastMessage := req.Messages[len(req.Messages)-1]
	if lastMessage.Role != "user" {
		ErrorResponse(c, domain.NewInvalidInputError("last message must be from user"))
		return
	}

	chatReq := &domain.ChatRequest{
		SessionID: req.SessionID,
		Message:   lastMessage.Content,
		ChildAge:  req.Age,
	}

	// Message content is deliberately absent from this log line.
	h.logger.Info("chat request received",
		"session_id", req.SessionID,
		"stream", req.Stream,
	)

	if req.Stream {
		h.handleStreaming(ctx, c, chatReq, req.Model)
	} else {
		h.handleNonStreaming(ctx, c, chatReq, req.Model)
	}
}

// Analyze classifies a message without generating a reply.
func (h *ChatHandler) Analyze(ctx context.Context, c *app.RequestContext) {
	var req dto.AnalyzeRequest
	if err := c.BindJSON(&req); err != nil {
		ErrorResponse(c, domain.NewInvalidInputError("malformed request body"))
		return
	}

	resp, err := h.usecase.Analyze(ctx, &domain.AnalyzeRequest{
		Message:  req.Message,
		ChildAge: req.Age,
	})
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.AnalyzeResponse{
		Signals: safetySignals(resp.Signals),
		Floor:   resp.Floor,
		AgeBand: resp.AgeBand,
	})
}

func (h *ChatHandler) handleNonStreaming(ctx context.Context, c *app.RequestContext, chatReq *domain.ChatRequest, model string) {
	resp, err := h.usecase.Chat(ctx, chatReq)
	if err != nil {
		h.logger.Error("chat failed", "error", err)
		ErrorResponse(c, err)
		return
	}

	c.JSON(consts.StatusOK, dto.ChatCompletionResponse{
		ID:      fmt.Sprintf("chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   h.getModel(model),
		Choices: []dto.ChatCompletionChoice{
			{
				Index: 0,
				Message: dto.ChatCompletionMessage{
					Role:    "assistant",
					Content: resp.Reply,
				},
				FinishReason: "stop",
			},
		},
		SessionID: resp.SessionID,
		Safety: &dto.SafetyInfo{
			Level:    resp.Level,
			AgeBand:  resp.AgeBand,
			Signals:  safetySignals(resp.Signals),
			Fallback: resp.Fallback,
		},
	})
}

func (h *ChatHandler) handleStreaming(ctx context.Context, c *app.RequestContext, chatReq *domain.ChatRequest, model string) {
	// Cancel the relay when this handler returns, whether the stream
	// completed or the client went away mid-write.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := h.usecase.ChatStreaming(ctx, chatReq)
	if err != nil {
		h.logger.Error("streaming chat failed", "error", err)
		ErrorResponse(c, err)
		return
	}

	// Status must be set before the SSE writer takes over.
	c.SetStatusCode(consts.StatusOK)

	writer := sse.NewWriter(c)
	defer writer.Close()

	chatID := fmt.Sprintf("chatcmpl-%d", time.Now().UnixNano())
	created := time.Now().Unix()
	modelName := h.getModel(model)

	firstChunk := true

	for chunk := range stream.Chunks {
		if chunk.Error != "" {
			h.logger.Error("stream error", "error", chunk.Error)
			break
		}

		if chunk.Text != "" || firstChunk {
			out := dto.ChatCompletionChunk{
				ID:      chatID,
				Object:  "chat.completion.chunk",
				Created: created,
				Model:   modelName,
				Choices: []dto.ChatCompletionStreamChoice{
					{
						Index:        0,
						Delta:        dto.ChatCompletionDelta{Content: chunk.Text},
						FinishReason: nil,
					},
				},
			}

			// The first chunk carries the role and the safety decision.
			if firstChunk {
				out.SessionID = stream.SessionID
				out.Safety = &dto.SafetyInfo{Level: stream.Level, AgeBand: stream.AgeBand}
				out.Choices[0].Delta.Role = "assistant"
				firstChunk = false
			}

			if err := h.writeSSEJSON(writer, out); err != nil {
				h.logger.Error("failed to write sse event", "error", err)
				break
			}
		}

		if chunk.IsEnd {
			finishReason := "stop"
			final := dto.ChatCompletionChunk{
				ID:      chatID,
				Object:  "chat.completion.chunk",
				Created: created,
				Model:   modelName,
				Choices: []dto.ChatCompletionStreamChoice{
					{
						Index:        0,
						Delta:        dto.ChatCompletionDelta{},
						FinishReason: &finishReason,
					},
				},
			}
			if err := h.writeSSEJSON(writer, final); err != nil {
				h.logger.Error("failed to write final event", "error", err)
				break
			}

			if err := writer.WriteEvent("", "", []byte("[DONE]")); err != nil {
				h.logger.Error("failed to write done event", "error", err)
			}
			break
		}
	}
}

// writeSSEJSON sends JSON over the Hertz SSE writer. WriteEvent adds
// the "data: " framing and flushes.
func (h *ChatHandler) writeSSEJSON(writer *sse.Writer, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}
	return writer.WriteEvent("", "", jsonData)
}

func (h *ChatHandler) getModel(model string) string {
	if model == "" {
		return "safechild-companion"
	}
	return model
}

// safetySignals converts engine signals to the wire format. Matched
// text and spans stay server-side.
func safetySignals(signals []safety.RiskSignal) []dto.SafetySignal {
	out := make([]dto.SafetySignal, 0, len(signals))
	for _, s := range signals {
		out = append(out, dto.SafetySignal{
			Category:   string(s.Category),
			Confidence: s.Confidence,
		})
	}
	return out
}
