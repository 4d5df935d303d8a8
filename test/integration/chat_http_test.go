//go:build integration
// +build integration

package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/network/netpoll"

	"github.com/sajjad939/safechild-lite/internal/handler"
	"github.com/sajjad939/safechild-lite/internal/handler/dto"
	"github.com/sajjad939/safechild-lite/internal/infrastructure/llm"
	"github.com/sajjad939/safechild-lite/internal/infrastructure/memory"
	"github.com/sajjad939/safechild-lite/internal/safety"
	"github.com/sajjad939/safechild-lite/internal/usecase"
)

const testAddr = "127.0.0.1:18080"

// startTestServer wires the chat stack with the mock LLM client and
// starts a Hertz server. No external services are needed.
func startTestServer(t *testing.T) (baseURL string, shutdown func()) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	classifier, err := safety.NewClassifier(nil, logger)
	if err != nil {
		t.Fatalf("failed to build classifier: %v", err)
	}
	engine := safety.NewEngine(classifier, safety.NewTracker(), logger)

	chatUC := usecase.NewChatUsecase(engine, memory.NewSessionRepository(), llm.NewMockClient(), 10, logger)
	chatHandler := handler.NewChatHandler(chatUC, logger)
	sessionHandler := handler.NewSessionHandler(chatUC, logger)

	h := server.New(
		server.WithHostPorts(testAddr),
		server.WithTransport(netpoll.NewTransporter),
	)

	v1 := h.Group("/v1")
	v1.POST("/chat/completions", chatHandler.CreateChatCompletion)

	apiV1 := h.Group("/api/v1")
	apiV1.GET("/sessions/:id", sessionHandler.GetSession)

	go func() {
		if err := h.Run(); err != nil {
			logger.Error("server failed", "error", err)
		}
	}()

	// Wait for the server to come up
	time.Sleep(2 * time.Second)

	return "http://" + testAddr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.Shutdown(ctx)
	}
}

func postChat(t *testing.T, baseURL string, reqBody dto.ChatCompletionRequest) *http.Response {
	t.Helper()

	bodyBytes, _ := json.Marshal(reqBody)
	req, err := http.NewRequest("POST", baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestChatHTTP(t *testing.T) {
	baseURL, shutdown := startTestServer(t)
	defer shutdown()

	t.Run("SSE streaming chat with safety info", func(t *testing.T) {
		age := 8
		resp := postChat(t, baseURL, dto.ChatCompletionRequest{
			Messages: []dto.ChatCompletionMessage{
				{Role: "user", Content: "someone touched me and told me not to tell"},
			},
			Stream: true,
			Age:    &age,
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}

		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(contentType, "text/event-stream") {
			t.Errorf("expected Content-Type to contain 'text/event-stream', got '%s'", contentType)
		}

		reader := bufio.NewReader(resp.Body)
		chunkCount := 0
		receivedDone := false
		var firstChunk dto.ChatCompletionChunk

		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					break
				}
				t.Fatalf("failed to read stream: %v", err)
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if strings.HasPrefix(line, "data: ") {
				data := strings.TrimPrefix(line, "data: ")

				if data == "[DONE]" {
					receivedDone = true
					break
				}

				var chunk dto.ChatCompletionChunk
				if err := json.Unmarshal([]byte(data), &chunk); err != nil {
					t.Errorf("failed to unmarshal chunk: %v, data: %s", err, data)
					continue
				}

				chunkCount++

				// The first chunk carries the role, the session ID, and the
				// safety decision
				if chunkCount == 1 {
					firstChunk = chunk
					if chunk.Object != "chat.completion.chunk" {
						t.Errorf("expected object 'chat.completion.chunk', got '%s'", chunk.Object)
					}
					if chunk.ID == "" {
						t.Error("chunk ID should not be empty")
					}
					if len(chunk.Choices) == 0 {
						t.Fatal("choices should not be empty")
					}
					if chunk.Choices[0].Delta.Role != "assistant" {
						t.Errorf("expected role 'assistant', got '%s'", chunk.Choices[0].Delta.Role)
					}
					if chunk.SessionID == "" {
						t.Error("first chunk should carry the session ID")
					}
					if chunk.Safety == nil {
						t.Fatal("first chunk should carry safety info")
					}
					if chunk.Safety.Level != "urgent" {
						t.Errorf("expected level 'urgent', got '%s'", chunk.Safety.Level)
					}
					if chunk.Safety.AgeBand != "middle" {
						t.Errorf("expected age band 'middle', got '%s'", chunk.Safety.AgeBand)
					}
				}

				if chunkCount > 1 && chunk.ID != firstChunk.ID {
					t.Errorf("chunk ID should be consistent, expected '%s', got '%s'", firstChunk.ID, chunk.ID)
				}
			}
		}

		if chunkCount == 0 {
			t.Error("expected to receive at least one chunk")
		}
		if !receivedDone {
			t.Error("expected to receive [DONE] marker")
		}
	})

	t.Run("non-streaming chat", func(t *testing.T) {
		resp := postChat(t, baseURL, dto.ChatCompletionRequest{
			Messages: []dto.ChatCompletionMessage{
				{Role: "user", Content: "what is your favorite animal"},
			},
			Stream: false,
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}

		var chatResp dto.ChatCompletionResponse
		if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if chatResp.Object != "chat.completion" {
			t.Errorf("expected object 'chat.completion', got '%s'", chatResp.Object)
		}
		if len(chatResp.Choices) == 0 {
			t.Fatal("expected at least one choice")
		}
		if chatResp.Choices[0].Message.Role != "assistant" {
			t.Errorf("expected role 'assistant', got '%s'", chatResp.Choices[0].Message.Role)
		}
		if chatResp.Choices[0].Message.Content == "" {
			t.Error("expected non-empty content")
		}
		if chatResp.Safety == nil {
			t.Fatal("expected safety info")
		}
		if chatResp.Safety.Level != "none" {
			t.Errorf("expected level 'none', got '%s'", chatResp.Safety.Level)
		}
	})

	t.Run("escalation sticks to the session", func(t *testing.T) {
		sessionID := fmt.Sprintf("it-session-%d", time.Now().UnixNano())

		// First turn discloses a risk
		resp := postChat(t, baseURL, dto.ChatCompletionRequest{
			SessionID: sessionID,
			Messages: []dto.ChatCompletionMessage{
				{Role: "user", Content: "a stranger asked me to get in his car"},
			},
		})
		var first dto.ChatCompletionResponse
		if err := json.NewDecoder(resp.Body).Decode(&first); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		resp.Body.Close()

		if first.Safety == nil || first.Safety.Level != "urgent" {
			t.Fatalf("expected urgent after disclosure, got %+v", first.Safety)
		}

		// An innocuous follow-up must not lower the level
		resp = postChat(t, baseURL, dto.ChatCompletionRequest{
			SessionID: sessionID,
			Messages: []dto.ChatCompletionMessage{
				{Role: "user", Content: "anyway, I like drawing"},
			},
		})
		var second dto.ChatCompletionResponse
		if err := json.NewDecoder(resp.Body).Decode(&second); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		resp.Body.Close()

		if second.Safety == nil || second.Safety.Level != "urgent" {
			t.Fatalf("expected level to stay urgent, got %+v", second.Safety)
		}

		// The session endpoint reports the same state
		httpResp, err := http.Get(baseURL + "/api/v1/sessions/" + sessionID)
		if err != nil {
			t.Fatalf("session request failed: %v", err)
		}
		defer httpResp.Body.Close()

		if httpResp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", httpResp.StatusCode)
		}

		var envelope struct {
			Data dto.SessionResponse `json:"data"`
		}
		if err := json.NewDecoder(httpResp.Body).Decode(&envelope); err != nil {
			t.Fatalf("failed to decode session response: %v", err)
		}
		if envelope.Data.Level != "urgent" {
			t.Errorf("expected session level 'urgent', got '%s'", envelope.Data.Level)
		}
		if envelope.Data.MessageCount != 2 {
			t.Errorf("expected message count 2, got %d", envelope.Data.MessageCount)
		}
	})
}
