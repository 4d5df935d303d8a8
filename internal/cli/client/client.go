package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/sajjad939/safechild-lite/internal/cli/types"
)

// APIClient wraps Hertz Client for HTTP communication with the API server
type APIClient struct {
	client *client.Client
	server string
}

// NewAPIClient creates a new API client
func NewAPIClient(server string) (*APIClient, error) {
	// Normalize server URL
	normalizedServer, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	// Use standard library dialer for streaming support
	// netpoll doesn't support streaming well, causing panics
	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithResponseBodyStream(true),     // Enable streaming response support
		client.WithDialer(standard.NewDialer()), // Use standard library for streaming
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client: c,
		server: normalizedServer,
	}, nil
}

// normalizeServerURL normalizes server URL to ensure it has a scheme and no trailing slash
func normalizeServerURL(server string) (string, error) {
	// Add scheme if missing
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	// Parse and validate
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}

	// Return scheme://host (no path, no trailing slash)
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// doJSON sends a JSON request and unmarshals the response body into out.
func (c *APIClient) doJSON(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(method)
	req.SetRequestURI(url)

	if body != nil {
		bodyBytes, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(bodyBytes)
	}

	if err := c.client.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("request failed with HTTP status: %d, body: %s", statusCode, string(resp.Body()))
	}

	if out != nil {
		if err := sonic.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// ListSessions lists tracked chat sessions
func (c *APIClient) ListSessions(ctx context.Context) ([]types.Session, error) {
	var listResp types.APIResponse[types.SessionList]
	if err := c.doJSON(ctx, consts.MethodGet, c.server+endpointSessions, nil, &listResp); err != nil {
		return nil, err
	}
	return listResp.Data.Sessions, nil
}

// GetSession fetches the safety state of one session
func (c *APIClient) GetSession(ctx context.Context, sessionID string) (*types.Session, error) {
	var resp types.APIResponse[types.Session]
	url := fmt.Sprintf("%s"+endpointSessionByID, c.server, sessionID)
	if err := c.doJSON(ctx, consts.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ResetSession clears the escalation state of a session
func (c *APIClient) ResetSession(ctx context.Context, sessionID string) (*types.Session, error) {
	var resp types.APIResponse[types.Session]
	url := fmt.Sprintf("%s"+endpointSessionReset, c.server, sessionID)
	if err := c.doJSON(ctx, consts.MethodPost, url, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteSession removes a session and its history
func (c *APIClient) DeleteSession(ctx context.Context, sessionID string) error {
	url := fmt.Sprintf("%s"+endpointSessionByID, c.server, sessionID)
	return c.doJSON(ctx, consts.MethodDelete, url, nil, nil)
}

// RaiseAlert raises an emergency alert
func (c *APIClient) RaiseAlert(ctx context.Context, req *types.AlertRequest) (*types.Alert, error) {
	var resp types.APIResponse[types.Alert]
	if err := c.doJSON(ctx, consts.MethodPost, c.server+endpointEmergencyAlert, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ListAlerts lists recent emergency alerts
func (c *APIClient) ListAlerts(ctx context.Context) ([]types.Alert, error) {
	var listResp types.APIResponse[types.ListData[types.Alert]]
	if err := c.doJSON(ctx, consts.MethodGet, c.server+endpointAlerts, nil, &listResp); err != nil {
		return nil, err
	}
	return listResp.Data.Items, nil
}

// ChatStreaming sends chat messages and returns a streaming response using Hertz's Stream API
func (c *APIClient) ChatStreaming(ctx context.Context, messages []types.ChatMessage, sessionID string, age *int) (<-chan types.ChatStreamChunk, <-chan error, error) {
	if len(messages) == 0 {
		return nil, nil, fmt.Errorf("chat request requires at least one message")
	}

	// Copy messages to avoid data races when caller mutates the slice while streaming
	safeMessages := make([]types.ChatMessage, len(messages))
	copy(safeMessages, messages)

	// Build request body
	reqBody := types.ChatRequest{
		Messages:  safeMessages,
		Stream:    true,
		SessionID: sessionID,
		Age:       age,
	}

	bodyBytes, err := sonic.Marshal(reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Create request
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointChatCompletions)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Accept", "text/event-stream")
	req.SetBody(bodyBytes)

	// Use Do() - Hertz will handle streaming response through BodyStream()
	if err := c.client.Do(ctx, req, resp); err != nil {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}

	// Check status code
	if resp.StatusCode() != 200 {
		statusCode := resp.StatusCode()
		body := resp.Body()
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, fmt.Errorf("chat failed with HTTP status: %d, body: %s", statusCode, string(body))
	}

	// Create channels for streaming
	chunkCh := make(chan types.ChatStreamChunk, 10)
	errCh := make(chan error, 1)

	// Start goroutine to read SSE stream in real-time
	go func() {
		defer func() {
			close(chunkCh)
			close(errCh)
			protocol.ReleaseRequest(req)
			protocol.ReleaseResponse(resp)
		}()

		// Use BodyStream() for streaming read
		bodyStream := resp.BodyStream()
		if bodyStream == nil {
			errCh <- fmt.Errorf("body stream is nil")
			return
		}

		// Parse SSE stream line by line as data arrives
		c.parseSSEStreamRealtime(bodyStream, chunkCh, errCh)
	}()

	return chunkCh, errCh, nil
}

// parseSSEStreamRealtime reads SSE stream line by line in real-time using Hertz's BodyStream()
func (c *APIClient) parseSSEStreamRealtime(reader io.Reader, chunkCh chan<- types.ChatStreamChunk, errCh chan<- error) {
	scanner := bufio.NewScanner(reader)

	// Increase buffer size for large SSE messages
	const maxScanTokenSize = 1024 * 1024 // 1MB
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines or comments
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		// Parse SSE data line
		if strings.HasPrefix(line, "data: ") {
			dataStr := strings.TrimPrefix(line, "data: ")

			// Check for [DONE] marker
			if dataStr == "[DONE]" {
				return
			}

			// Parse JSON chunk
			var chunk types.ChatStreamChunk
			if err := sonic.Unmarshal([]byte(dataStr), &chunk); err != nil {
				errCh <- fmt.Errorf("failed to parse chunk: %w", err)
				return
			}

			// Send chunk immediately
			select {
			case chunkCh <- chunk:
				// Successfully sent, continue reading next line
			case <-time.After(5 * time.Second):
				errCh <- fmt.Errorf("timeout sending chunk to channel")
				return
			}
		}
	}

	// Check for scanner errors
	if err := scanner.Err(); err != nil {
		// Don't report EOF as error
		if err != io.EOF {
			errCh <- fmt.Errorf("scanner error: %w", err)
		}
	}
}
