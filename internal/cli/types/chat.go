package types

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"`    // user, assistant, system
	Content string `json:"content"` // Message content
}

// ChatRequest represents a chat request
type ChatRequest struct {
	Messages  []ChatMessage `json:"messages"`
	Stream    bool          `json:"stream"` // Always true for streaming
	SessionID string        `json:"session_id,omitempty"`
	Age       *int          `json:"age,omitempty"`
}

// SafetySignal is one detected risk reported by the server
type SafetySignal struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// SafetyInfo summarizes the server's safety decision for a turn
type SafetyInfo struct {
	Level    string         `json:"level"`
	AgeBand  string         `json:"age_band"`
	Signals  []SafetySignal `json:"signals,omitempty"`
	Fallback bool           `json:"fallback,omitempty"`
}

// ChatStreamChunk represents a streaming chat response chunk
type ChatStreamChunk struct {
	ID        string                  `json:"id"`
	Object    string                  `json:"object"`
	Created   int64                   `json:"created"`
	Model     string                  `json:"model"`
	Choices   []ChatStreamChunkChoice `json:"choices"`
	SessionID string                  `json:"session_id,omitempty"`
	Safety    *SafetyInfo             `json:"safety,omitempty"`
}

// ChatStreamChunkChoice represents a choice in stream chunk
type ChatStreamChunkChoice struct {
	Index        int                  `json:"index"`
	Delta        ChatStreamChunkDelta `json:"delta"`
	FinishReason *string              `json:"finish_reason"`
}

// ChatStreamChunkDelta represents delta content
type ChatStreamChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}
