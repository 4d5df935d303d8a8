package dto

// ============ OpenAI-compatible chat API (HTTP layer) ============

// ChatCompletionMessage is the OpenAI message format.
type ChatCompletionMessage struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// ChatCompletionRequest is the chat request (HTTP). session_id and age
// are extensions; frontends pass them so escalation state sticks to
// the conversation.
type ChatCompletionRequest struct {
	Messages  []ChatCompletionMessage `json:"messages"`
	Stream    bool                    `json:"stream"`
	Model     string                  `json:"model,omitempty"`
	SessionID string                  `json:"session_id,omitempty"`
	Age       *int                    `json:"age,omitempty"`
}

// SafetySignal is one detected risk, reported to the frontend.
type SafetySignal struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// SafetyInfo summarizes the safety decision for a turn.
type SafetyInfo struct {
	Level    string         `json:"level"`
	AgeBand  string         `json:"age_band"`
	Signals  []SafetySignal `json:"signals,omitempty"`
	Fallback bool           `json:"fallback,omitempty"`
}

// ChatCompletionResponse is the non-streaming response (HTTP).
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"` // "chat.completion"
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`

	// Extension fields
	SessionID string      `json:"session_id,omitempty"`
	Safety    *SafetyInfo `json:"safety,omitempty"`
}

// ChatCompletionChoice is one response choice.
type ChatCompletionChoice struct {
	Index        int                   `json:"index"`
	Message      ChatCompletionMessage `json:"message"`
	FinishReason string                `json:"finish_reason"`
}

// ChatCompletionChunk is a streaming response block (HTTP).
type ChatCompletionChunk struct {
	ID      string                       `json:"id"`
	Object  string                       `json:"object"` // "chat.completion.chunk"
	Created int64                        `json:"created"`
	Model   string                       `json:"model"`
	Choices []ChatCompletionStreamChoice `json:"choices"`

	// Extension fields, set on the first chunk only
	SessionID string      `json:"session_id,omitempty"`
	Safety    *SafetyInfo `json:"safety,omitempty"`
}

// ChatCompletionStreamChoice is one streaming choice.
type ChatCompletionStreamChoice struct {
	Index        int                 `json:"index"`
	Delta        ChatCompletionDelta `json:"delta"`
	FinishReason *string             `json:"finish_reason"`
}

// ChatCompletionDelta is the incremental content.
type ChatCompletionDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ============ Analysis API ============

// AnalyzeRequest asks for classification only.
type AnalyzeRequest struct {
	Message string `json:"message"`
	Age     *int   `json:"age,omitempty"`
}

// AnalyzeResponse reports the classifier's view of one message.
type AnalyzeResponse struct {
	Signals []SafetySignal `json:"signals"`
	Floor   string         `json:"floor"`
	AgeBand string         `json:"age_band"`
}
