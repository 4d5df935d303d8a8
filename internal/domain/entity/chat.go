package entity

import "time"

// ChatMessage is one turn in a conversation.
type ChatMessage struct {
	Role      string // user, assistant, system
	Content   string
	MessageID string
	Timestamp time.Time
}

// ChatSession is an in-memory conversation with a child. History is
// kept only for the lifetime of the session; nothing is persisted.
type ChatSession struct {
	SessionID string
	ChildAge  *int // reported age, nil when not provided
	Messages  []ChatMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StreamChunk is one piece of a streamed assistant reply.
type StreamChunk struct {
	Text      string
	IsEnd     bool
	Error     string
	MessageID string
}
