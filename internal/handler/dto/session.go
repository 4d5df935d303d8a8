package dto

// SessionResponse is the reportable safety state of one session.
type SessionResponse struct {
	SessionID    string         `json:"session_id"`
	Level        string         `json:"level"`
	AgeBand      string         `json:"age_band"`
	MessageCount int            `json:"message_count"`
	Categories   map[string]int `json:"categories"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// SessionListResponse lists tracked sessions.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

// MessageResponse is one transcript message.
type MessageResponse struct {
	MessageID string `json:"message_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// HistoryResponse is a window of a session's transcript.
type HistoryResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []MessageResponse `json:"messages"`
	Total     int               `json:"total"`
}

// ChatStatsResponse summarizes the tracked sessions.
type ChatStatsResponse struct {
	TotalSessions int            `json:"total_sessions"`
	TotalMessages int            `json:"total_messages"`
	ByLevel       map[string]int `json:"by_level"`
}
