package types

// APIResponse represents a generic API response with typed data
type APIResponse[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ListData represents a generic list data structure
type ListData[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}

// Session is the reportable safety state of one chat session
type Session struct {
	SessionID    string         `json:"session_id"`
	Level        string         `json:"level"`
	AgeBand      string         `json:"age_band"`
	MessageCount int            `json:"message_count"`
	Categories   map[string]int `json:"categories"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// SessionList is the payload of the session list endpoint
type SessionList struct {
	Sessions []Session `json:"sessions"`
	Total    int       `json:"total"`
}

// AlertRequest raises an emergency alert
type AlertRequest struct {
	SessionID   string `json:"session_id,omitempty"`
	ChildName   string `json:"child_name,omitempty"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Severity    string `json:"severity,omitempty"` // critical, high, medium, low
}

// Alert describes a raised or stored emergency alert
type Alert struct {
	AlertID     string   `json:"alert_id"`
	Severity    string   `json:"severity"`
	Status      string   `json:"status"`
	Description string   `json:"description"`
	Location    string   `json:"location,omitempty"`
	ChildName   string   `json:"child_name,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
	NextSteps   []string `json:"next_steps"`
	SMSSent     bool     `json:"sms_sent"`
	CreatedAt   string   `json:"created_at"`
}
