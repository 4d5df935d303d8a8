package dto

// EmergencyAlertRequest raises an alert.
type EmergencyAlertRequest struct {
	SessionID   string `json:"session_id,omitempty"`
	ChildName   string `json:"child_name,omitempty"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Severity    string `json:"severity,omitempty"` // critical, high, medium, low
}

// AlertStatusUpdateRequest moves an alert through its lifecycle.
type AlertStatusUpdateRequest struct {
	Status string `json:"status"` // active, notified, resolved
}

// AlertStatsResponse summarizes stored alerts.
type AlertStatsResponse struct {
	Total      int            `json:"total"`
	SMSSent    int            `json:"sms_sent"`
	BySeverity map[string]int `json:"by_severity"`
	ByStatus   map[string]int `json:"by_status"`
}

// EmergencyAlertResponse describes a raised or stored alert.
type EmergencyAlertResponse struct {
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
