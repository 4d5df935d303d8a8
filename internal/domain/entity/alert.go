package entity

import "time"

// AlertSeverity ranks how quickly an emergency alert needs attention.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityHigh     AlertSeverity = "high"
	SeverityMedium   AlertSeverity = "medium"
	SeverityLow      AlertSeverity = "low"
)

// AlertStatus tracks the handling lifecycle of an alert.
type AlertStatus string

const (
	// AlertActive means the alert is raised and unhandled.
	AlertActive AlertStatus = "active"
	// AlertNotified means at least one guardian was reached.
	AlertNotified AlertStatus = "notified"
	// AlertResolved means a responder closed the alert.
	AlertResolved AlertStatus = "resolved"
)

// Valid reports whether s is a known status.
func (s AlertStatus) Valid() bool {
	switch s {
	case AlertActive, AlertNotified, AlertResolved:
		return true
	}
	return false
}

// EmergencyAlert records one escalation raised to guardians. Alerts are
// persisted so they survive restarts, unlike chat history.
type EmergencyAlert struct {
	ID          string
	Severity    AlertSeverity
	Status      AlertStatus
	Description string
	Location    string
	ChildName   string
	SessionID   string // originating chat session, empty for manual alerts
	Contacts    []string
	NextSteps   []string
	SMSSent     bool
	CreatedAt   time.Time
}
