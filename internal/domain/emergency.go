package domain

import (
	"context"

	"github.com/sajjad939/safechild-lite/internal/domain/entity"
)

// EmergencyRequest raises an alert to the configured guardians.
type EmergencyRequest struct {
	SessionID   string // originating chat session, optional
	ChildName   string
	Description string
	Location    string
	Severity    string // optional override; derived from the session when empty
}

// AlertRepository persists emergency alerts.
type AlertRepository interface {
	// Save stores a new alert.
	Save(ctx context.Context, alert *entity.EmergencyAlert) error

	// MarkNotified records which contacts an alert reached and moves
	// the alert to the notified status.
	MarkNotified(ctx context.Context, id string, contacts []string) error

	// UpdateStatus moves an alert through its handling lifecycle.
	UpdateStatus(ctx context.Context, id string, status entity.AlertStatus) error

	// Get returns an alert by ID or ErrNotFound.
	Get(ctx context.Context, id string) (*entity.EmergencyAlert, error)

	// List returns the most recent alerts, newest first.
	List(ctx context.Context, limit int) ([]*entity.EmergencyAlert, error)

	// Stats aggregates stored alerts by severity and status.
	Stats(ctx context.Context) (*AlertStats, error)
}

// AlertStats summarizes the stored alerts.
type AlertStats struct {
	Total      int
	SMSSent    int
	BySeverity map[string]int
	ByStatus   map[string]int
}

// AlertNotifier fans an alert out to guardian contacts (SMS).
type AlertNotifier interface {
	// Notify delivers the alert and returns the contacts reached.
	Notify(ctx context.Context, alert *entity.EmergencyAlert) ([]string, error)
}

// EmergencyUsecase handles alert raising and lookup.
type EmergencyUsecase interface {
	// RaiseAlert validates, persists, and fans out an alert.
	RaiseAlert(ctx context.Context, req *EmergencyRequest) (*entity.EmergencyAlert, error)

	// GetAlert returns an alert by ID.
	GetAlert(ctx context.Context, id string) (*entity.EmergencyAlert, error)

	// ListAlerts returns recent alerts, newest first.
	ListAlerts(ctx context.Context, limit int) ([]*entity.EmergencyAlert, error)

	// UpdateAlertStatus validates and applies a status change.
	UpdateAlertStatus(ctx context.Context, id string, status string) (*entity.EmergencyAlert, error)

	// AlertStats aggregates stored alerts.
	AlertStats(ctx context.Context) (*AlertStats, error)
}
