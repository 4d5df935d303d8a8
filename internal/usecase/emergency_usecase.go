package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
	"github.com/sajjad939/safechild-lite/internal/safety"
)

// emergencyUsecase implements domain.EmergencyUsecase. Alerts are
// persisted before notification, so a dead SMS gateway never loses an
// alert record.
type emergencyUsecase struct {
	alertRepo domain.AlertRepository
	notifier  domain.AlertNotifier
	engine    *safety.Engine
	logger    *slog.Logger
}

// NewEmergencyUsecase wires alert handling together.
func NewEmergencyUsecase(
	alertRepo domain.AlertRepository,
	notifier domain.AlertNotifier,
	engine *safety.Engine,
	logger *slog.Logger,
) domain.EmergencyUsecase {
	return &emergencyUsecase{
		alertRepo: alertRepo,
		notifier:  notifier,
		engine:    engine,
		logger:    logger,
	}
}

// RaiseAlert validates, persists, and fans out an alert.
func (u *emergencyUsecase) RaiseAlert(ctx context.Context, req *domain.EmergencyRequest) (*entity.EmergencyAlert, error) {
	if req == nil || strings.TrimSpace(req.Description) == "" {
		return nil, domain.NewInvalidInputError("description is required")
	}

	severity, err := u.resolveSeverity(req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	alert := &entity.EmergencyAlert{
		ID:          newAlertID(now),
		Severity:    severity,
		Status:      entity.AlertActive,
		Description: req.Description,
		Location:    req.Location,
		ChildName:   req.ChildName,
		SessionID:   req.SessionID,
		NextSteps:   nextStepsFor(severity),
		CreatedAt:   now,
	}

	if err := u.alertRepo.Save(ctx, alert); err != nil {
		return nil, domain.NewInternalError(err)
	}

	reached, err := u.notifier.Notify(ctx, alert)
	if err != nil {
		// The alert is saved; notification failure is reported but not fatal.
		u.logger.Error("alert notification failed", "alert_id", alert.ID, "error", err)
	}
	alert.Contacts = reached
	alert.SMSSent = len(reached) > 0
	if len(reached) > 0 {
		alert.Status = entity.AlertNotified
		if err := u.alertRepo.MarkNotified(ctx, alert.ID, reached); err != nil {
			u.logger.Error("failed to record notified contacts", "alert_id", alert.ID, "error", err)
		}
	}

	u.logger.Warn("emergency alert raised",
		"alert_id", alert.ID,
		"severity", string(alert.Severity),
		"session_id", alert.SessionID,
		"contacts_reached", len(reached),
	)

	return alert, nil
}

// GetAlert returns an alert by ID.
func (u *emergencyUsecase) GetAlert(ctx context.Context, id string) (*entity.EmergencyAlert, error) {
	return u.alertRepo.Get(ctx, id)
}

// ListAlerts returns recent alerts, newest first.
func (u *emergencyUsecase) ListAlerts(ctx context.Context, limit int) ([]*entity.EmergencyAlert, error) {
	return u.alertRepo.List(ctx, limit)
}

// UpdateAlertStatus validates and applies a status change, then returns
// the refreshed alert.
func (u *emergencyUsecase) UpdateAlertStatus(ctx context.Context, id string, status string) (*entity.EmergencyAlert, error) {
	next := entity.AlertStatus(status)
	if !next.Valid() {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("unknown status %q", status))
	}

	if err := u.alertRepo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}

	u.logger.Info("alert status updated", "alert_id", id, "status", status)
	return u.alertRepo.Get(ctx, id)
}

// AlertStats aggregates stored alerts.
func (u *emergencyUsecase) AlertStats(ctx context.Context) (*domain.AlertStats, error) {
	return u.alertRepo.Stats(ctx)
}

// resolveSeverity takes the explicit override, or derives severity
// from the originating session's escalation level.
func (u *emergencyUsecase) resolveSeverity(req *domain.EmergencyRequest) (entity.AlertSeverity, error) {
	if req.Severity != "" {
		switch entity.AlertSeverity(req.Severity) {
		case entity.SeverityCritical, entity.SeverityHigh, entity.SeverityMedium, entity.SeverityLow:
			return entity.AlertSeverity(req.Severity), nil
		}
		return "", domain.NewInvalidInputError(fmt.Sprintf("unknown severity %q", req.Severity))
	}

	if req.SessionID != "" {
		if state, ok := u.engine.Snapshot(req.SessionID); ok {
			return severityForLevel(state.Level), nil
		}
	}
	return entity.SeverityHigh, nil
}

func severityForLevel(level safety.EscalationLevel) entity.AlertSeverity {
	switch level {
	case safety.LevelEmergency:
		return entity.SeverityCritical
	case safety.LevelUrgent:
		return entity.SeverityHigh
	case safety.LevelConcern:
		return entity.SeverityMedium
	default:
		return entity.SeverityLow
	}
}

// nextStepsFor returns guardian guidance for the alert severity.
func nextStepsFor(severity entity.AlertSeverity) []string {
	switch severity {
	case entity.SeverityCritical:
		return []string{
			"Contact your local emergency services immediately",
			"Stay with the child and keep them safe",
			"Preserve any evidence; do not question the child repeatedly",
		}
	case entity.SeverityHigh:
		return []string{
			"Talk to the child in a calm, private setting",
			"Contact your local child protection helpline",
			"Document what the child has shared, in their own words",
		}
	case entity.SeverityMedium:
		return []string{
			"Check in with the child about how they are feeling",
			"Monitor the situation and keep notes",
		}
	default:
		return []string{
			"Review the conversation summary when convenient",
		}
	}
}

// newAlertID builds IDs like EMG_20260829_153000_a1b2c3 so guardians
// can read the timestamp straight off the reference.
func newAlertID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return fmt.Sprintf("EMG_%s_%s", now.Format("20060102_150405"), suffix)
}
