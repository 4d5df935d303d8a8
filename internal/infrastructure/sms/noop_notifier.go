package sms

import (
	"context"
	"log/slog"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
)

// noopNotifier logs alerts instead of sending SMS. Used when sms is
// disabled in config, and in tests.
type noopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier returns a notifier that only logs.
func NewNoopNotifier(logger *slog.Logger) domain.AlertNotifier {
	return &noopNotifier{logger: logger}
}

func (n *noopNotifier) Notify(ctx context.Context, alert *entity.EmergencyAlert) ([]string, error) {
	n.logger.Warn("sms disabled, alert not delivered",
		"alert_id", alert.ID,
		"severity", string(alert.Severity),
	)
	return nil, nil
}
