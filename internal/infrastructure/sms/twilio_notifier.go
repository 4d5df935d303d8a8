// Package sms delivers emergency alerts to guardian phones.
package sms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/sajjad939/safechild-lite/internal/config"
	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
)

// twilioNotifier implements domain.AlertNotifier over the Twilio
// messaging API.
type twilioNotifier struct {
	client    *twilio.RestClient
	from      string
	guardians []string
	logger    *slog.Logger
}

// NewTwilioNotifier builds the notifier from configuration.
func NewTwilioNotifier(cfg config.SMSConfig, logger *slog.Logger) domain.AlertNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &twilioNotifier{
		client:    client,
		from:      cfg.From,
		guardians: cfg.Guardians,
		logger:    logger,
	}
}

// Notify sends the alert text to every configured guardian. A failure
// for one number does not stop delivery to the rest; the error reports
// how many sends failed.
func (n *twilioNotifier) Notify(ctx context.Context, alert *entity.EmergencyAlert) ([]string, error) {
	body := formatAlertSMS(alert)

	var reached []string
	var failed int
	for _, to := range n.guardians {
		if err := ctx.Err(); err != nil {
			return reached, err
		}

		params := &twilioapi.CreateMessageParams{}
		params.SetTo(to)
		params.SetFrom(n.from)
		params.SetBody(body)

		if _, err := n.client.Api.CreateMessage(params); err != nil {
			failed++
			n.logger.Error("sms delivery failed",
				"alert_id", alert.ID,
				"to", maskNumber(to),
				"error", err,
			)
			continue
		}
		reached = append(reached, to)
		n.logger.Info("sms delivered", "alert_id", alert.ID, "to", maskNumber(to))
	}

	if failed > 0 && len(reached) == 0 {
		return nil, domain.NewUnavailableError("sms gateway", fmt.Errorf("all %d sends failed", failed))
	}
	return reached, nil
}

// formatAlertSMS renders the short guardian-facing message.
func formatAlertSMS(alert *entity.EmergencyAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SafeChild ALERT [%s] %s", strings.ToUpper(string(alert.Severity)), alert.ID)
	if alert.ChildName != "" {
		fmt.Fprintf(&b, "\nChild: %s", alert.ChildName)
	}
	if alert.Location != "" {
		fmt.Fprintf(&b, "\nLocation: %s", alert.Location)
	}
	if alert.Description != "" {
		fmt.Fprintf(&b, "\n%s", alert.Description)
	}
	return b.String()
}

// maskNumber hides all but the last four digits in logs.
func maskNumber(number string) string {
	if len(number) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
