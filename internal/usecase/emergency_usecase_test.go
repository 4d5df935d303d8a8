package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
	"github.com/sajjad939/safechild-lite/internal/safety"
)

// testAlertRepo is an in-memory AlertRepository fake.
type testAlertRepo struct {
	alerts map[string]*entity.EmergencyAlert
	order  []string
}

func newTestAlertRepo() *testAlertRepo {
	return &testAlertRepo{alerts: make(map[string]*entity.EmergencyAlert)}
}

func (r *testAlertRepo) Save(ctx context.Context, alert *entity.EmergencyAlert) error {
	saved := *alert
	r.alerts[alert.ID] = &saved
	r.order = append(r.order, alert.ID)
	return nil
}

func (r *testAlertRepo) MarkNotified(ctx context.Context, id string, contacts []string) error {
	a, ok := r.alerts[id]
	if !ok {
		return domain.NewNotFoundError("alert", id)
	}
	a.Contacts = contacts
	a.SMSSent = len(contacts) > 0
	a.Status = entity.AlertNotified
	return nil
}

func (r *testAlertRepo) UpdateStatus(ctx context.Context, id string, status entity.AlertStatus) error {
	a, ok := r.alerts[id]
	if !ok {
		return domain.NewNotFoundError("alert", id)
	}
	a.Status = status
	return nil
}

func (r *testAlertRepo) Stats(ctx context.Context) (*domain.AlertStats, error) {
	stats := &domain.AlertStats{
		BySeverity: make(map[string]int),
		ByStatus:   make(map[string]int),
	}
	for _, a := range r.alerts {
		stats.Total++
		stats.BySeverity[string(a.Severity)]++
		stats.ByStatus[string(a.Status)]++
		if a.SMSSent {
			stats.SMSSent++
		}
	}
	return stats, nil
}

func (r *testAlertRepo) Get(ctx context.Context, id string) (*entity.EmergencyAlert, error) {
	if a, ok := r.alerts[id]; ok {
		return a, nil
	}
	return nil, domain.NewNotFoundError("alert", id)
}

func (r *testAlertRepo) List(ctx context.Context, limit int) ([]*entity.EmergencyAlert, error) {
	var out []*entity.EmergencyAlert
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.alerts[r.order[i]])
	}
	return out, nil
}

// testNotifier records notified alerts and can fail.
type testNotifier struct {
	notified []*entity.EmergencyAlert
	reached  []string
	fail     bool
}

func (n *testNotifier) Notify(ctx context.Context, alert *entity.EmergencyAlert) ([]string, error) {
	n.notified = append(n.notified, alert)
	if n.fail {
		return nil, fmt.Errorf("gateway down")
	}
	return n.reached, nil
}

func newTestEmergencyUsecase(t *testing.T, repo *testAlertRepo, notifier *testNotifier) (domain.EmergencyUsecase, *safety.Engine) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	classifier, err := safety.NewClassifier(nil, logger)
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	engine := safety.NewEngine(classifier, safety.NewTracker(), logger)
	return NewEmergencyUsecase(repo, notifier, engine, logger), engine
}

func TestRaiseAlert(t *testing.T) {
	repo := newTestAlertRepo()
	notifier := &testNotifier{reached: []string{"+15550100"}}
	uc, engine := newTestEmergencyUsecase(t, repo, notifier)

	// Drive a session to emergency so severity derives to critical.
	if _, err := engine.ProcessMessage(context.Background(), "s1", "help me now", nil); err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}

	alert, err := uc.RaiseAlert(context.Background(), &domain.EmergencyRequest{
		SessionID:   "s1",
		ChildName:   "Asha",
		Description: "Child disclosed immediate danger",
		Location:    "home",
	})
	if err != nil {
		t.Fatalf("RaiseAlert() error = %v", err)
	}
	if alert.Severity != entity.SeverityCritical {
		t.Errorf("severity = %s, want critical", alert.Severity)
	}
	if !strings.HasPrefix(alert.ID, "EMG_") {
		t.Errorf("alert id = %q, want EMG_ prefix", alert.ID)
	}
	if len(alert.NextSteps) == 0 {
		t.Error("no next steps attached")
	}
	if !alert.SMSSent || len(alert.Contacts) != 1 {
		t.Errorf("sms delivery not recorded: sent=%v contacts=%v", alert.SMSSent, alert.Contacts)
	}

	stored, err := uc.GetAlert(context.Background(), alert.ID)
	if err != nil {
		t.Fatalf("GetAlert() error = %v", err)
	}
	if !stored.SMSSent {
		t.Error("stored alert not marked notified")
	}
}

func TestRaiseAlertSeverity(t *testing.T) {
	tests := []struct {
		name     string
		severity string
		want     entity.AlertSeverity
		wantErr  bool
	}{
		{"explicit critical", "critical", entity.SeverityCritical, false},
		{"explicit low", "low", entity.SeverityLow, false},
		{"unknown severity", "catastrophic", "", true},
		{"default without session", "", entity.SeverityHigh, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := newTestEmergencyUsecase(t, newTestAlertRepo(), &testNotifier{})
			alert, err := uc.RaiseAlert(context.Background(), &domain.EmergencyRequest{
				Description: "something happened",
				Severity:    tt.severity,
			})
			if tt.wantErr {
				if !domain.IsInvalidInput(err) {
					t.Errorf("error = %v, want invalid input", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RaiseAlert() error = %v", err)
			}
			if alert.Severity != tt.want {
				t.Errorf("severity = %s, want %s", alert.Severity, tt.want)
			}
		})
	}
}

func TestRaiseAlertRequiresDescription(t *testing.T) {
	uc, _ := newTestEmergencyUsecase(t, newTestAlertRepo(), &testNotifier{})
	_, err := uc.RaiseAlert(context.Background(), &domain.EmergencyRequest{Description: "   "})
	if !domain.IsInvalidInput(err) {
		t.Errorf("error = %v, want invalid input", err)
	}
}

func TestRaiseAlertSurvivesNotifierFailure(t *testing.T) {
	repo := newTestAlertRepo()
	uc, _ := newTestEmergencyUsecase(t, repo, &testNotifier{fail: true})

	alert, err := uc.RaiseAlert(context.Background(), &domain.EmergencyRequest{
		Description: "urgent situation",
	})
	if err != nil {
		t.Fatalf("RaiseAlert() error = %v, alert must outlive a dead gateway", err)
	}
	if alert.SMSSent {
		t.Error("alert marked as sent despite gateway failure")
	}
	if _, err := repo.Get(context.Background(), alert.ID); err != nil {
		t.Errorf("alert not persisted: %v", err)
	}
}

func TestListAlerts(t *testing.T) {
	repo := newTestAlertRepo()
	uc, _ := newTestEmergencyUsecase(t, repo, &testNotifier{})

	for i := 0; i < 3; i++ {
		if _, err := uc.RaiseAlert(context.Background(), &domain.EmergencyRequest{
			Description: fmt.Sprintf("incident %d", i),
		}); err != nil {
			t.Fatalf("RaiseAlert() error = %v", err)
		}
	}

	alerts, err := uc.ListAlerts(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListAlerts() error = %v", err)
	}
	if len(alerts) != 2 {
		t.Errorf("listed %d alerts, want 2", len(alerts))
	}
}

func TestUpdateAlertStatus(t *testing.T) {
	repo := newTestAlertRepo()
	uc, _ := newTestEmergencyUsecase(t, repo, &testNotifier{})

	alert, err := uc.RaiseAlert(context.Background(), &domain.EmergencyRequest{
		Description: "incident under follow-up",
	})
	if err != nil {
		t.Fatalf("RaiseAlert() error = %v", err)
	}

	updated, err := uc.UpdateAlertStatus(context.Background(), alert.ID, "resolved")
	if err != nil {
		t.Fatalf("UpdateAlertStatus() error = %v", err)
	}
	if updated.Status != entity.AlertResolved {
		t.Errorf("status = %s, want resolved", updated.Status)
	}

	if _, err := uc.UpdateAlertStatus(context.Background(), alert.ID, "archived"); !domain.IsInvalidInput(err) {
		t.Errorf("error = %v, want invalid input for unknown status", err)
	}
	if _, err := uc.UpdateAlertStatus(context.Background(), "EMG_missing", "resolved"); !domain.IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestAlertStats(t *testing.T) {
	repo := newTestAlertRepo()
	uc, _ := newTestEmergencyUsecase(t, repo, &testNotifier{reached: []string{"+15550100"}})

	first, err := uc.RaiseAlert(context.Background(), &domain.EmergencyRequest{
		Description: "first incident",
		Severity:    "low",
	})
	if err != nil {
		t.Fatalf("RaiseAlert() error = %v", err)
	}
	if _, err := uc.RaiseAlert(context.Background(), &domain.EmergencyRequest{
		Description: "second incident",
		Severity:    "critical",
	}); err != nil {
		t.Fatalf("RaiseAlert() error = %v", err)
	}
	if _, err := uc.UpdateAlertStatus(context.Background(), first.ID, "resolved"); err != nil {
		t.Fatalf("UpdateAlertStatus() error = %v", err)
	}

	stats, err := uc.AlertStats(context.Background())
	if err != nil {
		t.Fatalf("AlertStats() error = %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.SMSSent != 2 {
		t.Errorf("sms sent = %d, want 2", stats.SMSSent)
	}
	if stats.BySeverity["low"] != 1 || stats.BySeverity["critical"] != 1 {
		t.Errorf("by severity = %v", stats.BySeverity)
	}
	if stats.ByStatus["resolved"] != 1 || stats.ByStatus["notified"] != 1 {
		t.Errorf("by status = %v", stats.ByStatus)
	}
}
