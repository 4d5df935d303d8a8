// Package database implements the persistent repositories on SQLite.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
)

// alertRepository implements domain.AlertRepository.
type alertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates the repository.
func NewAlertRepository(db *sql.DB) domain.AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Save(ctx context.Context, alert *entity.EmergencyAlert) error {
	contacts, err := sonic.MarshalString(alert.Contacts)
	if err != nil {
		return fmt.Errorf("failed to encode contacts: %w", err)
	}
	nextSteps, err := sonic.MarshalString(alert.NextSteps)
	if err != nil {
		return fmt.Errorf("failed to encode next steps: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO alerts (id, severity, status, description, location, child_name, session_id, contacts, next_steps, sms_sent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID,
		string(alert.Severity),
		string(alert.Status),
		alert.Description,
		alert.Location,
		alert.ChildName,
		alert.SessionID,
		contacts,
		nextSteps,
		alert.SMSSent,
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

func (r *alertRepository) MarkNotified(ctx context.Context, id string, contacts []string) error {
	encoded, err := sonic.MarshalString(contacts)
	if err != nil {
		return fmt.Errorf("failed to encode contacts: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET contacts = ?, sms_sent = ?, status = ? WHERE id = ?`,
		encoded, len(contacts) > 0, string(entity.AlertNotified), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark alert notified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark alert notified: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("alert", id)
	}
	return nil
}

func (r *alertRepository) Get(ctx context.Context, id string) (*entity.EmergencyAlert, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, severity, status, description, location, child_name, session_id, contacts, next_steps, sms_sent, created_at
		FROM alerts WHERE id = ?`, id)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("alert", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}
	return alert, nil
}

func (r *alertRepository) List(ctx context.Context, limit int) ([]*entity.EmergencyAlert, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, severity, status, description, location, child_name, session_id, contacts, next_steps, sms_sent, created_at
		FROM alerts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*entity.EmergencyAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (r *alertRepository) UpdateStatus(ctx context.Context, id string, status entity.AlertStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("alert", id)
	}
	return nil
}

func (r *alertRepository) Stats(ctx context.Context) (*domain.AlertStats, error) {
	stats := &domain.AlertStats{
		BySeverity: make(map[string]int),
		ByStatus:   make(map[string]int),
	}

	rows, err := r.db.QueryContext(ctx, `SELECT severity, status, sms_sent, COUNT(*) FROM alerts GROUP BY severity, status, sms_sent`)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var severity, status string
		var smsSent bool
		var count int
		if err := rows.Scan(&severity, &status, &smsSent, &count); err != nil {
			return nil, fmt.Errorf("failed to scan alert stats: %w", err)
		}
		stats.Total += count
		stats.BySeverity[severity] += count
		stats.ByStatus[status] += count
		if smsSent {
			stats.SMSSent += count
		}
	}
	return stats, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(s scanner) (*entity.EmergencyAlert, error) {
	var alert entity.EmergencyAlert
	var severity, status, contacts, nextSteps string
	if err := s.Scan(
		&alert.ID,
		&severity,
		&status,
		&alert.Description,
		&alert.Location,
		&alert.ChildName,
		&alert.SessionID,
		&contacts,
		&nextSteps,
		&alert.SMSSent,
		&alert.CreatedAt,
	); err != nil {
		return nil, err
	}
	alert.Severity = entity.AlertSeverity(severity)
	alert.Status = entity.AlertStatus(status)
	if err := sonic.UnmarshalString(contacts, &alert.Contacts); err != nil {
		return nil, fmt.Errorf("failed to decode contacts: %w", err)
	}
	if err := sonic.UnmarshalString(nextSteps, &alert.NextSteps); err != nil {
		return nil, fmt.Errorf("failed to decode next steps: %w", err)
	}
	return &alert, nil
}
