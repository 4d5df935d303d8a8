package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
)

// complaintRepository implements domain.ComplaintRepository.
type complaintRepository struct {
	db *sql.DB
}

// NewComplaintRepository creates the repository.
func NewComplaintRepository(db *sql.DB) domain.ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Save(ctx context.Context, c *entity.Complaint) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO complaints (id, reporter_name, child_name, incident_date, location, description, draft_text, pdf_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.ReporterName,
		c.ChildName,
		c.IncidentDate,
		c.Location,
		c.Description,
		c.DraftText,
		c.PDFPath,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save complaint: %w", err)
	}
	return nil
}

func (r *complaintRepository) Update(ctx context.Context, c *entity.Complaint) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE complaints SET draft_text = ?, pdf_path = ? WHERE id = ?`,
		c.DraftText, c.PDFPath, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update complaint: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update complaint: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("complaint", c.ID)
	}
	return nil
}

func (r *complaintRepository) Get(ctx context.Context, id string) (*entity.Complaint, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, reporter_name, child_name, incident_date, location, description, draft_text, pdf_path, created_at
		FROM complaints WHERE id = ?`, id)

	c, err := scanComplaint(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("complaint", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load complaint: %w", err)
	}
	return c, nil
}

func (r *complaintRepository) List(ctx context.Context, limit int) ([]*entity.Complaint, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, reporter_name, child_name, incident_date, location, description, draft_text, pdf_path, created_at
		FROM complaints ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	defer rows.Close()

	var complaints []*entity.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}

func scanComplaint(s scanner) (*entity.Complaint, error) {
	var c entity.Complaint
	if err := s.Scan(
		&c.ID,
		&c.ReporterName,
		&c.ChildName,
		&c.IncidentDate,
		&c.Location,
		&c.Description,
		&c.DraftText,
		&c.PDFPath,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
