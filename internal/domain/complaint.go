package domain

import (
	"context"

	"github.com/sajjad939/safechild-lite/internal/domain/entity"
)

// ComplaintRequest asks for a formal complaint draft.
type ComplaintRequest struct {
	ReporterName string
	ChildName    string
	IncidentDate string
	Location     string
	Description  string
}

// ComplaintRepository persists drafted complaints.
type ComplaintRepository interface {
	// Save stores a new complaint.
	Save(ctx context.Context, c *entity.Complaint) error

	// Update rewrites an existing complaint (used after PDF render).
	Update(ctx context.Context, c *entity.Complaint) error

	// Get returns a complaint by ID or ErrNotFound.
	Get(ctx context.Context, id string) (*entity.Complaint, error)

	// List returns the most recent complaints, newest first.
	List(ctx context.Context, limit int) ([]*entity.Complaint, error)
}

// ComplaintRenderer writes a complaint to a PDF file and returns the
// file path.
type ComplaintRenderer interface {
	Render(ctx context.Context, c *entity.Complaint) (string, error)
}

// ComplaintUsecase drafts complaint letters and renders them to PDF.
type ComplaintUsecase interface {
	// Draft generates the complaint letter text and persists it.
	Draft(ctx context.Context, req *ComplaintRequest) (*entity.Complaint, error)

	// RenderPDF writes the complaint to a PDF file and returns its path.
	RenderPDF(ctx context.Context, id string) (string, error)

	// Get returns a complaint by ID.
	Get(ctx context.Context, id string) (*entity.Complaint, error)

	// List returns recent complaints, newest first.
	List(ctx context.Context, limit int) ([]*entity.Complaint, error)
}
