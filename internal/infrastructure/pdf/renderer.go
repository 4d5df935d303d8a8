// Package pdf renders complaint letters to PDF files.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
)

// renderer implements domain.ComplaintRenderer with fpdf.
type renderer struct {
	dir string
}

// NewRenderer creates the renderer. Files are written under dir, which
// is created if missing.
func NewRenderer(dir string) (domain.ComplaintRenderer, error) {
	if dir == "" {
		dir = "complaints"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create pdf directory: %w", err)
	}
	return &renderer{dir: dir}, nil
}

func (r *renderer) Render(ctx context.Context, c *entity.Complaint) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Formal Complaint "+c.ID, false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, "Formal Complaint", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 10)
	writeField := func(label, value string) {
		if value == "" {
			return
		}
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(0, 6, value, "", "L", false)
	}

	writeField("Reference:", c.ID)
	writeField("Date filed:", c.CreatedAt.Format("2006-01-02"))
	writeField("Reported by:", c.ReporterName)
	writeField("Child:", c.ChildName)
	writeField("Incident date:", c.IncidentDate)
	writeField("Location:", c.Location)

	doc.Ln(6)
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, "Complaint", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.MultiCell(0, 6, c.DraftText, "", "L", false)

	path := filepath.Join(r.dir, c.ID+".pdf")
	if err := doc.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}
	return path, nil
}
