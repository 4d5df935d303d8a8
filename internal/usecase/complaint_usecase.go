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
)

// complaintUsecase implements domain.ComplaintUsecase. The LLM turns
// the guardian's description into a formal letter; a plain template
// takes over when the LLM is unavailable.
type complaintUsecase struct {
	complaintRepo domain.ComplaintRepository
	renderer      domain.ComplaintRenderer
	llm           domain.LLMClient
	logger        *slog.Logger
}

// NewComplaintUsecase wires complaint drafting together.
func NewComplaintUsecase(
	complaintRepo domain.ComplaintRepository,
	renderer domain.ComplaintRenderer,
	llm domain.LLMClient,
	logger *slog.Logger,
) domain.ComplaintUsecase {
	return &complaintUsecase{
		complaintRepo: complaintRepo,
		renderer:      renderer,
		llm:           llm,
		logger:        logger,
	}
}

const complaintDraftPrompt = `You draft formal complaint letters about incidents involving children.
Write a clear, factual letter addressed "To whom it may concern" based on the details the user provides.
Keep a respectful, serious tone. Do not invent details that were not provided. Plain text only, no headings.`

// Draft generates the complaint letter text and persists it.
func (u *complaintUsecase) Draft(ctx context.Context, req *domain.ComplaintRequest) (*entity.Complaint, error) {
	if req == nil || strings.TrimSpace(req.Description) == "" {
		return nil, domain.NewInvalidInputError("description is required")
	}
	if strings.TrimSpace(req.ReporterName) == "" {
		return nil, domain.NewInvalidInputError("reporter name is required")
	}

	now := time.Now()
	c := &entity.Complaint{
		ID:           newComplaintID(now),
		ReporterName: req.ReporterName,
		ChildName:    req.ChildName,
		IncidentDate: req.IncidentDate,
		Location:     req.Location,
		Description:  req.Description,
		CreatedAt:    now,
	}

	draft, err := u.llm.Complete(ctx, complaintDraftPrompt, []entity.ChatMessage{
		{Role: "user", Content: draftDetails(req)},
	})
	if err != nil || strings.TrimSpace(draft) == "" {
		if err != nil {
			u.logger.Error("llm unavailable for complaint draft, using template",
				"complaint_id", c.ID, "error", err)
		}
		draft = templateDraft(c)
	}
	c.DraftText = draft

	if err := u.complaintRepo.Save(ctx, c); err != nil {
		return nil, domain.NewInternalError(err)
	}

	u.logger.Info("complaint drafted", "complaint_id", c.ID)
	return c, nil
}

// RenderPDF writes the complaint to a PDF file and returns its path.
func (u *complaintUsecase) RenderPDF(ctx context.Context, id string) (string, error) {
	c, err := u.complaintRepo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if c.PDFPath != "" {
		return c.PDFPath, nil
	}

	path, err := u.renderer.Render(ctx, c)
	if err != nil {
		return "", domain.NewInternalError(err)
	}

	c.PDFPath = path
	if err := u.complaintRepo.Update(ctx, c); err != nil {
		return "", err
	}

	u.logger.Info("complaint pdf rendered", "complaint_id", id, "path", path)
	return path, nil
}

// Get returns a complaint by ID.
func (u *complaintUsecase) Get(ctx context.Context, id string) (*entity.Complaint, error) {
	return u.complaintRepo.Get(ctx, id)
}

// List returns recent complaints, newest first.
func (u *complaintUsecase) List(ctx context.Context, limit int) ([]*entity.Complaint, error) {
	return u.complaintRepo.List(ctx, limit)
}

// draftDetails lays out the request for the LLM.
func draftDetails(req *domain.ComplaintRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reported by: %s\n", req.ReporterName)
	if req.ChildName != "" {
		fmt.Fprintf(&b, "Child involved: %s\n", req.ChildName)
	}
	if req.IncidentDate != "" {
		fmt.Fprintf(&b, "Incident date: %s\n", req.IncidentDate)
	}
	if req.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", req.Location)
	}
	fmt.Fprintf(&b, "What happened: %s\n", req.Description)
	return b.String()
}

// templateDraft is the offline fallback letter.
func templateDraft(c *entity.Complaint) string {
	var b strings.Builder
	b.WriteString("To whom it may concern,\n\n")
	fmt.Fprintf(&b, "I, %s, wish to formally report the following incident", c.ReporterName)
	if c.ChildName != "" {
		fmt.Fprintf(&b, " involving %s", c.ChildName)
	}
	if c.IncidentDate != "" {
		fmt.Fprintf(&b, " on %s", c.IncidentDate)
	}
	if c.Location != "" {
		fmt.Fprintf(&b, " at %s", c.Location)
	}
	b.WriteString(".\n\n")
	b.WriteString(c.Description)
	b.WriteString("\n\nI request that this matter be investigated and appropriate action taken.\n\n")
	fmt.Fprintf(&b, "Sincerely,\n%s\n", c.ReporterName)
	return b.String()
}

func newComplaintID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return fmt.Sprintf("CMP_%s_%s", now.Format("20060102_150405"), suffix)
}
