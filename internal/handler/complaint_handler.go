package handler

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
	"github.com/sajjad939/safechild-lite/internal/handler/dto"
)

// ComplaintHandler serves complaint drafting and PDF rendering.
type ComplaintHandler struct {
	usecase domain.ComplaintUsecase
	logger  *slog.Logger
}

// NewComplaintHandler creates the handler.
func NewComplaintHandler(usecase domain.ComplaintUsecase, logger *slog.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Draft generates a complaint letter.
func (h *ComplaintHandler) Draft(ctx context.Context, c *app.RequestContext) {
	var req dto.ComplaintRequest
	if err := c.BindJSON(&req); err != nil {
		ErrorResponse(c, domain.NewInvalidInputError("malformed request body"))
		return
	}

	complaint, err := h.usecase.Draft(ctx, &domain.ComplaintRequest{
		ReporterName: req.ReporterName,
		ChildName:    req.ChildName,
		IncidentDate: req.IncidentDate,
		Location:     req.Location,
		Description:  req.Description,
	})
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	CreatedResponse(c, complaintResponse(complaint))
}

// RenderPDF renders a complaint to PDF and returns the path.
func (h *ComplaintHandler) RenderPDF(ctx context.Context, c *app.RequestContext) {
	path, err := h.usecase.RenderPDF(ctx, c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, utils.H{"pdf_path": path})
}

// Get returns one complaint by ID.
func (h *ComplaintHandler) Get(ctx context.Context, c *app.RequestContext) {
	complaint, err := h.usecase.Get(ctx, c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, complaintResponse(complaint))
}

// List returns recent complaints, newest first. Supports ?limit=N.
func (h *ComplaintHandler) List(ctx context.Context, c *app.RequestContext) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			ErrorResponse(c, domain.NewInvalidInputError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	complaints, err := h.usecase.List(ctx, limit)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for _, cmp := range complaints {
		items = append(items, complaintResponse(cmp))
	}
	SuccessResponse(c, ListResponse{Items: items, TotalCount: len(items)})
}

func complaintResponse(c *entity.Complaint) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		ComplaintID:  c.ID,
		ReporterName: c.ReporterName,
		ChildName:    c.ChildName,
		IncidentDate: c.IncidentDate,
		Location:     c.Location,
		DraftText:    c.DraftText,
		PDFPath:      c.PDFPath,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}
