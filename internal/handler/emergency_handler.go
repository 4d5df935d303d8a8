package handler

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/domain/entity"
	"github.com/sajjad939/safechild-lite/internal/handler/dto"
)

// EmergencyHandler serves alert raising and lookup.
type EmergencyHandler struct {
	usecase domain.EmergencyUsecase
	logger  *slog.Logger
}

// NewEmergencyHandler creates the handler.
func NewEmergencyHandler(usecase domain.EmergencyUsecase, logger *slog.Logger) *EmergencyHandler {
	return &EmergencyHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// RaiseAlert validates and raises an emergency alert.
func (h *EmergencyHandler) RaiseAlert(ctx context.Context, c *app.RequestContext) {
	var req dto.EmergencyAlertRequest
	if err := c.BindJSON(&req); err != nil {
		ErrorResponse(c, domain.NewInvalidInputError("malformed request body"))
		return
	}

	alert, err := h.usecase.RaiseAlert(ctx, &domain.EmergencyRequest{
		SessionID:   req.SessionID,
		ChildName:   req.ChildName,
		Description: req.Description,
		Location:    req.Location,
		Severity:    req.Severity,
	})
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	CreatedResponse(c, alertResponse(alert))
}

// GetAlert returns one alert by ID.
func (h *EmergencyHandler) GetAlert(ctx context.Context, c *app.RequestContext) {
	alert, err := h.usecase.GetAlert(ctx, c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, alertResponse(alert))
}

// ListAlerts returns recent alerts, newest first. Supports ?limit=N.
func (h *EmergencyHandler) ListAlerts(ctx context.Context, c *app.RequestContext) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			ErrorResponse(c, domain.NewInvalidInputError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	alerts, err := h.usecase.ListAlerts(ctx, limit)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	items := make([]dto.EmergencyAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, alertResponse(a))
	}
	SuccessResponse(c, ListResponse{Items: items, TotalCount: len(items)})
}

// UpdateStatus changes an alert's lifecycle status.
func (h *EmergencyHandler) UpdateStatus(ctx context.Context, c *app.RequestContext) {
	var req dto.AlertStatusUpdateRequest
	if err := c.BindJSON(&req); err != nil {
		ErrorResponse(c, domain.NewInvalidInputError("malformed request body"))
		return
	}

	alert, err := h.usecase.UpdateAlertStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, alertResponse(alert))
}

// Stats returns aggregate alert counts.
func (h *EmergencyHandler) Stats(ctx context.Context, c *app.RequestContext) {
	stats, err := h.usecase.AlertStats(ctx)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, dto.AlertStatsResponse{
		Total:      stats.Total,
		SMSSent:    stats.SMSSent,
		BySeverity: stats.BySeverity,
		ByStatus:   stats.ByStatus,
	})
}

func alertResponse(a *entity.EmergencyAlert) dto.EmergencyAlertResponse {
	return dto.EmergencyAlertResponse{
		AlertID:     a.ID,
		Severity:    string(a.Severity),
		Status:      string(a.Status),
		Description: a.Description,
		Location:    a.Location,
		ChildName:   a.ChildName,
		SessionID:   a.SessionID,
		NextSteps:   a.NextSteps,
		SMSSent:     a.SMSSent,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}
