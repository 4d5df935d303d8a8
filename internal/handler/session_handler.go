package handler

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/handler/dto"
)

// SessionHandler serves session state inspection and management.
type SessionHandler struct {
	usecase domain.ChatUsecase
	logger  *slog.Logger
}

// NewSessionHandler creates the handler.
func NewSessionHandler(usecase domain.ChatUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// GetSession returns one session's safety state.
func (h *SessionHandler) GetSession(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	info, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, sessionResponse(info))
}

// ListSessions returns all tracked sessions.
func (h *SessionHandler) ListSessions(ctx context.Context, c *app.RequestContext) {
	infos, err := h.usecase.ListSessions(ctx)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	sessions := make([]dto.SessionResponse, 0, len(infos))
	for _, info := range infos {
		sessions = append(sessions, sessionResponse(info))
	}
	SuccessResponse(c, dto.SessionListResponse{
		Sessions: sessions,
		Total:    len(sessions),
	})
}

// GetHistory returns a window of a session's transcript, oldest first.
// Supports ?limit=N; by default the whole transcript is returned.
func (h *SessionHandler) GetHistory(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			ErrorResponse(c, domain.NewInvalidInputError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	messages, err := h.usecase.GetHistory(ctx, sessionID, limit)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	items := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		items = append(items, dto.MessageResponse{
			MessageID: m.MessageID,
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	SuccessResponse(c, dto.HistoryResponse{
		SessionID: sessionID,
		Messages:  items,
		Total:     len(items),
	})
}

// ClearHistory empties a session's transcript. The escalation level is
// untouched; only ResetSession lowers it.
func (h *SessionHandler) ClearHistory(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	if err := h.usecase.ClearHistory(ctx, sessionID); err != nil {
		ErrorResponse(c, err)
		return
	}
	NoContentResponse(c)
}

// Stats returns aggregate counts over the tracked sessions.
func (h *SessionHandler) Stats(ctx context.Context, c *app.RequestContext) {
	stats, err := h.usecase.Stats(ctx)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, dto.ChatStatsResponse{
		TotalSessions: stats.TotalSessions,
		TotalMessages: stats.TotalMessages,
		ByLevel:       stats.ByLevel,
	})
}

// ResetSession clears a session's escalation state. This is the only
// way a session de-escalates, so it is an explicit endpoint, never a
// side effect.
func (h *SessionHandler) ResetSession(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	if err := h.usecase.ResetSession(ctx, sessionID); err != nil {
		ErrorResponse(c, err)
		return
	}

	info, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, sessionResponse(info))
}

// DeleteSession removes a session and its history.
func (h *SessionHandler) DeleteSession(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	if err := h.usecase.DeleteSession(ctx, sessionID); err != nil {
		ErrorResponse(c, err)
		return
	}
	NoContentResponse(c)
}

func sessionResponse(info *domain.SessionInfo) dto.SessionResponse {
	return dto.SessionResponse{
		SessionID:    info.SessionID,
		Level:        info.Level,
		AgeBand:      info.AgeBand,
		MessageCount: info.MessageCount,
		Categories:   info.Categories,
		CreatedAt:    info.CreatedAt,
		UpdatedAt:    info.UpdatedAt,
	}
}
