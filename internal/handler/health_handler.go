package handler

import (
	"context"
	"database/sql"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates the health check handler.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{
		db: db,
	}
}

// Ping is a basic reachability check.
func (h *HealthHandler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{
		"status":  "ok",
		"message": "pong",
	})
}

// Readiness reports whether the service and its storage are ready.
func (h *HealthHandler) Readiness(ctx context.Context, c *app.RequestContext) {
	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(503, utils.H{
			"status":   "not_ready",
			"database": "unhealthy",
			"error":    err.Error(),
		})
		return
	}

	c.JSON(200, utils.H{
		"status":   "ready",
		"database": "healthy",
	})
}

// Liveness reports that the process is alive.
func (h *HealthHandler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{
		"status": "alive",
	})
}
