package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/sajjad939/safechild-lite/internal/handler"
	"github.com/sajjad939/safechild-lite/internal/middleware"
)

// Setup sets up all routes
func Setup(
	h *server.Hertz,
	chatHandler *handler.ChatHandler,
	sessionHandler *handler.SessionHandler,
	emergencyHandler *handler.EmergencyHandler,
	complaintHandler *handler.ComplaintHandler,
	healthHandler *handler.HealthHandler,
) {
	// Global middleware
	h.Use(middleware.Recovery())
	h.Use(middleware.Logger())
	h.Use(middleware.CORS())

	// Health check routes
	h.GET("/ping", healthHandler.Ping)
	h.GET("/health/ready", healthHandler.Readiness)
	h.GET("/health/live", healthHandler.Liveness)

	// API v1 routes
	apiV1 := h.Group("/api/v1")
	{
		// Safety analysis without session state
		apiV1.POST("/chat/analyze", chatHandler.Analyze)
		apiV1.GET("/chat/stats", sessionHandler.Stats)

		// Session management
		sessions := apiV1.Group("/sessions")
		{
			sessions.GET("", sessionHandler.ListSessions)
			sessions.GET("/:id", sessionHandler.GetSession)
			sessions.GET("/:id/history", sessionHandler.GetHistory)
			sessions.DELETE("/:id/history", sessionHandler.ClearHistory)
			sessions.POST("/:id/reset", sessionHandler.ResetSession)
			sessions.DELETE("/:id", sessionHandler.DeleteSession)
		}

		// Emergency alerts
		emergency := apiV1.Group("/emergency")
		{
			emergency.POST("/alert", emergencyHandler.RaiseAlert)
			emergency.GET("/alerts", emergencyHandler.ListAlerts)
			emergency.GET("/alerts/:id", emergencyHandler.GetAlert)
			emergency.PUT("/alerts/:id/status", emergencyHandler.UpdateStatus)
			emergency.GET("/stats", emergencyHandler.Stats)
		}

		// Complaint drafting
		complaints := apiV1.Group("/complaints")
		{
			complaints.POST("", complaintHandler.Draft)
			complaints.GET("", complaintHandler.List)
			complaints.GET("/:id", complaintHandler.Get)
			complaints.POST("/:id/pdf", complaintHandler.RenderPDF)
		}
	}

	// OpenAI-compatible API
	v1 := h.Group("/v1")
	{
		// Chat completions (OpenAI format)
		// POST /v1/chat/completions
		v1.POST("/chat/completions", chatHandler.CreateChatCompletion)
	}
}
