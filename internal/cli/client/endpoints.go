package client

const (
	// API version prefix
	apiV1Prefix = "/api/v1"

	// Session endpoints
	endpointSessions     = apiV1Prefix + "/sessions"          // GET - list
	endpointSessionByID  = apiV1Prefix + "/sessions/%s"       // GET, DELETE
	endpointSessionReset = apiV1Prefix + "/sessions/%s/reset" // POST

	// Emergency endpoints
	endpointEmergencyAlert = apiV1Prefix + "/emergency/alert"  // POST
	endpointAlerts         = apiV1Prefix + "/emergency/alerts" // GET

	// Chat endpoints
	endpointChatCompletions = "/v1/chat/completions" // OpenAI-compatible endpoint
)
