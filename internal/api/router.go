package api

import (
	"time"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/auth"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/gateway"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MaxBodySize bounds request bodies; attachments travel inline as base64.
const MaxBodySize = "25M"

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Messages *MessageHandler
	Sessions *SessionHandler
	Health   *HealthHandler
	Gateway  *gateway.Manager

	TokenService *auth.TokenService
	RateLimiter  RateLimiter
	RateLimit    int
}

// SetupRouter registers all routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler

	e.GET("/health", deps.Health.Health)
	e.GET("/gateway", deps.Gateway.HandleWebSocket)

	limit := deps.RateLimit
	if limit <= 0 {
		limit = 50
	}
	authMw := deps.TokenService.Middleware()

	sessions := e.Group("/auth", authMw, RateLimitMiddleware(deps.RateLimiter, limit, time.Minute))
	sessions.GET("/check", deps.Sessions.Check)

	messages := e.Group("/messages", middleware.BodyLimit(MaxBodySize))

	// Anonymous website clients.
	public := messages.Group("", RateLimitMiddleware(deps.RateLimiter, limit, time.Minute))
	public.POST("/clientSending/:clientId", deps.Messages.ClientSendMessage)
	public.GET("/get/:senderId", deps.Messages.GetMessages)

	// Authenticated staff.
	protected := messages.Group("", authMw, RateLimitMiddleware(deps.RateLimiter, limit, time.Minute))
	protected.GET("/loadMore", deps.Messages.LoadMoreMessages)
	protected.POST("/:id", deps.Messages.SendMessage)
}
