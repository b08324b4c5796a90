package api

import (
	"net/http"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/auth"
	"github.com/labstack/echo/v4"
)

// SessionHandler answers questions about the caller's session.
type SessionHandler struct{}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type sessionResponse struct {
	UserID string `json:"user_id"`
}

// Check handles GET /auth/check, echoing the identity behind a valid token.
func (h *SessionHandler) Check(c echo.Context) error {
	userID := auth.GetUserID(c)
	if userID == "" {
		return Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}
	return successJSON(c, http.StatusOK, sessionResponse{UserID: userID})
}
