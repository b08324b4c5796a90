package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/service"
	"github.com/labstack/echo/v4"
)

// mapServiceError converts service errors to HTTP error responses.
func mapServiceError(c echo.Context, err error) error {
	var se *service.ServiceError
	if !errors.As(err, &se) {
		slog.Error("unexpected service error", "path", c.Path(), "error", err)
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}

	switch {
	case errors.Is(se.Err, service.ErrValidation), errors.Is(se.Err, service.ErrQuery):
		return Error(c, http.StatusBadRequest, se.Code, se.Message)
	case errors.Is(se.Err, service.ErrUpload), errors.Is(se.Err, service.ErrPersist):
		slog.Error("message request failed", "path", c.Path(), "code", se.Code, "error", se.Cause)
		return Error(c, http.StatusInternalServerError, se.Code, se.Message)
	default:
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
