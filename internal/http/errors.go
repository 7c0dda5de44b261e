package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/applytrack/internal/domain"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondError maps a domain error to a status code. msg is the public
// summary; validation details are passed through, internal ones are logged.
func respondError(c *gin.Context, err error, msg string) {
	var domainErr *domain.DomainError
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: msg, Details: "Please sign in to continue"})
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msg, Details: "not found"})
	case domain.IsValidationError(err) && errors.As(err, &domainErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Details: domainErr.PublicMessage()})
	case domain.IsInfrastructureError(err):
		slog.ErrorContext(c.Request.Context(), msg, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
	default:
		slog.WarnContext(c.Request.Context(), msg, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
	}
}

// bindJSON decodes the body into req, answering 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		slog.WarnContext(c.Request.Context(), "invalid request body", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return false
	}
	return true
}
