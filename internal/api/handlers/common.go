// Package handlers provides HTTP handlers for the catalog REST API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sgci.io/catalog/internal/api/middleware"
	"sgci.io/catalog/models"
)

// SuccessResponse wraps every successful payload.
type SuccessResponse struct {
	// Data contains the response payload.
	Data any `json:"data"`
}

// respondError sends the standard error envelope.
func respondError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
	})
}

func respondSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, SuccessResponse{Data: data})
}

// mapErrorToResponse converts a domain error to an HTTP response.
//
// Messages stay generic; the detailed cause is attached to the gin context so
// the request logger records it.
func mapErrorToResponse(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request parameters")

	case errors.Is(err, models.ErrRateLimitExceeded):
		respondError(c, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded")

	case errors.Is(err, models.ErrStoreUnavailable):
		respondError(c, http.StatusServiceUnavailable, "service_unavailable", "Resource store temporarily unavailable")

	case errors.Is(err, models.ErrSchemaViolation), errors.Is(err, models.ErrTypeResolution):
		respondError(c, http.StatusInternalServerError, "invalid_record", "A stored resource could not be read")

	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}
