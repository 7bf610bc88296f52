package api

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCode classifies API failures for programmatic clients.
type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	// CodeParse covers output that could not be interpreted downstream.
	// Unrecoverable model output currently degrades to a fallback checklist
	// instead of surfacing here; malformed client input is CodeValidation.
	CodeParse     ErrorCode = "PARSE_ERROR"
	CodeTimeout   ErrorCode = "TIMEOUT"
	CodeUpstream  ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeInternal  ErrorCode = "INTERNAL_ERROR"
	CodeDuplicate ErrorCode = "DUPLICATE_RESOURCE"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	CorrelationID string         `json:"correlationId"`
	ErrorCode     ErrorCode      `json:"errorCode"`
	Message       string         `json:"message"`
	Timestamp     time.Time      `json:"timestamp"`
	Details       map[string]any `json:"details,omitempty"`
}

// respondError writes the uniform error body and aborts the handler chain.
func respondError(c *gin.Context, status int, code ErrorCode, message string, details map[string]any) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		CorrelationID: CorrelationIDFrom(c),
		ErrorCode:     code,
		Message:       message,
		Timestamp:     time.Now().UTC(),
		Details:       details,
	})
}
