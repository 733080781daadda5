package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/scopestore/internal/domain"
	"github.com/jsamuelsen/scopestore/internal/platform/logging"
)

// MapDomainError maps a domain error to an HTTP status code and error response.
// Unknown errors are mapped to 500 Internal Server Error with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsValidation(err):
		var verr *domain.ValidationError
		if errors.As(err, &verr) && verr.Field != "" {
			return http.StatusBadRequest, NewErrorResponse(ErrorCodeValidation, verr.Error()).
				WithDetails(map[string]string{verr.Field: verr.Message})
		}

		return http.StatusBadRequest, NewErrorResponse(ErrorCodeValidation, err.Error())

	case domain.IsUnauthenticated(err):
		return http.StatusUnauthorized, NewErrorResponse(ErrorCodeUnauthorized, err.Error())

	case domain.IsForbidden(err):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, err.Error())

	case domain.IsUnavailable(err):
		// Dependency names stay in the logs, not the response
		return http.StatusServiceUnavailable, NewErrorResponse(
			ErrorCodeUnavailable,
			"service temporarily unavailable",
		)

	default:
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// HandleError writes the error response for err, tagged with traceID.
// Server-side failures are logged with the underlying error.
func HandleError(c *gin.Context, traceID string, err error) {
	status, errResp := MapDomainError(err)
	errResp.TraceID = traceID

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	c.JSON(status, errResp)
}

// RespondWithErrorCode writes an error response with a specific error code.
// Use this for adapter-level errors (e.g., bad request) that don't originate
// from domain errors.
func RespondWithErrorCode(c *gin.Context, traceID, code, message string) {
	errResp := NewErrorResponse(code, message).WithTraceID(traceID)
	c.JSON(errResp.Status(), errResp)
}

// RespondWithValidationErrors writes a 400 response with field-level validation errors.
func RespondWithValidationErrors(c *gin.Context, traceID string, fieldErrors map[string]string) {
	errResp := NewErrorResponse(ErrorCodeValidation, "request validation failed").
		WithDetails(fieldErrors).
		WithTraceID(traceID)

	c.JSON(errResp.Status(), errResp)
}
