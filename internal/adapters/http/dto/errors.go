// Package dto holds the request and response bodies of the context API.
package dto

import "net/http"

// ErrorResponse is the body of every non-2xx response. TraceID is the trace
// id from the request's scope, so clients can quote it back.
type ErrorResponse struct {
	Error   ErrorBody `json:"error"`
	TraceID string    `json:"traceId,omitempty"`
}

// ErrorBody carries a stable code, a message, and per-field details for
// validation failures.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error codes returned by the context API.
const (
	ErrorCodeBadRequest   = "BAD_REQUEST"
	ErrorCodeValidation   = "VALIDATION_ERROR"
	ErrorCodeUnauthorized = "UNAUTHORIZED"
	ErrorCodeForbidden    = "FORBIDDEN"
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeTimeout      = "TIMEOUT"
	ErrorCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal     = "INTERNAL_ERROR"
)

var codeStatus = map[string]int{
	ErrorCodeBadRequest:   http.StatusBadRequest,
	ErrorCodeValidation:   http.StatusBadRequest,
	ErrorCodeUnauthorized: http.StatusUnauthorized,
	ErrorCodeForbidden:    http.StatusForbidden,
	ErrorCodeNotFound:     http.StatusNotFound,
	ErrorCodeTimeout:      http.StatusGatewayTimeout,
	ErrorCodeUnavailable:  http.StatusServiceUnavailable,
	ErrorCodeInternal:     http.StatusInternalServerError,
}

// NewErrorResponse creates an error body with code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorBody{Code: code, Message: message}}
}

// WithDetails attaches per-field messages.
func (e *ErrorResponse) WithDetails(details map[string]string) *ErrorResponse {
	e.Error.Details = details
	return e
}

// WithTraceID tags the response with the request's trace id.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// Status returns the HTTP status for the response's code.
func (e *ErrorResponse) Status() int {
	return HTTPStatusFromCode(e.Error.Code)
}

// HTTPStatusFromCode maps an error code to its HTTP status. Unknown codes
// are server errors.
func HTTPStatusFromCode(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}
