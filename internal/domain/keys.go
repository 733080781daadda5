package domain

// Keys under which request metadata lives in the request-scoped store.
// Middleware writes them; services, handlers and the logger read them.
const (
	KeyRequest       = "request"
	KeyTraceID       = "trace_id"
	KeyRequestID     = "request_id"
	KeyCorrelationID = "correlation_id"
	KeyUserID        = "user_id"
	KeyClaims        = "claims"

	// KeyCurrentUser caches the resolved user for the rest of the request.
	KeyCurrentUser = "current_user"
)

// RequestInfo is the summary of the inbound request kept under KeyRequest.
type RequestInfo struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent,omitempty"`
}

// reservedKeys are owned by middleware and may not be written by clients.
var reservedKeys = map[string]struct{}{
	KeyRequest:       {},
	KeyTraceID:       {},
	KeyRequestID:     {},
	KeyCorrelationID: {},
	KeyUserID:        {},
	KeyClaims:        {},
	KeyCurrentUser:   {},
}

// IsReservedKey reports whether key holds request metadata.
func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}
