package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/scopestore/internal/app/scope"
	"github.com/jsamuelsen/scopestore/internal/domain"
)

// HeaderRequestID is the header name for request ID.
const HeaderRequestID = "X-Request-ID"

// RequestID returns middleware that extracts or generates a request ID.
// The request ID is:
//   - Extracted from the X-Request-ID header if present
//   - Generated as a new UUID v4 if not present
//   - Stored under domain.KeyRequestID in the current scope
//   - Added to the response headers
func RequestID(store *scope.Store) gin.HandlerFunc {
	return createIDMiddleware(store, idMiddlewareConfig{
		headerName: HeaderRequestID,
		storeKey:   domain.KeyRequestID,
	})
}

// GetRequestID returns the request ID of the current scope, or "".
func GetRequestID(store *scope.Store) string {
	return getID(store, domain.KeyRequestID)
}

// MustGetRequestID returns "unknown" when no request ID is set.
func MustGetRequestID(store *scope.Store) string {
	if id := GetRequestID(store); id != "" {
		return id
	}

	return "unknown"
}
