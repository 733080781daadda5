package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/scopestore/internal/app/scope"
	"github.com/jsamuelsen/scopestore/internal/domain"
)

// HeaderCorrelationID is the header name for correlation ID.
// Unlike request ID (per-request), correlation ID tracks an entire
// business transaction across multiple services.
const HeaderCorrelationID = "X-Correlation-ID"

// CorrelationID returns middleware that handles correlation ID propagation.
// An upstream X-Correlation-ID is kept; otherwise this request is the
// origin of the transaction and a new UUID v4 is minted.
func CorrelationID(store *scope.Store) gin.HandlerFunc {
	return createIDMiddleware(store, idMiddlewareConfig{
		headerName: HeaderCorrelationID,
		storeKey:   domain.KeyCorrelationID,
	})
}

// GetCorrelationID returns the correlation ID of the current scope, or "".
func GetCorrelationID(store *scope.Store) string {
	return getID(store, domain.KeyCorrelationID)
}

// MustGetCorrelationID returns "unknown" when no correlation ID is set.
func MustGetCorrelationID(store *scope.Store) string {
	if id := GetCorrelationID(store); id != "" {
		return id
	}

	return "unknown"
}
