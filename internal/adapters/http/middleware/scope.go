// Package middleware provides HTTP middleware components for the Gin server.
//
// Request metadata lives in the request-scoped store rather than in
// gin.Context or context.Context. Scope must be the outermost middleware:
// everything after it runs inside the request's own slot.
package middleware

import (
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/scopestore/internal/app/scope"
	"github.com/jsamuelsen/scopestore/internal/domain"
)

// HeaderTraceID echoes the request's trace id to the client.
const HeaderTraceID = "X-Trace-ID"

// generatedTracePrefix marks trace ids minted without an active span.
const generatedTracePrefix = "trace_"

// Scope returns middleware that runs the rest of the chain inside a fresh
// store scope and records the request summary under domain.KeyRequest.
// Keep-alive requests served by the same goroutine never see each other's
// metadata.
func Scope(store *scope.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = store.Run(func() error {
			store.Set(domain.KeyRequest, domain.RequestInfo{
				Method:    c.Request.Method,
				Path:      c.Request.URL.Path,
				ClientIP:  c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
			})

			c.Next()

			return nil
		})
	}
}

// TraceID returns middleware that stores the request's trace id. The id of
// the active span is used when tracing is on; otherwise one is generated.
// Install it after the tracing middleware.
func TraceID(store *scope.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := generateTraceID()
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			id = sc.TraceID().String()
		}

		store.Set(domain.KeyTraceID, id)
		c.Header(HeaderTraceID, id)

		c.Next()
	}
}

// GetTraceID returns the trace id of the current request, or "".
func GetTraceID(store *scope.Store) string {
	id, _ := scope.Value[string](store, domain.KeyTraceID)
	return id
}

// GetRequestInfo returns the summary recorded by Scope.
func GetRequestInfo(store *scope.Store) (domain.RequestInfo, bool) {
	return scope.Value[domain.RequestInfo](store, domain.KeyRequest)
}

func generateTraceID() string {
	id := uuid.New()
	return generatedTracePrefix + hex.EncodeToString(id[:8])
}
