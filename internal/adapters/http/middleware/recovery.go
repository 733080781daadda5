package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/scopestore/internal/adapters/http/dto"
	"github.com/jsamuelsen/scopestore/internal/app/scope"
)

// Recovery returns middleware that recovers from panics.
// On panic, it:
//   - Logs the error with full stack trace at ERROR level
//   - Returns a 500 Internal Server Error with standard error envelope
//   - Includes trace_id in the response for debugging
//
// Install it directly after Scope so the panic is logged while the request
// metadata is still in place.
func Recovery(store *scope.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
			)

			abortWithCode(c, store, dto.ErrorCodeInternal, "an internal error occurred")
		}()

		c.Next()
	}
}
