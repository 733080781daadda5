package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/scopestore/internal/adapters/http/dto"
	"github.com/jsamuelsen/scopestore/internal/app/scope"
)

// Timeout returns middleware that puts a deadline on the request context.
// Handlers must respect ctx cancellation; when the chain returns after the
// deadline without having written a response, a 504 with the error envelope
// is sent. A non-positive timeout disables the middleware. Paths listed in
// skipPaths (e.g. streaming endpoints) get no deadline.
//
// The chain runs on the request goroutine, so it keeps the request scope.
func Timeout(store *scope.Store, logger *slog.Logger, timeout time.Duration, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok || timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() {
			return
		}

		logger.WarnContext(ctx, "request timeout",
			slog.String("path", c.Request.URL.Path),
			slog.String("method", c.Request.Method),
			slog.Duration("timeout", timeout),
		)

		abortWithCode(c, store, dto.ErrorCodeTimeout, "request timeout exceeded")
	}
}
