package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/scopestore/internal/app/scope"
)

// idMiddlewareConfig configures the ID middleware behavior.
type idMiddlewareConfig struct {
	headerName string
	storeKey   string
}

// createIDMiddleware creates middleware that extracts or generates an ID
// and records it in the store. Shared by request and correlation IDs.
func createIDMiddleware(store *scope.Store, cfg idMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cfg.headerName)
		if id == "" {
			id = uuid.New().String()
		}

		store.Set(cfg.storeKey, id)
		c.Header(cfg.headerName, id)

		c.Next()
	}
}

// getID reads a string ID from the current scope.
func getID(store *scope.Store, key string) string {
	id, _ := scope.Value[string](store, key)
	return id
}
