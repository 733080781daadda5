package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/scopestore/internal/adapters/http/dto"
	"github.com/jsamuelsen/scopestore/internal/app/scope"
)

// abortWithCode stops the chain with the standard error envelope, tagged with
// the request's trace id.
func abortWithCode(c *gin.Context, store *scope.Store, code, message string) {
	errResp := dto.NewErrorResponse(code, message).WithTraceID(GetTraceID(store))

	if c.Writer.Written() {
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(dto.HTTPStatusFromCode(code), errResp)
}
