package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/scopestore/internal/adapters/http/dto"
	"github.com/jsamuelsen/scopestore/internal/adapters/http/middleware"
	"github.com/jsamuelsen/scopestore/internal/app/scope"
)

// ContextHandler exposes the caller's own request scope.
type ContextHandler struct {
	store *scope.Store
}

// NewContextHandler creates a new context handler.
func NewContextHandler(store *scope.Store) *ContextHandler {
	return &ContextHandler{store: store}
}

// Get handles GET /api/v1/context.
func (h *ContextHandler) Get(c *gin.Context) {
	h.respond(c)
}

// Merge handles POST /api/v1/context/merge. The values only live for the
// rest of this request; the response shows the merged scope.
func (h *ContextHandler) Merge(c *gin.Context) {
	traceID := middleware.GetTraceID(h.store)

	var req dto.MergeRequest
	if err := dto.Bind(c, &req); err != nil {
		dto.RespondBindError(c, traceID, err)
		return
	}

	h.store.Merge(req.Values, req.ShouldOverwrite())

	h.respond(c)
}

func (h *ContextHandler) respond(c *gin.Context) {
	snap := h.store.Snapshot()

	values, err := json.Marshal(snap)
	if err != nil {
		dto.HandleError(c, middleware.GetTraceID(h.store), fmt.Errorf("encoding scope: %w", err))
		return
	}

	c.JSON(http.StatusOK, dto.ContextResponse{
		Count:  snap.Len(),
		Keys:   snap.Keys(),
		Values: values,
	})
}

// RegisterRoutes registers the context routes on rg.
func (h *ContextHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/context", h.Get)
	rg.POST("/context/merge", h.Merge)
}
