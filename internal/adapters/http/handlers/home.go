package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/scopestore/internal/adapters/http/dto"
	"github.com/jsamuelsen/scopestore/internal/adapters/http/middleware"
	"github.com/jsamuelsen/scopestore/internal/app"
	"github.com/jsamuelsen/scopestore/internal/app/scope"
	"github.com/jsamuelsen/scopestore/internal/domain"
)

// HomeHandler serves the caller-facing endpoints. It takes no identity
// parameters: the user and trace id come from the request scope.
type HomeHandler struct {
	store *scope.Store
	users *app.UserService
}

// NewHomeHandler creates a new home handler.
func NewHomeHandler(store *scope.Store, users *app.UserService) *HomeHandler {
	return &HomeHandler{store: store, users: users}
}

// UserResponse is the HTTP representation of a user.
type UserResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HomeResponse is the body of GET /api/v1/home.
type HomeResponse struct {
	Message     string              `json:"message"`
	User        *UserResponse       `json:"user"`
	Permissions []domain.Permission `json:"permissions"`
	TraceID     string              `json:"trace_id"`
}

// ProfileResponse is the body of GET /api/v1/me.
type ProfileResponse struct {
	User        UserResponse        `json:"user"`
	Permissions []domain.Permission `json:"permissions"`
	Admin       bool                `json:"admin"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Home handles GET /api/v1/home. Anonymous callers get a null user and no
// permissions.
func (h *HomeHandler) Home(c *gin.Context) {
	traceID := middleware.GetTraceID(h.store)

	resp := HomeResponse{
		Message:     "Hello World",
		Permissions: []domain.Permission{},
		TraceID:     traceID,
	}

	if h.users.Authenticated() {
		profile, err := h.users.Profile(c.Request.Context())
		if err != nil {
			dto.HandleError(c, traceID, err)
			return
		}

		user := toUserResponse(&profile.User)
		resp.User = &user
		resp.Permissions = profile.Permissions
	}

	c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/v1/me.
func (h *HomeHandler) Me(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context())
	if err != nil {
		dto.HandleError(c, middleware.GetTraceID(h.store), err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		User:        toUserResponse(&profile.User),
		Permissions: profile.Permissions,
		Admin:       profile.Has(domain.PermissionAdmin),
	})
}

// RegisterRoutes registers the home routes on rg. /me requires an
// authenticated caller.
func (h *HomeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/home", h.Home)
	rg.GET("/me", middleware.RequireAuth(h.store), h.Me)
}
