package middleware

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/scopestore/internal/adapters/http/dto"
	"github.com/jsamuelsen/scopestore/internal/app/scope"
	"github.com/jsamuelsen/scopestore/internal/domain"
	"github.com/jsamuelsen/scopestore/internal/platform/config"
)

// Default header names if not configured.
const (
	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
	defaultScopesHeader  = "X-User-Scopes"
)

// Claims represents user claims extracted from gateway headers.
// The gateway (e.g., API Gateway, Envoy) validates the JWT and passes
// claims via headers to downstream services.
type Claims struct {
	// Subject is the user ID (sub claim).
	Subject string `json:"sub"`

	// Roles is the list of roles assigned to the user.
	Roles []string `json:"roles,omitempty"`

	// Scopes is the list of OAuth2 scopes granted.
	Scopes []string `json:"scopes,omitempty"`

	// Permissions is the list of fine-grained permissions.
	Permissions []string `json:"permissions,omitempty"`
}

// HasRole checks if the user has the specified role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole checks if the user has any of the specified roles.
func (c *Claims) HasAnyRole(roles ...string) bool {
	return slices.ContainsFunc(roles, c.HasRole)
}

// HasScope checks if the user has the specified scope.
func (c *Claims) HasScope(s string) bool {
	return slices.Contains(c.Scopes, s)
}

// HasAllScopes checks if the user has ALL specified scopes.
func (c *Claims) HasAllScopes(scopes ...string) bool {
	for _, s := range scopes {
		if !c.HasScope(s) {
			return false
		}
	}

	return true
}

// HasAnyScope checks if the user has any of the specified scopes.
func (c *Claims) HasAnyScope(scopes ...string) bool {
	return slices.ContainsFunc(scopes, c.HasScope)
}

// HasPermission checks if the user has the specified permission.
func (c *Claims) HasPermission(perm string) bool {
	return slices.Contains(c.Permissions, perm)
}

// UserID parses the subject as a numeric user id.
func (c *Claims) UserID() (int, bool) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// ExtractClaims extracts user claims from request headers.
// Header names are configurable via AuthConfig.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	subjectHeader := defaultSubjectHeader
	rolesHeader := defaultRolesHeader
	scopesHeader := defaultScopesHeader

	if cfg != nil {
		if cfg.SubjectHeader != "" {
			subjectHeader = cfg.SubjectHeader
		}

		if cfg.RolesHeader != "" {
			rolesHeader = cfg.RolesHeader
		}

		if cfg.ScopesHeader != "" {
			scopesHeader = cfg.ScopesHeader
		}
	}

	claims := &Claims{
		Subject: strings.TrimSpace(c.GetHeader(subjectHeader)),
	}

	// Roles are comma-separated
	if rolesStr := c.GetHeader(rolesHeader); rolesStr != "" {
		claims.Roles = parseCommaSeparated(rolesStr)
	}

	// Scopes are space-separated per OAuth2
	if scopesStr := c.GetHeader(scopesHeader); scopesStr != "" {
		claims.Scopes = strings.Fields(scopesStr)
	}

	return claims
}

// Authenticate returns middleware that attaches the caller's identity to the
// current scope. Requests without a subject continue anonymously. A numeric
// subject is also stored as domain.KeyUserID.
func Authenticate(store *scope.Store, cfg *config.AuthConfig, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ExtractClaims(c, cfg)

		if claims.Subject == "" {
			logger.DebugContext(c.Request.Context(), "anonymous request")
			c.Next()

			return
		}

		store.Set(domain.KeyClaims, claims)

		if id, ok := claims.UserID(); ok {
			store.Set(domain.KeyUserID, id)
			logger.DebugContext(c.Request.Context(), "user authenticated")
		}

		c.Next()
	}
}

// GetClaims returns the claims of the current scope, or nil.
func GetClaims(store *scope.Store) *Claims {
	claims, _ := scope.Value[*Claims](store, domain.KeyClaims)
	return claims
}

// RequireAuth returns middleware that rejects anonymous requests with 401.
func RequireAuth(store *scope.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := GetClaims(store); claims == nil || claims.Subject == "" {
			abortWithCode(c, store, dto.ErrorCodeUnauthorized, "authentication required")
			return
		}

		c.Next()
	}
}

// RequireRole returns middleware that requires a specific role.
func RequireRole(store *scope.Store, role string) gin.HandlerFunc {
	return requireClaims(store, "insufficient permissions: role "+role+" required",
		func(c *Claims) bool { return c.HasRole(role) })
}

// RequireAnyRole returns middleware that requires at least one of the roles.
func RequireAnyRole(store *scope.Store, roles ...string) gin.HandlerFunc {
	return requireClaims(store, "insufficient permissions: one of roles ["+strings.Join(roles, ", ")+"] required",
		func(c *Claims) bool { return c.HasAnyRole(roles...) })
}

// RequireScopes returns middleware that requires ALL specified scopes.
func RequireScopes(store *scope.Store, scopes ...string) gin.HandlerFunc {
	return requireClaims(store, "insufficient permissions: scopes ["+strings.Join(scopes, ", ")+"] required",
		func(c *Claims) bool { return c.HasAllScopes(scopes...) })
}

// RequireAnyScope returns middleware that requires at least one of the scopes.
func RequireAnyScope(store *scope.Store, scopes ...string) gin.HandlerFunc {
	return requireClaims(store, "insufficient permissions: one of scopes ["+strings.Join(scopes, ", ")+"] required",
		func(c *Claims) bool { return c.HasAnyScope(scopes...) })
}

// RequirePermission returns middleware that requires a specific permission.
func RequirePermission(store *scope.Store, perm string) gin.HandlerFunc {
	return requireClaims(store, "insufficient permissions: permission "+perm+" required",
		func(c *Claims) bool { return c.HasPermission(perm) })
}

// RequireAny returns middleware that passes if ANY of the provided check functions pass.
//
// Example:
//
//	router.GET("/resource", RequireAny(store,
//	    func(c *Claims) bool { return c.HasRole("admin") },
//	    func(c *Claims) bool { return c.HasScope("resource:read") },
//	))
func RequireAny(store *scope.Store, checks ...func(*Claims) bool) gin.HandlerFunc {
	return requireClaims(store, "insufficient permissions", func(c *Claims) bool {
		return slices.ContainsFunc(checks, func(check func(*Claims) bool) bool { return check(c) })
	})
}

// requireClaims aborts with 403 unless check passes on the scope's claims.
// Anonymous requests are checked against empty claims.
func requireClaims(store *scope.Store, message string, check func(*Claims) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(store)
		if claims == nil {
			claims = &Claims{}
		}

		if !check(claims) {
			abortWithCode(c, store, dto.ErrorCodeForbidden, message)
			return
		}

		c.Next()
	}
}

// parseCommaSeparated splits a comma-separated string into trimmed values.
func parseCommaSeparated(s string) []string {
	parts := strings.Split(s, ",")

	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
