package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/dealer-crm/internal/domain/user"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

const (
	ContextUser  = "currentUser"
	ContextToken = "sessionToken"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// TokenFrom reads the session token from the cookie, falling back to a
// Bearer Authorization header.
func TokenFrom(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func AuthMiddleware(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFrom(c, cookieName)

		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			httperr.Respond(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUser, u)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil outside AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// RequireRole admits users whose effective role is one of roles.
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !user.HasRole(u.Role, roles...) {
			httperr.Respond(c, httperr.ErrPermissionDenied("role_not_allowed", "Permission denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}
