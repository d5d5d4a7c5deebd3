package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zunayedTheCreator/property-prospect-server/internal/auth"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
)

const (
	// ContextKeyEmail holds the caller's email in Gin context.
	ContextKeyEmail = "callerEmail"
	// ContextKeyIdentity holds the resolved auth.Identity in Gin context.
	ContextKeyIdentity = "callerIdentity"
)

// IdentityResolver looks a caller up in the identity store.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, email string) (auth.Identity, error)
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := auth.ValidateJWT(parts[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ContextKeyEmail, claims.Email)
		c.Next()
	}
}

// RequireRole checks the caller's stored role. Assumes AuthMiddleware runs first.
// Unknown callers are forbidden, like callers with the wrong role.
func RequireRole(resolver IdentityResolver, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := CallerEmail(c)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		identity, err := resolver.ResolveIdentity(c.Request.Context(), email)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
			return
		case errors.Is(err, services.ErrStoreTimeout):
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Identity store timed out, retry later"})
			return
		default:
			log.Printf("Error resolving identity of %s: %v", email, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve caller"})
			return
		}

		if !auth.Authorize(identity, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
			return
		}
		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// CallerEmail returns the authenticated caller's email, or "".
func CallerEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}

// CallerIdentity returns the identity resolved by RequireRole.
func CallerIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
