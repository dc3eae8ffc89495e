package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lifetrack-api/internal/domain/repository"
	"lifetrack-api/pkg/helpers"
	"lifetrack-api/pkg/response"
)

// Identity is the resolved caller attached to the request context by Auth.
// It carries no credential material.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

const identityKey = "auth_identity"

// IdentityFrom returns the identity attached by Auth, if any.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// Auth verifies the bearer access token and resolves it to a live user
// record. Expired tokens are reported distinctly from invalid ones so
// clients know when a refresh attempt is worthwhile; both abort the chain
// with 401 and there is no fallback path.
func Auth(users repository.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.AbortError(c, http.StatusUnauthorized, "Missing token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "Missing token", nil)
			return
		}

		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			if errors.Is(err, helpers.ErrTokenExpired) {
				response.AbortError(c, http.StatusUnauthorized, "Token expired", nil)
				return
			}
			response.AbortError(c, http.StatusUnauthorized, "Not authorized", nil)
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "User not found", nil)
			return
		}

		c.Set(identityKey, Identity{UserID: u.ID.Hex(), Email: u.Email, Name: u.Name})
		c.Next()
	}
}
