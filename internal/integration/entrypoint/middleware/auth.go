// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/dto"
)

// ContextKey is a type for context keys.
type ContextKey string

// OwnerIDKey is the context key for the authenticated owner's ID.
const OwnerIDKey ContextKey = "owner_id"

// AuthMiddleware provides JWT authentication middleware.
type AuthMiddleware struct {
	verifier adapter.TokenVerifier
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(verifier adapter.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate returns a Gin middleware handler that enforces JWT authentication.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Authorization header is required",
				Code:  string(domainerror.ErrCodeMissingToken),
			})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Invalid authorization header format",
				Code:  string(domainerror.ErrCodeInvalidToken),
			})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		ownerID, err := m.verifier.VerifyAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Invalid or expired token",
				Code:  string(domainerror.ErrCodeInvalidToken),
			})
			c.Abort()
			return
		}

		c.Set(string(OwnerIDKey), ownerID)
		c.Next()
	}
}

// GetOwnerIDFromContext extracts the authenticated owner's ID from the Gin context.
func GetOwnerIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(string(OwnerIDKey))
	if !exists {
		return uuid.Nil, false
	}
	ownerID, ok := value.(uuid.UUID)
	return ownerID, ok
}
