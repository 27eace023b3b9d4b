package middleware

import (
	"net/http"
	"strings"

	"github.com/edupay/backend/internal/domain/identity"
	"github.com/edupay/backend/internal/infrastructure/auth"
	"github.com/edupay/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey       = "jwt_claims"
	JWTUserIDKey       = "jwt_user_id"
	JWTOwnerAdminIDKey = "jwt_owner_admin_id"
	JWTUsernameKey     = "jwt_username"
	JWTRoleKey         = "jwt_role"
	AuthHeaderKey      = "Authorization"
	BearerPrefix       = "Bearer "
)

// JWTAuth creates JWT authentication middleware. Every request behind
// it carries validated claims including the owning admin, which scopes
// all tenant reads and writes downstream.
func JWTAuth(jwtService *auth.JWTService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "UNAUTHORIZED", "Missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "UNAUTHORIZED", "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, "UNAUTHORIZED", "Missing token")
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if log != nil {
				log.Warn("JWT authentication failed",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path),
				)
			}
			code, message := mapTokenError(err)
			abortUnauthorized(c, code, message)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTOwnerAdminIDKey, claims.OwnerAdminID)
		c.Set(JWTUsernameKey, claims.Username)
		c.Set(JWTRoleKey, claims.Role)

		c.Next()
	}
}

// RequireAdmin rejects requests whose claims do not carry the admin role.
// Must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(string(identity.RoleAdmin))
}

// RequireRole rejects requests whose claims carry a different role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortUnauthorized(c, "UNAUTHORIZED", "Authentication required")
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse("FORBIDDEN", "Insufficient role for this operation"))
			return
		}
		c.Next()
	}
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the authenticated user ID from gin.Context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTOwnerAdminID retrieves the owning admin ID from gin.Context
func GetJWTOwnerAdminID(c *gin.Context) string {
	return c.GetString(JWTOwnerAdminIDKey)
}

func mapTokenError(err error) (string, string) {
	switch err {
	case auth.ErrExpiredToken:
		return "TOKEN_EXPIRED", "Token has expired"
	case auth.ErrInvalidTokenType:
		return "TOKEN_INVALID", "Invalid token type"
	case auth.ErrTokenNotYetValid:
		return "TOKEN_INVALID", "Token is not yet valid"
	default:
		return "TOKEN_INVALID", "Invalid token"
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}
