package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaudhary-hadi27/usman-fast-food/models"
	"github.com/chaudhary-hadi27/usman-fast-food/services"
)

// AuthCookieName is the HttpOnly cookie carrying the dashboard session token.
const AuthCookieName = "admin_token"

const ClaimsContextKey = "auth_claims"

// AdminRequired guards dashboard routes. The token comes from the session
// cookie; a Bearer header is accepted as a fallback for API clients.
func AdminRequired(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AuthCookieName)
		if err != nil || token == "" {
			if h := c.GetHeader("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
				token = h[7:]
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired session"})
			return
		}
		if claims.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "admin access required"})
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// GetClaims returns the verified claims stored by AdminRequired.
func GetClaims(c *gin.Context) *services.Claims {
	if v, ok := c.Get(ClaimsContextKey); ok {
		if claims, ok := v.(*services.Claims); ok {
			return claims
		}
	}
	return nil
}
