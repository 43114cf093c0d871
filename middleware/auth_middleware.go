package middleware

import (
	"net/http"
	"strings"

	"rps-backend/app/model"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// AuthMiddleware memvalidasi access token dari header Authorization (Bearer token)
// dan menyimpan Principal ke dalam context. Token restore ditolak di sini.
func AuthMiddleware(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.BuildResponseFailed("Authorization token required", "unauthenticated", "missing_or_invalid_authorization_header"))
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.BuildResponseFailed("Authorization token required", "unauthenticated", "empty_token"))
			return
		}

		claims, err := tokens.Parse(tokenString, utils.PurposeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.BuildResponseFailed("Invalid or expired token", "unauthenticated", err.Error()))
			return
		}

		p := claims.Principal()
		if err := p.Validate(); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.BuildResponseFailed("Invalid token claims", "unauthenticated", err.Error()))
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireRole menolak request jika active role tidak termasuk roles.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok || !p.EffectiveRole().In(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				utils.BuildResponseFailed("Akses ditolak", "authorization_error", nil))
			return
		}
		c.Next()
	}
}

// GetPrincipal mengambil Principal yang disimpan AuthMiddleware.
func GetPrincipal(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}
