package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"plotchat/internal/service"
)

const (
	authClaimsKey = "auth_claims"
	authTokenKey  = "auth_token"
)

var authSchemes = []string{"token ", "bearer "}

// TokenAuthMiddleware valida el token de acceso y guarda claims en el contexto.
// Acepta "Authorization: Token <t>" y "Authorization: Bearer <t>".
func TokenAuthMiddleware(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
			c.Abort()
			return
		}

		token, ok := tokenFromHeader(c.GetHeader("Authorization"))
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		claims, err := tokens.Parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authClaimsKey, claims)
		c.Set(authTokenKey, token)
		c.Next()
	}
}

func tokenFromHeader(header string) (string, bool) {
	header = strings.TrimSpace(header)
	lower := strings.ToLower(header)
	for _, scheme := range authSchemes {
		if strings.HasPrefix(lower, scheme) {
			token := strings.TrimSpace(header[len(scheme):])
			return token, token != ""
		}
	}
	return "", false
}

// GetAuthClaims obtiene los claims del token desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
