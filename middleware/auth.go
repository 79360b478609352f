package middleware

import (
	"net/http"
	"strings"

	"meetsync/utils"

	"github.com/gin-gonic/gin"
)

// ActorAuthMiddleware resolves the acting user from the bearer token and
// puts the id on the request context. Handlers thread it explicitly into
// every coordinator call; there is no ambient session user anywhere below
// this point.
func ActorAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		actorID, err := utils.ActorFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("actorID", actorID)
		c.Next()
	}
}
