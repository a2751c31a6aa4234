package middlewares

import (
	"net/http"

	"github.com/JerryLinyx/newsdigest/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid admin token signed with secret.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		username, err := utils.ParseJWT(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}

		c.Set("username", username)
		c.Next()
	}
}
