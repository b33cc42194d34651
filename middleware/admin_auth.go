// middleware/admin_auth.go

package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	logger "github.com/evspresso/walter/logging"
)

// AdminClaims are the claims Walter expects in an ops API token.
type AdminClaims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin"`
}

// AdminAuth requires a bearer token signed with the shared secret and
// carrying the admin claim. Tokens are minted out of band by whoever runs
// the server.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// An empty secret means every HMAC signature verifies, including
		// attacker-minted ones. Refuse to authenticate anything.
		if secret == "" {
			logger.Error("Admin auth secret is not configured")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			logger.Warn("No Authorization token provided")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		claims := &AdminClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.Error("Error parsing token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		if !claims.Admin {
			logger.Warn("Token lacks the admin claim", zap.String("subject", claims.Subject))
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			c.Abort()
			return
		}

		c.Set("requestingUserID", claims.Subject)

		c.Next()
	}
}
