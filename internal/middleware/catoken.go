package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/calyptra/units-backend/internal/platform/catoken"
	"github.com/calyptra/units-backend/internal/platform/logger"
)

const caNameKey = "caName"

// CATokenMiddleware authenticates app instances by their signed capability
// token. The token pins the full lease name, so an instance can only ever
// act on its own lease.
type CATokenMiddleware struct {
	log      *logger.Logger
	verifier *catoken.Verifier
}

func NewCATokenMiddleware(log *logger.Logger, verifier *catoken.Verifier) *CATokenMiddleware {
	return &CATokenMiddleware{
		log:      log.With("Middleware", "CATokenMiddleware"),
		verifier: verifier,
	}
}

func (cm *CATokenMiddleware) RequireCAToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		claims, err := cm.verifier.Verify(tokenString)
		if err != nil {
			cm.log.Debug("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		c.Set(caNameKey, claims.LeaseName().FQN())
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}

// CAName reads the lease FQN authenticated for this request, if any.
func CAName(c *gin.Context) string {
	return c.GetString(caNameKey)
}
