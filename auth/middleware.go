package auth

import (
	"log"
	"net/http"
	"strings"

	"doctor_crm_gateway/session"

	"github.com/gin-gonic/gin"
)

const sessionKey = "gatewaySession"

// RequireSession extracts the bearer token, verifies the gateway JWT
// and loads the stored session into the gin context. Every
// authenticated route goes through here; nothing downstream reads
// ambient storage.
func RequireSession(secret string, store session.Store, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
			c.Abort()
			return
		}

		sessionID, role, err := ParseToken(secret, parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Session expired, please log in again"})
			c.Abort()
			return
		}

		if len(roles) > 0 {
			allowed := false
			for _, r := range roles {
				if r == role {
					allowed = true
					break
				}
			}
			if !allowed {
				c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Insufficient permissions"})
				c.Abort()
				return
			}
		}

		sess, err := store.Read(c.Request.Context(), sessionID)
		if err != nil {
			if err != session.ErrNoSession {
				log.Printf("[SESSION] read failed: %v", err)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Session expired, please log in again"})
			c.Abort()
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session RequireSession stored on the context.
func SessionFrom(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}
