package services

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"doctor_crm_gateway/cache"
	"doctor_crm_gateway/config"
	"doctor_crm_gateway/session"
	"doctor_crm_gateway/upstream"

	"github.com/gin-gonic/gin"
)

// Cache areas. A mutation invalidates its whole area for the user, so
// every query variant of a list goes away together.
const (
	areaLeads    = "leads"
	areaAppts    = "appts"
	areaStats    = "stats"
	areaProfile  = "profile"
	areaMedicine = "medicines"
)

// App bundles the injected dependencies every handler needs. It is
// built once in main; handlers never reach for globals.
type App struct {
	Cfg      *config.Config
	CRM      *upstream.Client
	Cache    *cache.Cache
	Sessions session.Store
	Mailer   *Mailer
}

// CacheKey derives the cache slot from the request signature: user,
// area, upstream path and the encoded query. Two different searches
// against the same endpoint never share a slot.
func CacheKey(userID, area, path string, query url.Values) string {
	key := userID + ":" + area + ":" + path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	return key
}

func areaPrefix(userID, area string) string {
	return userID + ":" + area + ":"
}

// cachedGet reads an upstream GET through the cache.
func (a *App) cachedGet(c *gin.Context, sess session.Session, area, path string, query url.Values, ttl time.Duration) ([]byte, error) {
	key := CacheKey(sess.UserID, area, path, query)
	return a.Cache.GetOrFetch(c.Request.Context(), key, ttl, func(ctx context.Context) ([]byte, error) {
		return a.CRM.Get(ctx, path, query, sess.UpstreamToken)
	})
}

// invalidateArea drops every cached entry of one area for the user.
func (a *App) invalidateArea(ctx context.Context, userID, area string) {
	a.Cache.InvalidatePrefix(ctx, areaPrefix(userID, area))
}

// reportUpstreamError maps a failed upstream call onto the response.
// Server-reported messages are surfaced verbatim; transport failures
// get a generic message; a 401 means the stored token died.
func reportUpstreamError(c *gin.Context, err error) {
	if upstream.IsAuthError(err) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Session expired, please log in again"})
		return
	}
	if apiErr, ok := err.(*upstream.APIError); ok {
		c.JSON(apiErr.StatusCode, gin.H{"success": false, "message": apiErr.Message})
		return
	}
	log.Printf("[UPSTREAM] request failed: %v", err)
	c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to reach the CRM service"})
}

// proxyJSON writes an upstream payload through unchanged.
func proxyJSON(c *gin.Context, payload []byte) {
	c.Data(http.StatusOK, "application/json", payload)
}
