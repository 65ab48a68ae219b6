package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/jobscout/cache"
	"github.com/use-agent/jobscout/models"
)

// Version is reported by GET /health. Overridden at build time via -ldflags.
var Version = "0.1.0"

// Health returns a handler for GET /health.
func Health(cc *cache.Cache, browserEnabled bool, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       "ok",
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			Version:      Version,
			CacheEntries: cc.Len(),
			Browser:      browserEnabled,
		})
	}
}
