package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler serves GET /health: 200 when healthy, 503 otherwise
func Handler(a *Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := a.Check(c.Request.Context())
		status := http.StatusOK
		if !resp.IsHealthy() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

// RegisterRoutes mounts /health and the bare /health/liveness probe
func RegisterRoutes(r gin.IRouter, a *Aggregator) {
	r.GET("/health", Handler(a))
	r.GET("/health/liveness", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": StatusHealthy})
	})
}
