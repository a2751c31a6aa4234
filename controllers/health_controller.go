package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is an optional backing service the health check reports on.
type Pinger func(ctx context.Context) error

// Health provides an unauthenticated liveness endpoint. Backing services
// are reported but never fail the check; the API degrades without them.
func Health(service string, checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := make(gin.H, len(checks))
		for name, ping := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			if err := ping(ctx); err != nil {
				components[name] = "unavailable: " + err.Error()
			} else {
				components[name] = "ok"
			}
			cancel()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"service":    service,
			"components": components,
			"timestamp":  time.Now().UTC(),
		})
	}
}
