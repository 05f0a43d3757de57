package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/metrics"
	logger "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Logger"
	interfaces "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Interfaces"
)

// HealthController handles liveness and readiness probes
type HealthController struct {
	store  interfaces.KeyStore
	logger *logger.Logger
}

// NewHealthController creates a new health controller
func NewHealthController(store interfaces.KeyStore, logger *logger.Logger) *HealthController {
	return &HealthController{store: store, logger: logger}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (c *HealthController) HealthReady(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	if err := c.store.Ping(checkCtx); err != nil {
		c.logger.ErrorWithError(err, "readiness check failed")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unready",
			"redis":  false,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"redis":  true,
	})
}
