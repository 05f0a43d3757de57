package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/apierrors"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/implementation/keys"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/metrics"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/middleware"
	logger "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Logger"
)

// KeyController handles API key management requests (admin-scoped)
type KeyController struct {
	keyService     *keys.Service
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewKeyController creates a new key controller
func NewKeyController(keyService *keys.Service, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *KeyController {
	return &KeyController{
		keyService:     keyService,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// CreateKeyRequest is the body of POST /api/keys
type CreateKeyRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// RegisterRoutes registers the key management routes with Gin
func (c *KeyController) RegisterRoutes(router *gin.Engine) {
	apiKeys := router.Group("/api/keys", c.authMiddleware.RequireAdminKey())
	{
		apiKeys.POST("", c.CreateKey)
		apiKeys.GET("", c.ListKeys)
		apiKeys.DELETE("/:key", c.RevokeKey)
	}
}

func (c *KeyController) CreateKey(ctx *gin.Context) {
	var req CreateKeyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	created, err := c.keyService.Create(ctx.Request.Context(), req.UserID)
	if err != nil {
		apierrors.Internal(ctx, c.logger, "failed to create API key", err)
		return
	}

	metrics.KeysIssued.Inc()
	ctx.JSON(http.StatusCreated, created)
}

func (c *KeyController) ListKeys(ctx *gin.Context) {
	apiKeys, err := c.keyService.List(ctx.Request.Context())
	if err != nil {
		apierrors.Internal(ctx, c.logger, "failed to list API keys", err)
		return
	}

	ctx.JSON(http.StatusOK, apiKeys)
}

func (c *KeyController) RevokeKey(ctx *gin.Context) {
	key := ctx.Param("key")

	err := c.keyService.Revoke(ctx.Request.Context(), key)
	if errors.Is(err, keys.ErrKeyNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "key not found"})
		return
	}
	if err != nil {
		apierrors.Internal(ctx, c.logger, "failed to revoke API key", err)
		return
	}

	metrics.KeysRevoked.Inc()
	ctx.Status(http.StatusNoContent)
}
