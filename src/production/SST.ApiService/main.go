package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/controllers"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/implementation/keys"
	authMiddleware "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/middleware"
	container "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Container"
	implementation "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Implementation"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewApiContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger().WithService("api-service")
	logger.Info("Starting API Service")

	config := ctr.GetConfig()

	// Connect to Redis
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	redisClient, err := ctr.GetRedis(ctx)
	if err != nil {
		logger.FatalWithError(err, "Failed to connect to Redis")
	}

	// Create repositories
	keyStore := implementation.NewRedisKeyStore(redisClient)
	sampleWriter := implementation.NewRedisSampleWriter(redisClient, config.Ingest.SensorDatumPrefix)

	// Ensure an admin key exists before accepting traffic. The key value is
	// disclosed exactly once, here; it cannot be recovered later.
	bootstrap, err := keys.BootstrapAdminKey(ctx, keyStore)
	if err != nil {
		logger.FatalWithError(err, "Failed to bootstrap admin API key")
	}
	if bootstrap.Created {
		logger.Warn("========================================================================")
		logger.Warn("                 INITIAL ADMIN API KEY GENERATED")
		logger.Warn("------------------------------------------------------------------------")
		logger.Warn("Use the following key to access the API key management endpoints:")
		logger.Warn("Authorization: " + authMiddleware.AuthScheme + " " + bootstrap.CreatedKey)
		logger.Warn("IMPORTANT: Store this key securely! It will not be shown again.")
		logger.Warn("========================================================================")
	} else {
		logger.Info("Admin API key already exists, skipping bootstrap")
	}

	// Initialize services and middleware
	keyService := keys.NewService(keyStore)
	auth := authMiddleware.NewAuthMiddleware(keyStore, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// Configure CORS from config
	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// Create controllers and register routes
	ingestController := controllers.NewIngestController(sampleWriter, config.Ingest, logger, auth)
	keyController := controllers.NewKeyController(keyService, logger, auth)
	healthController := controllers.NewHealthController(keyStore, logger)

	ingestController.RegisterRoutes(router)
	keyController.RegisterRoutes(router)
	healthController.RegisterRoutes(router)

	// Create HTTP server with timeouts
	port := config.Server.Port
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("API service running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
