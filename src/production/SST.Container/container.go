package container

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	config "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Config"
	logger "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Logger"
	implementation "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Implementation"
)

// ApiContainer manages dependencies for the API service
type ApiContainer struct {
	config *config.Config
	logger *logger.Logger

	mu    sync.Mutex
	redis *redis.Client
}

// IngestorContainer manages dependencies for the MQTT Ingestor service
type IngestorContainer struct {
	config *config.IngestorConfig
	logger *logger.Logger
}

// NewApiContainer creates a new container for the API service
func NewApiContainer() (*ApiContainer, error) {
	cfg, err := config.LoadApiConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load API configuration: %w", err)
	}

	log := logger.NewLogger(&cfg.Logging)

	return &ApiContainer{
		config: cfg,
		logger: log,
	}, nil
}

// NewIngestorContainer creates a new container for the MQTT Ingestor service
func NewIngestorContainer() (*IngestorContainer, error) {
	cfg, err := config.LoadIngestorConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load ingestor configuration: %w", err)
	}

	log := logger.NewLogger(&cfg.Logging)

	return &IngestorContainer{
		config: cfg,
		logger: log,
	}, nil
}

// GetConfig returns the configuration
func (c *ApiContainer) GetConfig() *config.Config {
	return c.config
}

// GetConfig returns the ingestor configuration
func (c *IngestorContainer) GetConfig() *config.IngestorConfig {
	return c.config
}

// GetLogger returns the logger
func (c *ApiContainer) GetLogger() *logger.Logger {
	return c.logger
}

// GetLogger returns the logger
func (c *IngestorContainer) GetLogger() *logger.Logger {
	return c.logger
}

// GetRedis returns the shared Redis client, connecting on first use. The
// client multiplexes all request traffic over its connection pool.
func (c *ApiContainer) GetRedis(ctx context.Context) (*redis.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.redis == nil {
		client, err := implementation.NewRedisClient(ctx, c.config.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.redis = client
	}

	return c.redis, nil
}

// Shutdown releases container-held resources
func (c *ApiContainer) Shutdown(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.logger.ErrorWithError(err, "Failed to close Redis client")
			return err
		}
		c.redis = nil
	}
	return nil
}

// Shutdown releases container-held resources
func (c *IngestorContainer) Shutdown(context.Context) error {
	return nil
}
