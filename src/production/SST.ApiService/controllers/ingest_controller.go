package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/apierrors"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/metrics"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/middleware"
	config "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Config"
	logger "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Logger"
	sstmodels "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Models"
	interfaces "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Interfaces"
)

// IngestContentType is the content type expected on ingest request bodies.
const IngestContentType = "application/x-protobuf"

// IngestController handles binary sensor reading ingestion
type IngestController struct {
	writer         interfaces.SampleWriter
	cfg            config.IngestConfig
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware

	// now is the sample clock; replaced in tests.
	now func() time.Time
}

// NewIngestController creates a new ingest controller
func NewIngestController(writer interfaces.SampleWriter, cfg config.IngestConfig, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *IngestController {
	return &IngestController{
		writer:         writer,
		cfg:            cfg,
		logger:         logger,
		authMiddleware: authMiddleware,
		now:            time.Now,
	}
}

// RegisterRoutes registers the ingest route with Gin
func (c *IngestController) RegisterRoutes(router *gin.Engine) {
	router.POST("/ingest", c.authMiddleware.RequireKey(), c.Ingest)
}

// Ingest decodes one binary sensor reading, validates it, and appends exactly
// one sample to the time-series store. Any failure before the append leaves
// the store untouched.
func (c *IngestController) Ingest(ctx *gin.Context) {
	if ct := ctx.ContentType(); !strings.EqualFold(ct, IngestContentType) {
		metrics.IngestFailures.WithLabelValues("content_type").Inc()
		apierrors.Internal(ctx, c.logger, "invalid content-type in ingest",
			fmt.Errorf("got %q, want %q", ct, IngestContentType))
		return
	}

	raw, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		metrics.IngestFailures.WithLabelValues("read_body").Inc()
		apierrors.Internal(ctx, c.logger, "failed to read ingest body", err)
		return
	}

	msg, err := sstmodels.DecodeSensorData(raw)
	if err != nil {
		metrics.IngestFailures.WithLabelValues("decode").Inc()
		apierrors.Internal(ctx, c.logger, "failed to decode protobuf in ingest", err)
		return
	}

	deviceID, err := msg.DeviceIDString()
	if err != nil {
		metrics.IngestFailures.WithLabelValues("device_id").Inc()
		apierrors.Internal(ctx, c.logger, "invalid UTF-8 in device_id in ingest", err)
		return
	}

	// Samples are stamped with the server's time of arrival unless the
	// deployment opts into trusting the payload's embedded timestamp.
	timestamp := c.now()
	if c.cfg.UsePayloadTimestamp {
		timestamp = time.Unix(msg.Timestamp, 0)
	}

	sample := interfaces.Sample{
		DeviceID:    deviceID,
		DomainLabel: msg.Domain.Label(),
		Timestamp:   timestamp,
		Value:       msg.Datum,
	}
	if err := c.writer.Append(ctx.Request.Context(), sample); err != nil {
		metrics.IngestFailures.WithLabelValues("store").Inc()
		apierrors.Internal(ctx, c.logger, "failed to write to time series in ingest", err)
		return
	}

	metrics.SamplesIngested.WithLabelValues(sample.DomainLabel).Inc()
	ctx.Status(http.StatusNoContent)
}
