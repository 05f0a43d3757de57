package sstingestor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Config"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.IngestorService/client"
	logger "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Logger"
	sstmodels "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Models"
)

// queuedReading is a decoded MQTT message waiting to be forwarded
type queuedReading struct {
	Data       sstmodels.SensorData
	Topic      string
	ReceivedAt time.Time
}

type Ingestor struct {
	cfg        config.MQTTConfig
	apiClient  *client.APIClient
	mqttClient mqtt.Client
	msgCh      chan queuedReading
	wg         sync.WaitGroup
	logger     *logger.Logger
}

func New(cfg config.MQTTConfig, apiClient *client.APIClient, logger *logger.Logger) *Ingestor {
	return &Ingestor{
		cfg:       cfg,
		apiClient: apiClient,
		msgCh:     make(chan queuedReading, 4096),
		logger:    logger,
	}
}

func (i *Ingestor) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(i.brokerURL()).
		SetClientID(i.cfg.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(i.cfg.KeepAlive).
		SetPingTimeout(i.cfg.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if i.cfg.BrokerUser != "" {
		opts.SetUsername(i.cfg.BrokerUser)
		opts.SetPassword(i.cfg.BrokerPass)
	}

	if i.cfg.UseTLS {
		tlsCfg, err := i.tlsConfig(i.cfg.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.logger.Logger.Error().Err(err).Msg("MQTT connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		topic := i.cfg.Topic
		if i.cfg.SharedGroup != "" {
			topic = fmt.Sprintf("$share/%s/%s", i.cfg.SharedGroup, i.cfg.Topic)
		}
		i.logger.Logger.Info().Str("topic", topic).Msg("MQTT connected, subscribing to topic")
		if token := c.Subscribe(topic, 1, i.onMessage); token.Wait() && token.Error() != nil {
			i.logger.Logger.Error().Err(token.Error()).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
		}
	}

	i.mqttClient = mqtt.NewClient(opts)
	if tk := i.mqttClient.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}

	// batch writer
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.batchWriter(ctx)
	}()

	return nil
}

func (i *Ingestor) Stop() {
	if i.mqttClient != nil && i.mqttClient.IsConnected() {
		i.mqttClient.Disconnect(500)
	}
	close(i.msgCh)
	i.wg.Wait()
}

func (i *Ingestor) IsConnected() bool {
	return i.mqttClient != nil && i.mqttClient.IsConnected()
}

func (i *Ingestor) onMessage(_ mqtt.Client, m mqtt.Message) {
	i.logger.Logger.Debug().Str("topic", m.Topic()).Str("payload", string(m.Payload())).Msg("Received MQTT message")

	deviceID, domain, err := ParseTopic(m.Topic())
	if err != nil {
		i.logger.Logger.Warn().Str("topic", m.Topic()).Err(err).Msg("Invalid topic format")
		i.publishError(deviceID, "invalid_topic", err.Error())
		return
	}

	datum, err := ParseDatum(m.Payload())
	if err != nil {
		i.logger.Logger.Warn().Str("topic", m.Topic()).Err(err).Msg("Invalid payload")
		i.publishError(deviceID, "invalid_payload", err.Error())
		return
	}

	now := time.Now().UTC()
	reading := queuedReading{
		Data: sstmodels.SensorData{
			Timestamp: now.Unix(),
			Datum:     datum,
			Domain:    domain,
			DeviceID:  []byte(deviceID),
		},
		Topic:      m.Topic(),
		ReceivedAt: now,
	}

	i.logger.Logger.Debug().Str("device_id", deviceID).Str("domain", domain.Label()).Msg("Queuing reading")
	i.msgCh <- reading
}

// ParseTopic extracts the device id and domain code from a sensor topic.
// Expected format: sensors/<device_id>/<domain_code>
func ParseTopic(topic string) (string, sstmodels.Domain, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "sensors" || parts[1] == "" {
		return "unknown", 0, fmt.Errorf("invalid topic %q, expected sensors/<device_id>/<domain_code>", topic)
	}

	code, err := strconv.ParseInt(parts[2], 10, 32)
	if err != nil {
		return parts[1], 0, fmt.Errorf("invalid domain code %q in topic %q", parts[2], topic)
	}
	return parts[1], sstmodels.Domain(code), nil
}

// ParseDatum reads a measured value from an MQTT payload. Payloads are
// either a JSON object with a "datum" field or a bare number.
func ParseDatum(payload []byte) (float64, error) {
	var obj struct {
		Datum *float64 `json:"datum"`
	}
	if err := json.Unmarshal(payload, &obj); err == nil && obj.Datum != nil {
		return *obj.Datum, nil
	}

	datum, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		return 0, fmt.Errorf("payload is neither a JSON object with a datum field nor a bare number")
	}
	return datum, nil
}

func (i *Ingestor) batchWriter(ctx context.Context) {
	batch := make([]queuedReading, 0, i.cfg.BatchSize)
	timer := time.NewTimer(i.cfg.BatchWindow)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		i.logger.Logger.Info().Int("batch_size", len(batch)).Msg("Flushing batch to API Service")

		for _, reading := range batch {
			deviceID := string(reading.Data.DeviceID)
			if err := i.apiClient.IngestReading(ctx, reading.Data.Encode()); err != nil {
				i.logger.Logger.Error().Err(err).Str("device_id", deviceID).Msg("Error forwarding reading to API")
				i.publishError(deviceID, "ingest_failed", fmt.Sprintf("Failed to forward reading: %v", err))
			}
		}

		i.logger.Logger.Info().Int("count", len(batch)).Msg("Processed readings")
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case rd, ok := <-i.msgCh:
			if !ok {
				flush()
				return
			}
			batch = append(batch, rd)
			if len(batch) >= i.cfg.BatchSize {
				flush()
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(i.cfg.BatchWindow)
			}
		case <-timer.C:
			flush()
			timer.Reset(i.cfg.BatchWindow)
		}
	}
}

func (i *Ingestor) brokerURL() string {
	scheme := "tcp"
	if i.cfg.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, i.cfg.BrokerHost, i.cfg.BrokerPort)
}

func (i *Ingestor) tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}

// publishError publishes an error message to the error topic for device feedback
func (i *Ingestor) publishError(deviceID, errorType, message string) {
	if i.mqttClient == nil || !i.mqttClient.IsConnected() {
		return
	}

	errorPayload := map[string]interface{}{
		"error_type": errorType,
		"message":    message,
		"device_id":  deviceID,
		"timestamp":  time.Now().UTC(),
	}

	payloadJSON, err := json.Marshal(errorPayload)
	if err != nil {
		i.logger.Logger.Error().Err(err).Msg("Failed to marshal error payload")
		return
	}

	errorTopic := fmt.Sprintf("ingestor/errors/%s", deviceID)
	token := i.mqttClient.Publish(errorTopic, 1, false, payloadJSON)

	if token.Wait() && token.Error() != nil {
		i.logger.Logger.Error().Err(token.Error()).Str("topic", errorTopic).Msg("Failed to publish error")
	}
}
