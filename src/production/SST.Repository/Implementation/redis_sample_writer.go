package implementation

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	interfaces "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Interfaces"
)

// RedisSampleWriter appends samples to RedisTimeSeries. TS.ADD is a single
// atomic command; there is no retry at this layer.
type RedisSampleWriter struct {
	client *redis.Client
	prefix string
}

// NewRedisSampleWriter creates a sample writer deriving series keys under the
// given namespace prefix.
func NewRedisSampleWriter(client *redis.Client, prefix string) *RedisSampleWriter {
	return &RedisSampleWriter{client: client, prefix: prefix}
}

func (w *RedisSampleWriter) Append(ctx context.Context, sample interfaces.Sample) error {
	key := seriesKey(w.prefix, sample.DeviceID, sample.DomainLabel)

	// TS.ADD key timestamp value LABELS device_id <id> domain <label>
	err := w.client.Do(ctx,
		"TS.ADD", key, sample.Timestamp.UnixMilli(), sample.Value,
		"LABELS", "device_id", sample.DeviceID, "domain", sample.DomainLabel,
	).Err()
	if err != nil {
		return fmt.Errorf("redis ts.add: %w", err)
	}
	return nil
}
