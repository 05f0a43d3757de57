package interfaces

import (
	"context"
	"time"
)

// Sample is one time-series data point ready to be appended.
type Sample struct {
	DeviceID    string
	DomainLabel string
	Timestamp   time.Time
	Value       float64
}

// SampleWriter appends timestamped samples to the time-series store. The
// append is a single store call; samples for the same (device, domain) pair
// accumulate under one series key.
type SampleWriter interface {
	Append(ctx context.Context, sample Sample) error
}
