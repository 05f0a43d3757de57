package sstmodels

import (
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Domain is the measurement category of a sensor reading.
type Domain int32

const (
	DomainUnspecified        Domain = 0
	DomainSoundPressureLevel Domain = 1
)

// Label maps a domain code to the label stored alongside samples. The mapping
// is total: codes outside the known enumeration label the sample "unknown"
// instead of failing the reading.
func (d Domain) Label() string {
	switch d {
	case DomainUnspecified:
		return "unspecified"
	case DomainSoundPressureLevel:
		return "sound_pressure_level"
	default:
		return "unknown"
	}
}

// SensorData is one decoded telemetry reading. It lives only for the duration
// of a single ingest request; what persists is the time-series sample
// projected from it.
type SensorData struct {
	Timestamp int64   // unix seconds, as reported by the sensor
	Datum     float64 // measured value
	Domain    Domain
	DeviceID  []byte
}

// Protobuf field numbers of the SensorData wire schema.
const (
	sensorFieldTimestamp = 1
	sensorFieldDatum     = 2
	sensorFieldDomain    = 3
	sensorFieldDeviceID  = 4
)

// DecodeSensorData parses the binary SensorData message.
func DecodeSensorData(raw []byte) (*SensorData, error) {
	var msg SensorData
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return nil, fmt.Errorf("malformed tag: %w", protowire.ParseError(n))
		}
		raw = raw[n:]

		switch {
		case num == sensorFieldTimestamp && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return nil, fmt.Errorf("malformed timestamp: %w", protowire.ParseError(n))
			}
			msg.Timestamp = int64(v)
			raw = raw[n:]
		case num == sensorFieldDatum && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(raw)
			if n < 0 {
				return nil, fmt.Errorf("malformed datum: %w", protowire.ParseError(n))
			}
			msg.Datum = math.Float64frombits(v)
			raw = raw[n:]
		case num == sensorFieldDomain && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return nil, fmt.Errorf("malformed domain: %w", protowire.ParseError(n))
			}
			msg.Domain = Domain(int32(v))
			raw = raw[n:]
		case num == sensorFieldDeviceID && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(raw)
			if n < 0 {
				return nil, fmt.Errorf("malformed device_id: %w", protowire.ParseError(n))
			}
			msg.DeviceID = append([]byte(nil), v...)
			raw = raw[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, raw)
			if n < 0 {
				return nil, fmt.Errorf("malformed field %d: %w", num, protowire.ParseError(n))
			}
			raw = raw[n:]
		}
	}
	return &msg, nil
}

// Encode serializes the reading to the binary SensorData wire schema.
func (s *SensorData) Encode() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, sensorFieldTimestamp, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(s.Timestamp))
	buf = protowire.AppendTag(buf, sensorFieldDatum, protowire.Fixed64Type)
	buf = protowire.AppendFixed64(buf, math.Float64bits(s.Datum))
	buf = protowire.AppendTag(buf, sensorFieldDomain, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(uint32(s.Domain)))
	buf = protowire.AppendTag(buf, sensorFieldDeviceID, protowire.BytesType)
	buf = protowire.AppendBytes(buf, s.DeviceID)
	return buf
}

// DeviceIDString interprets the device identifier bytes as text. Readings
// with non-text identifiers are rejected.
func (s *SensorData) DeviceIDString() (string, error) {
	if !utf8.Valid(s.DeviceID) {
		return "", fmt.Errorf("device_id is not valid UTF-8")
	}
	return string(s.DeviceID), nil
}
