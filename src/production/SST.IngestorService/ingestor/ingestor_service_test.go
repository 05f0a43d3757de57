package sstingestor

import (
	"testing"

	sstmodels "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Models"
)

func TestParseTopic(t *testing.T) {
	tests := []struct {
		name       string
		topic      string
		wantDevice string
		wantDomain sstmodels.Domain
		wantErr    bool
	}{
		{"sound pressure level", "sensors/mic-01/1", "mic-01", sstmodels.DomainSoundPressureLevel, false},
		{"unspecified domain", "sensors/dev42/0", "dev42", sstmodels.DomainUnspecified, false},
		{"unrecognized domain code", "sensors/dev42/99", "dev42", sstmodels.Domain(99), false},
		{"missing domain segment", "sensors/dev42", "", 0, true},
		{"wrong root", "telemetry/dev42/1", "", 0, true},
		{"empty device id", "sensors//1", "", 0, true},
		{"non-numeric domain", "sensors/dev42/loud", "", 0, true},
		{"too many segments", "sensors/dev42/1/extra", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, domain, err := ParseTopic(tt.topic)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTopic(%q) expected error, got device=%q domain=%d", tt.topic, device, domain)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTopic(%q): %v", tt.topic, err)
			}
			if device != tt.wantDevice || domain != tt.wantDomain {
				t.Errorf("ParseTopic(%q) = (%q, %d), want (%q, %d)", tt.topic, device, domain, tt.wantDevice, tt.wantDomain)
			}
		})
	}
}

func TestParseDatum(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    float64
		wantErr bool
	}{
		{"json object", `{"datum": 42.5}`, 42.5, false},
		{"json object with extras", `{"datum": -3.25, "unit": "dB"}`, -3.25, false},
		{"bare number", "17.5", 17.5, false},
		{"bare integer", "8", 8, false},
		{"number with whitespace", " 12.0\n", 12.0, false},
		{"json object without datum", `{"value": 1.0}`, 0, true},
		{"not a number", "loud", 0, true},
		{"empty payload", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDatum([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDatum(%q) expected error, got %v", tt.payload, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDatum(%q): %v", tt.payload, err)
			}
			if got != tt.want {
				t.Errorf("ParseDatum(%q) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}
