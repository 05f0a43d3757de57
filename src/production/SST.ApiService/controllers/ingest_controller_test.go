package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/middleware"
	config "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Config"
	sstmodels "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Models"
	interfaces "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Interfaces"
)

const testIngestKey = "sk-sigstash-ingest-test"

func ingestRequest(body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(body))
	req.Header.Set("Content-Type", IngestContentType)
	req.Header.Set(middleware.AuthHeader, middleware.AuthScheme+" "+testIngestKey)
	return req
}

func storeWithIngestKey(t *testing.T) *memKeyStore {
	t.Helper()
	store := newMemKeyStore()
	if err := store.Insert(context.Background(), interfaces.ScopeOrdinary, testIngestKey, "tester"); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func sampleReading() *sstmodels.SensorData {
	return &sstmodels.SensorData{
		Timestamp: 1723839123,
		Datum:     42.5,
		Domain:    sstmodels.DomainSoundPressureLevel,
		DeviceID:  []byte("testdevice"),
	}
}

func TestIngestValidPayload(t *testing.T) {
	store := storeWithIngestKey(t)
	writer := &captureWriter{}
	router, ingest := newTestAPI(store, writer, config.IngestConfig{SensorDatumPrefix: "signalstash"})

	arrival := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	ingest.now = func() time.Time { return arrival }

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, ingestRequest(sampleReading().Encode()))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body %q)", rec.Code, rec.Body.String())
	}

	samples := writer.appended()
	if len(samples) != 1 {
		t.Fatalf("appended %d samples, want exactly 1", len(samples))
	}
	got := samples[0]
	if got.DeviceID != "testdevice" {
		t.Errorf("device id = %q", got.DeviceID)
	}
	if got.DomainLabel != "sound_pressure_level" {
		t.Errorf("domain label = %q", got.DomainLabel)
	}
	if got.Value != 42.5 {
		t.Errorf("value = %v", got.Value)
	}
	// Server time of arrival, not the payload timestamp.
	if !got.Timestamp.Equal(arrival) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, arrival)
	}
}

func TestIngestPayloadTimestampOptIn(t *testing.T) {
	store := storeWithIngestKey(t)
	writer := &captureWriter{}
	router, ingest := newTestAPI(store, writer, config.IngestConfig{
		SensorDatumPrefix:   "signalstash",
		UsePayloadTimestamp: true,
	})
	ingest.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, ingestRequest(sampleReading().Encode()))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	samples := writer.appended()
	if len(samples) != 1 {
		t.Fatalf("appended %d samples", len(samples))
	}
	if want := time.Unix(1723839123, 0); !samples[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want payload time %v", samples[0].Timestamp, want)
	}
}

func TestIngestUnknownDomainStillSucceeds(t *testing.T) {
	store := storeWithIngestKey(t)
	writer := &captureWriter{}
	router, _ := newTestAPI(store, writer, config.IngestConfig{SensorDatumPrefix: "signalstash"})

	reading := sampleReading()
	reading.Domain = sstmodels.Domain(99)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, ingestRequest(reading.Encode()))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	samples := writer.appended()
	if len(samples) != 1 {
		t.Fatalf("appended %d samples", len(samples))
	}
	if samples[0].DomainLabel != "unknown" {
		t.Errorf("domain label = %q, want unknown", samples[0].DomainLabel)
	}
}

func TestIngestMalformedPayload(t *testing.T) {
	store := storeWithIngestKey(t)
	writer := &captureWriter{}
	router, _ := newTestAPI(store, writer, config.IngestConfig{SensorDatumPrefix: "signalstash"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, ingestRequest([]byte{0x08, 0xff}))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "correlation_id") {
		t.Errorf("body %q missing correlation id", rec.Body.String())
	}
	if len(writer.appended()) != 0 {
		t.Error("malformed payload must not reach the store")
	}
}

func TestIngestInvalidDeviceID(t *testing.T) {
	store := storeWithIngestKey(t)
	writer := &captureWriter{}
	router, _ := newTestAPI(store, writer, config.IngestConfig{SensorDatumPrefix: "signalstash"})

	reading := sampleReading()
	reading.DeviceID = []byte{0xff, 0xfe, 0xfd}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, ingestRequest(reading.Encode()))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if len(writer.appended()) != 0 {
		t.Error("invalid device_id must not reach the store")
	}
}

func TestIngestWrongContentType(t *testing.T) {
	store := storeWithIngestKey(t)
	writer := &captureWriter{}
	router, _ := newTestAPI(store, writer, config.IngestConfig{SensorDatumPrefix: "signalstash"})

	req := ingestRequest(sampleReading().Encode())
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if len(writer.appended()) != 0 {
		t.Error("wrong content type must not reach the store")
	}
}

func TestIngestWithoutAuth(t *testing.T) {
	store := storeWithIngestKey(t)
	writer := &captureWriter{}
	router, _ := newTestAPI(store, writer, config.IngestConfig{SensorDatumPrefix: "signalstash"})

	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(sampleReading().Encode()))
	req.Header.Set("Content-Type", IngestContentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(writer.appended()) != 0 {
		t.Error("unauthenticated requests must not reach the store")
	}
}

func TestIngestStoreFailure(t *testing.T) {
	store := storeWithIngestKey(t)
	writer := &captureWriter{err: errors.New("ts.add failed")}
	router, _ := newTestAPI(store, writer, config.IngestConfig{SensorDatumPrefix: "signalstash"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, ingestRequest(sampleReading().Encode()))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "ts.add failed") {
		t.Error("store error text must not leak to the client")
	}
}
