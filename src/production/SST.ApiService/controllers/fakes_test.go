package controllers

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/implementation/keys"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/middleware"
	config "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Config"
	logger "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Logger"
	interfaces "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Interfaces"
)

// memKeyStore is an in-memory KeyStore for handler tests.
type memKeyStore struct {
	mu      sync.Mutex
	records map[interfaces.Scope]map[string]string
	sets    map[interfaces.Scope]map[string]bool
	err     error
}

func newMemKeyStore() *memKeyStore {
	return &memKeyStore{
		records: map[interfaces.Scope]map[string]string{
			interfaces.ScopeOrdinary: {},
			interfaces.ScopeAdmin:    {},
		},
		sets: map[interfaces.Scope]map[string]bool{
			interfaces.ScopeOrdinary: {},
			interfaces.ScopeAdmin:    {},
		},
	}
}

func (m *memKeyStore) Exists(_ context.Context, scope interfaces.Scope, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.records[scope][key]
	return ok, nil
}

func (m *memKeyStore) Insert(_ context.Context, scope interfaces.Scope, key, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records[scope][key] = owner
	m.sets[scope][key] = true
	return nil
}

func (m *memKeyStore) Remove(_ context.Context, scope interfaces.Scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.records[scope], key)
	delete(m.sets[scope], key)
	return nil
}

func (m *memKeyStore) Owner(_ context.Context, scope interfaces.Scope, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	owner, ok := m.records[scope][key]
	if !ok {
		return "", interfaces.ErrRecordMissing
	}
	return owner, nil
}

func (m *memKeyStore) Members(_ context.Context, scope interfaces.Scope) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	members := make([]string, 0, len(m.sets[scope]))
	for key := range m.sets[scope] {
		members = append(members, key)
	}
	return members, nil
}

func (m *memKeyStore) Count(_ context.Context, scope interfaces.Scope) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.sets[scope])), nil
}

func (m *memKeyStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// captureWriter records appended samples for assertions.
type captureWriter struct {
	mu      sync.Mutex
	samples []interfaces.Sample
	err     error
}

func (w *captureWriter) Append(_ context.Context, sample interfaces.Sample) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.samples = append(w.samples, sample)
	return nil
}

func (w *captureWriter) appended() []interfaces.Sample {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]interfaces.Sample(nil), w.samples...)
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&config.LoggingConfig{Level: "disabled", Format: "json"})
}

// newTestAPI builds a router wired the way the API service main does.
func newTestAPI(store interfaces.KeyStore, writer interfaces.SampleWriter, ingestCfg config.IngestConfig) (*gin.Engine, *IngestController) {
	gin.SetMode(gin.TestMode)
	log := testLogger()
	auth := middleware.NewAuthMiddleware(store, log)
	keyService := keys.NewService(store)

	router := gin.New()
	ingest := NewIngestController(writer, ingestCfg, log, auth)
	ingest.RegisterRoutes(router)
	NewKeyController(keyService, log, auth).RegisterRoutes(router)
	NewHealthController(store, log).RegisterRoutes(router)
	return router, ingest
}
