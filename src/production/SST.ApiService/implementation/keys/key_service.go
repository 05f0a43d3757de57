package keys

import (
	"context"
	"errors"
	"fmt"

	sstmodels "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Models"
	interfaces "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Interfaces"
)

// ErrKeyNotFound is returned by Revoke for keys that were never issued or
// were already revoked.
var ErrKeyNotFound = errors.New("api key not found")

// Service manages the lifecycle of ordinary API keys.
type Service struct {
	store interfaces.KeyStore
}

// NewService creates a new key management service
func NewService(store interfaces.KeyStore) *Service {
	return &Service{store: store}
}

// Create issues a new ordinary API key owned by userID and persists it.
func (s *Service) Create(ctx context.Context, userID string) (sstmodels.APIKey, error) {
	key, err := Generate(KeyFormatPrefix)
	if err != nil {
		return sstmodels.APIKey{}, err
	}

	if err := s.store.Insert(ctx, interfaces.ScopeOrdinary, key, userID); err != nil {
		return sstmodels.APIKey{}, err
	}

	return sstmodels.APIKey{Key: key, UserID: userID}, nil
}

// List enumerates all issued ordinary keys with their owner labels. A set
// member without a backing record fails the listing: the pair is written
// atomically, so a missing record means the store is in a state the service
// never produces.
func (s *Service) List(ctx context.Context) ([]sstmodels.APIKey, error) {
	members, err := s.store.Members(ctx, interfaces.ScopeOrdinary)
	if err != nil {
		return nil, err
	}

	apiKeys := make([]sstmodels.APIKey, 0, len(members))
	for _, key := range members {
		owner, err := s.store.Owner(ctx, interfaces.ScopeOrdinary, key)
		if err != nil {
			return nil, fmt.Errorf("resolve owner of %s...: %w", truncateKey(key), err)
		}
		apiKeys = append(apiKeys, sstmodels.APIKey{Key: key, UserID: owner})
	}

	return apiKeys, nil
}

// Revoke deletes an ordinary key. Returns ErrKeyNotFound when the key does
// not exist, so revoking twice reports NotFound both times.
func (s *Service) Revoke(ctx context.Context, key string) error {
	exists, err := s.store.Exists(ctx, interfaces.ScopeOrdinary, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrKeyNotFound
	}
	return s.store.Remove(ctx, interfaces.ScopeOrdinary, key)
}

// truncateKey shortens a key for log/error output so full credentials never
// leave the store path.
func truncateKey(key string) string {
	if len(key) <= len(KeyFormatPrefix)+8 {
		return key
	}
	return key[:len(KeyFormatPrefix)+8]
}
