package implementation

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	interfaces "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Interfaces"
)

// RedisKeyStore stores API keys in Redis: one string record per key holding
// the owner label, plus a set per scope tracking all issued keys. Record and
// set membership are written and removed together inside a MULTI/EXEC
// pipeline so a credential is never half-persisted.
type RedisKeyStore struct {
	client *redis.Client
}

// NewRedisKeyStore creates a new Redis-backed key store
func NewRedisKeyStore(client *redis.Client) *RedisKeyStore {
	return &RedisKeyStore{client: client}
}

func (s *RedisKeyStore) Exists(ctx context.Context, scope interfaces.Scope, key string) (bool, error) {
	n, err := s.client.Exists(ctx, recordKey(scope, key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *RedisKeyStore) Insert(ctx context.Context, scope interfaces.Scope, key, owner string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey(scope, key), owner, 0)
		pipe.SAdd(ctx, memberSet(scope), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis insert: %w", err)
	}
	return nil
}

func (s *RedisKeyStore) Remove(ctx context.Context, scope interfaces.Scope, key string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, recordKey(scope, key))
		pipe.SRem(ctx, memberSet(scope), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis remove: %w", err)
	}
	return nil
}

func (s *RedisKeyStore) Owner(ctx context.Context, scope interfaces.Scope, key string) (string, error) {
	owner, err := s.client.Get(ctx, recordKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", interfaces.ErrRecordMissing
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return owner, nil
}

func (s *RedisKeyStore) Members(ctx context.Context, scope interfaces.Scope) ([]string, error) {
	members, err := s.client.SMembers(ctx, memberSet(scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return members, nil
}

func (s *RedisKeyStore) Count(ctx context.Context, scope interfaces.Scope) (int64, error) {
	n, err := s.client.SCard(ctx, memberSet(scope)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis scard: %w", err)
	}
	return n, nil
}

func (s *RedisKeyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
