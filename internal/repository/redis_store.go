package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/artistry-cart/internal/port"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore keeps snapshots as plain string values under prefix+key.
// Values never expire.
func NewRedisStore(client redis.UniversalClient, prefix string) port.SnapshotStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, port.ErrNotFound
		}
		return nil, fmt.Errorf("client.Get: %w", err)
	}

	return value, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}
