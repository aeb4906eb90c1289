package redisstore

import (
	"context"
	"fmt"
	"time"

	"nuanswers/internal/errors"
	"nuanswers/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "nuanswers:session:"

// Store keeps session state in Redis so several app instances can share it
type Store struct {
	client *redis.Client
}

var _ ports.SessionStore = (*Store)(nil)

// New wraps an existing client
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Connect parses a redis:// URL and pings the server
func Connect(ctx context.Context, url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("invalid REDIS_URL: %v", err))
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.Persistence("redis ping failed", err)
	}
	return New(client), nil
}

// Close releases the connection pool
func (s *Store) Close() error {
	return s.client.Close()
}

// Load returns the stored bytes, or nil when absent
func (s *Store) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Persistence("redis get", err)
	}
	return data, nil
}

// Save stores data with a sliding ttl
func (s *Store) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+id, data, ttl).Err(); err != nil {
		return errors.Persistence("redis set", err)
	}
	return nil
}

// Delete removes the session key
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return errors.Persistence("redis del", err)
	}
	return nil
}
