// Package store provides the key/value layer backing the weather cache and
// the latest-audit-snapshot cache, implemented on Valkey.
package store

import (
	"context"
	"fmt"
	"os"
	"time"

	valkey "github.com/valkey-io/valkey-go"
)

const defaultValkeyAddr = "flightdeck-valkey:6379"

// ErrKeyNotFound is returned by GetValue when the key does not exist.
var ErrKeyNotFound = fmt.Errorf("key not found")

// KVStore defines the key/value operations the SDK needs.
type KVStore interface {
	// SetValue sets the given key to the specified value.
	SetValue(ctx context.Context, key, value string) error
	// SetValueWithTTL sets the given key with a TTL in seconds.
	SetValueWithTTL(ctx context.Context, key, value string, ttlSeconds int) error
	// GetValue retrieves the value for the given key. Returns an error
	// wrapping ErrKeyNotFound when the key does not exist.
	GetValue(ctx context.Context, key string) (string, error)
	// ListKeys retrieves all keys matching the given pattern.
	ListKeys(ctx context.Context, pattern string) ([]string, error)
	// DeleteValue removes the value associated with the given key.
	DeleteValue(ctx context.Context, key string) error
	// Close shuts down the underlying connection.
	Close() error
}

type valkeyStore struct {
	client valkey.Client
}

// NewValkeyStore creates a store connected to the address in VALKEY_ADDR,
// falling back to the compose-network default.
func NewValkeyStore() (KVStore, error) {
	addr := os.Getenv("VALKEY_ADDR")
	if addr == "" {
		addr = defaultValkeyAddr
	}
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, err
	}
	return &valkeyStore{client: client}, nil
}

// SetValue implements KVStore by executing a SET command.
func (s *valkeyStore) SetValue(ctx context.Context, key, value string) error {
	cmd := s.client.B().Set().Key(key).Value(value).Build()
	return s.client.Do(ctx, cmd).Error()
}

// SetValueWithTTL implements KVStore by executing a SET command with EX.
func (s *valkeyStore) SetValueWithTTL(ctx context.Context, key, value string, ttlSeconds int) error {
	cmd := s.client.B().Set().Key(key).Value(value).Ex(time.Duration(ttlSeconds) * time.Second).Build()
	return s.client.Do(ctx, cmd).Error()
}

// GetValue implements KVStore by executing a GET command.
func (s *valkeyStore) GetValue(ctx context.Context, key string) (string, error) {
	cmd := s.client.B().Get().Key(key).Build()
	resp := s.client.Do(ctx, cmd)

	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return "", fmt.Errorf("%w: '%s'", ErrKeyNotFound, key)
		}
		return "", fmt.Errorf("valkey GET for key '%s' failed: %w", key, err)
	}

	value, err := resp.ToString()
	if err != nil {
		return "", fmt.Errorf("failed to convert valkey reply to string for key '%s': %w", key, err)
	}
	return value, nil
}

// ListKeys implements KVStore by executing a KEYS command with pattern matching.
func (s *valkeyStore) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	cmd := s.client.B().Keys().Pattern(pattern).Build()
	resp := s.client.Do(ctx, cmd)

	if err := resp.Error(); err != nil {
		return nil, fmt.Errorf("valkey KEYS with pattern '%s' failed: %w", pattern, err)
	}

	msgs, err := resp.ToArray()
	if err != nil {
		return nil, fmt.Errorf("failed to convert valkey KEYS reply to array for pattern '%s': %w", pattern, err)
	}

	keys := make([]string, len(msgs))
	for i, msg := range msgs {
		k, err := msg.ToString()
		if err != nil {
			return nil, fmt.Errorf("failed to convert key at index %d in KEYS result for pattern '%s': %w", i, pattern, err)
		}
		keys[i] = k
	}
	return keys, nil
}

// DeleteValue implements KVStore by executing a DEL command.
func (s *valkeyStore) DeleteValue(ctx context.Context, key string) error {
	cmd := s.client.B().Del().Key(key).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Close shuts down the underlying client connection.
func (s *valkeyStore) Close() error {
	s.client.Close()
	return nil
}
