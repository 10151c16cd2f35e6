package artifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/lexdex/internal/db"
	"github.com/kailas-cloud/lexdex/internal/domain"
)

// kvStore is the consumer interface for the KV backend (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// KVBackend stores the artifact under one key of a Redis/Valkey store.
type KVBackend struct {
	store kvStore
	key   string
}

// NewKVBackend creates a KV backend. The key is namespaced with domain.KeyPrefix.
func NewKVBackend(store kvStore, key string) *KVBackend {
	return &KVBackend{store: store, key: domain.KeyPrefix + "artifact:" + key}
}

// Name returns the full key.
func (b *KVBackend) Name() string { return b.key }

// Read returns the stored bytes.
func (b *KVBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := b.store.Get(ctx, b.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%s: %w", b.key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", b.key, err)
	}
	return data, nil
}

// Write stores data under the key. SET replaces the value atomically.
func (b *KVBackend) Write(ctx context.Context, data []byte) error {
	if err := b.store.Set(ctx, b.key, data); err != nil {
		return fmt.Errorf("set %s: %w", b.key, err)
	}
	return nil
}
