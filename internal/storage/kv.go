// Package storage provides the durable key-value byte store the engine
// persists user state into.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// KV is a durable key-value byte store.
//
// Delete removes all given keys atomically: either every key is gone
// afterwards or none of them changed.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
