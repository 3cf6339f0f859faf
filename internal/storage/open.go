package storage

import (
	"context"
	"database/sql"
	"fmt"

	"foodflow/internal/config"
)

// Open returns the KV backend selected by cfg.StorageBackend. db is only
// used by the sqlite backend and may be nil otherwise.
func Open(ctx context.Context, cfg *config.Config, db *sql.DB) (KV, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		if db == nil {
			return nil, fmt.Errorf("sqlite backend needs a database connection")
		}
		return NewSQLiteStore(db), nil
	case config.BackendRedis:
		rs, err := NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case config.BackendFile:
		fs, err := NewFileStore(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
