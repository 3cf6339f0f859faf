package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodflow/internal/logger"
)

func TestNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "foodflow.db")

	db, err := NewDB(dbPath, logger.Discard())
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"kv_store", "generation_metrics"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "foodflow.db")

	require.NoError(t, RunMigrations(dbPath, logger.Discard()))
	require.NoError(t, RunMigrations(dbPath, logger.Discard()))
}
