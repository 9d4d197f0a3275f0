package tester

import (
	"path/filepath"
	"testing"

	"github.com/emrgen/recipe/internal/config"
	"github.com/emrgen/recipe/internal/partition"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestDB opens an empty sqlite database that lives as long as the test.
func TestDB(t testing.TB) *gorm.DB {
	t.Helper()

	cnf := &config.Config{
		Database: config.DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(t.TempDir(), "recipes.db") + "?_busy_timeout=5000",
		},
	}
	db, err := config.GetDb(cnf)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// Namer returns the default partition namer.
func Namer() partition.Namer {
	return partition.NewNamer("", "")
}

// CloseDB closes the connection pool under db so that every later call fails
// the way an unreachable database does.
func CloseDB(t testing.TB, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
