package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_Error(t *testing.T) {
	cfg := Config{
		Driver:             "invalid",
		ConnectionString:   "invalid",
		MaxOpenConnections: 10,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    time.Hour,
	}

	db, err := Connect(cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "sql: unknown driver")
}

func TestConnect_SQLite(t *testing.T) {
	cfg := Config{
		Driver:             DriverSQLite,
		ConnectionString:   "file:" + filepath.Join(t.TempDir(), "vau.db"),
		MaxOpenConnections: 10,
		MaxIdleConnections: 2,
		ConnMaxLifetime:    time.Minute,
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestMigrationsDir(t *testing.T) {
	tests := []struct {
		driver   string
		expected string
	}{
		{driver: DriverPostgres, expected: "postgresql"},
		{driver: DriverMySQL, expected: "mysql"},
		{driver: DriverSQLite, expected: "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			dir, err := MigrationsDir(tt.driver)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dir)
		})
	}

	t.Run("Error_UnsupportedDriver", func(t *testing.T) {
		_, err := MigrationsDir("oracle")
		assert.Error(t, err)
	})
}
