package database

import (
	"testing"

	"github.com/cesizen/cesizen/config"
	"github.com/cesizen/cesizen/services/token"
	"github.com/cesizen/cesizen/services/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvideDatabase_Sqlite(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
	}

	db, err := ProvideDatabase(cfg, WithModels(&user.User{}, &token.RefreshToken{}))
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("refresh_tokens"))
}

func TestProvideDatabase_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "oracle", DSN: "whatever"},
	}

	_, err := ProvideDatabase(cfg, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
