package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCipherKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"APP_NAME", "APP_URL",
		"SERVER_PORT", "SERVER_HOST",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT",
		"DATABASE_DRIVER", "DATABASE_DSN", "DATABASE_AUTO_MIGRATE",
		"AUTH_BCRYPT_COST",
		"JWT_SECRET_KEY", "JWT_ISSUER", "JWT_ACCESS_EXPIRY", "JWT_REFRESH_EXPIRY",
		"CIPHER_KEY", "CIPHER_IV_LENGTH",
		"RATELIMIT_ENABLED", "RATELIMIT_RATE", "RATELIMIT_PERIOD", "RATELIMIT_STORE",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("JWT_SECRET_KEY", "test-secret-key-32-chars-long!!")
	os.Setenv("CIPHER_KEY", testCipherKey)
	defer os.Unsetenv("JWT_SECRET_KEY")
	defer os.Unsetenv("CIPHER_KEY")

	var cfg Config
	err := LoadConfig(&cfg)

	require.NoError(t, err)

	assert.Equal(t, "CESIZen", cfg.App.Name)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry.Std())
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry.Std())
	assert.Equal(t, 16, cfg.Cipher.IVLength)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadConfig_EnvironmentVariables(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("JWT_SECRET_KEY", "test-secret-key-32-chars-long!!")
	os.Setenv("CIPHER_KEY", testCipherKey)
	os.Setenv("JWT_ACCESS_EXPIRY", "30m")
	os.Setenv("JWT_REFRESH_EXPIRY", "14d")
	os.Setenv("DATABASE_DRIVER", "postgres")
	defer clearEnvVars(t)

	var cfg Config
	err := LoadConfig(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry.Std())
	assert.Equal(t, 14*24*time.Hour, cfg.JWT.RefreshExpiry.Std())
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	cfg := &Config{
		Cipher: CipherConfig{KeyHex: testCipherKey, IVLength: 16},
		JWT:    JWTConfig{RefreshExpiry: Duration(7 * 24 * time.Hour)},
	}

	err := cfg.Validate()

	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestValidate_CipherKey(t *testing.T) {
	t.Run("not hex", func(t *testing.T) {
		cfg := &Config{
			JWT:    JWTConfig{SecretKey: "secret", RefreshExpiry: Duration(time.Hour)},
			Cipher: CipherConfig{KeyHex: "not-hex-at-all", IVLength: 16},
		}
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidCipherKey)
	})

	t.Run("wrong length", func(t *testing.T) {
		cfg := &Config{
			JWT:    JWTConfig{SecretKey: "secret", RefreshExpiry: Duration(time.Hour)},
			Cipher: CipherConfig{KeyHex: "00010203", IVLength: 16},
		}
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidCipherKey)
	})

	t.Run("bad IV length", func(t *testing.T) {
		cfg := &Config{
			JWT:    JWTConfig{SecretKey: "secret", RefreshExpiry: Duration(time.Hour)},
			Cipher: CipherConfig{KeyHex: testCipherKey, IVLength: 12},
		}
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidIVLength)
	})
}

func TestParseDuration(t *testing.T) {
	t.Run("day suffix", func(t *testing.T) {
		d, err := ParseDuration("7d")
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, d)
	})

	t.Run("standard forms", func(t *testing.T) {
		d, err := ParseDuration("15m")
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, d)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseDuration("sevend")
		assert.Error(t, err)
	})
}
