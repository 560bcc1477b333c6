package testutils

import (
	"time"

	"github.com/cesizen/cesizen/config"
	"golang.org/x/crypto/bcrypt"
)

// TestCipherKey is a fixed 32-byte key, hex-encoded.
const TestCipherKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "CESIZen Test",
			URL:  "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			BcryptCost: bcrypt.MinCost,
		},
		JWT: config.JWTConfig{
			SecretKey:     "test-secret-key-32-chars-long!!",
			Issuer:        "cesizen-test",
			AccessExpiry:  config.Duration(15 * time.Minute),
			RefreshExpiry: config.Duration(7 * 24 * time.Hour),
		},
		Cipher: config.CipherConfig{
			KeyHex:   TestCipherKey,
			IVLength: 16,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
		RateLimit: config.RateLimitConfig{
			Enabled: true,
			Rate:    10,
			Period:  config.Duration(time.Minute),
			Store:   "memory",
		},
	}
}
