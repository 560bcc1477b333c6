package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

var (
	ErrMissingJWTSecret   = errors.New("JWT secret key is required")
	ErrInvalidCipherKey   = errors.New("cipher key must hex-decode to exactly 32 bytes")
	ErrInvalidIVLength    = errors.New("cipher IV length must be 16 bytes for AES-CBC")
	ErrInvalidRefreshTime = errors.New("refresh token expiry must be positive")
)

type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Database  DatabaseConfig  `envPrefix:"DATABASE_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Cipher    CipherConfig    `envPrefix:"CIPHER_"`
	RateLimit RateLimitConfig `envPrefix:"RATELIMIT_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"CESIZen"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"cesizen.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type AuthConfig struct {
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

type JWTConfig struct {
	SecretKey     string   `env:"SECRET_KEY"`
	Issuer        string   `env:"ISSUER" envDefault:"cesizen"`
	AccessExpiry  Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
	RefreshExpiry Duration `env:"REFRESH_EXPIRY" envDefault:"7d"`
	// CleanupInterval drives the expired refresh-token garbage collector;
	// zero disables the worker.
	CleanupInterval Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
}

type CipherConfig struct {
	// KeyHex is the hex encoding of the 256-bit field encryption key.
	KeyHex   string `env:"KEY"`
	IVLength int    `env:"IV_LENGTH" envDefault:"16"`
}

type RateLimitConfig struct {
	Enabled  bool     `env:"ENABLED" envDefault:"true"`
	Rate     int      `env:"RATE" envDefault:"10"`
	Period   Duration `env:"PERIOD" envDefault:"1m"`
	Store    string   `env:"STORE" envDefault:"memory"`
	RedisURL string   `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

// Duration is a time.Duration that additionally accepts a day suffix,
// so token lifetimes can be given as "7d" rather than "168h".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func ParseDuration(s string) (time.Duration, error) {
	if trimmed, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func LoadConfig(cfg *Config) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return cfg.Validate()
}

// Validate enforces the startup guarantees: both secrets must be present
// and well formed before the application is allowed to serve requests.
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return ErrMissingJWTSecret
	}

	key, err := hex.DecodeString(c.Cipher.KeyHex)
	if err != nil || len(key) != 32 {
		return ErrInvalidCipherKey
	}

	if c.Cipher.IVLength != 16 {
		return ErrInvalidIVLength
	}

	if c.JWT.RefreshExpiry.Std() <= 0 {
		return ErrInvalidRefreshTime
	}

	return nil
}
