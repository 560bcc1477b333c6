package password

import (
	"errors"

	"github.com/cesizen/cesizen/services/logging"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed      = errors.New("failed to hash password")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service hashes credentials one way. There is deliberately no decrypt
// counterpart: a forgotten password can only be reset, never retrieved.
type Service struct {
	cost   int
	logger *logging.Service
}

func NewService(cost int, logger *logging.Service) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		cost:   cost,
		logger: logger,
	}
}

func (s *Service) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("password hashing failed", zap.Error(err))
		}
		return "", ErrHashingFailed
	}
	return string(hash), nil
}

func (s *Service) Verify(hashedPassword, plaintext string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plaintext)); err != nil {
		if s.logger != nil {
			s.logger.Warn("password verification failed")
		}
		return ErrInvalidCredentials
	}
	return nil
}
