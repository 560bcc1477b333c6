package user

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cesizen/cesizen/services/cipher"
	"github.com/cesizen/cesizen/services/logging"
	"github.com/cesizen/cesizen/services/password"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidRole  = errors.New("invalid role")
)

type Service struct {
	db        *gorm.DB
	cipher    *cipher.Service
	passwords *password.Service
	logger    *logging.Service
}

func NewService(db *gorm.DB, cipherSvc *cipher.Service, passwords *password.Service, logger *logging.Service) *Service {
	return &Service{
		db:        db,
		cipher:    cipherSvc,
		passwords: passwords,
		logger:    logger,
	}
}

type CreateParams struct {
	Email     string
	Password  string
	Role      Role
	Name      string
	FirstName string
	BirthDate string
}

// Create registers a new account: the password is hashed one way, the PII
// fields are encrypted at rest.
func (s *Service) Create(params CreateParams) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	if !params.Role.Valid() {
		return nil, ErrInvalidRole
	}

	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}

	hash, err := s.passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	u := User{
		Email:        email,
		PasswordHash: hash,
		Role:         params.Role,
		Active:       true,
	}

	if u.Name, err = s.encryptField(params.Name); err != nil {
		return nil, err
	}
	if u.FirstName, err = s.encryptField(params.FirstName); err != nil {
		return nil, err
	}
	if u.BirthDate, err = s.encryptField(params.BirthDate); err != nil {
		return nil, err
	}

	if err := s.db.Create(&u).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to create user", zap.Error(err))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user created",
			zap.Uint("user_id", u.ID),
			zap.String("role", u.Role.String()))
	}

	return &u, nil
}

func (s *Service) FindByID(id uint) (*User, error) {
	var u User
	if err := s.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &u, nil
}

func (s *Service) FindByEmail(email string) (*User, error) {
	var u User
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &u, nil
}

func (s *Service) SetActive(id uint, active bool) error {
	result := s.db.Model(&User{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update account status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	if s.logger != nil {
		s.logger.Info("account status updated",
			zap.Uint("user_id", id),
			zap.Bool("active", active))
	}
	return nil
}

// DecryptPII returns a copy of the user with the encrypted fields
// replaced by their plaintext for display. A field that fails to decrypt
// is substituted with a placeholder rather than aborting the whole read.
func (s *Service) DecryptPII(u *User) *User {
	if u == nil {
		return nil
	}

	out := *u
	out.Name = s.cipher.DecryptFieldOr("name", u.Name)
	out.FirstName = s.cipher.DecryptFieldOr("firstName", u.FirstName)
	out.BirthDate = s.cipher.DecryptFieldOr("birthDate", u.BirthDate)
	return &out
}

// DecryptPIIAll applies DecryptPII to a slice, preserving order.
func (s *Service) DecryptPIIAll(users []User) []User {
	out := make([]User, len(users))
	for i := range users {
		out[i] = *s.DecryptPII(&users[i])
	}
	return out
}

func (s *Service) encryptField(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	encrypted, err := s.cipher.Encrypt(value)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt field: %w", err)
	}
	return encrypted, nil
}
