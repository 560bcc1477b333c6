package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cesizen/cesizen/config"
	"github.com/cesizen/cesizen/services/cipher"
	"github.com/cesizen/cesizen/services/logging"
	"github.com/cesizen/cesizen/services/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrMissingSecret        = errors.New("JWT secret key not configured")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

type Service struct {
	db     *gorm.DB
	config *config.Config
	cipher *cipher.Service
	users  *user.Service
	logger *logging.Service
}

func NewService(db *gorm.DB, cfg *config.Config, cipherSvc *cipher.Service, users *user.Service, logger *logging.Service) *Service {
	if logger != nil {
		logger.Info("initializing token service",
			zap.Duration("access_expiry", cfg.JWT.AccessExpiry.Std()),
			zap.Duration("refresh_expiry", cfg.JWT.RefreshExpiry.Std()))
	}

	return &Service{
		db:     db,
		config: cfg,
		cipher: cipherSvc,
		users:  users,
		logger: logger,
	}
}

// IssueAccessToken mints a short-lived stateless bearer token. Access
// tokens are never persisted; validity is signature plus embedded expiry.
func (s *Service) IssueAccessToken(userID uint, role user.Role) (string, error) {
	return s.sign(userID, role, s.config.JWT.AccessExpiry.Std())
}

// IssueRefreshToken mints a long-lived signed token and persists its
// record with the device context encrypted at rest. A store write
// failure fails the issuance: a refresh token that is not on record must
// never reach a client.
func (s *Service) IssueRefreshToken(userID uint, role user.Role, device DeviceContext) (string, error) {
	tokenString, err := s.sign(userID, role, s.config.JWT.RefreshExpiry.Std())
	if err != nil {
		return "", err
	}

	encryptedUA, err := s.cipher.Encrypt(device.UserAgent)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt user agent: %w", err)
	}
	encryptedIP, err := s.cipher.Encrypt(device.IPAddress)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt IP address: %w", err)
	}

	record := RefreshToken{
		Token:      tokenString,
		UserID:     userID,
		UserAgent:  encryptedUA,
		IPAddress:  encryptedIP,
		DeviceInfo: deviceLabel(device.UserAgent),
		Revoked:    false,
		ExpiresAt:  time.Now().Add(s.config.JWT.RefreshExpiry.Std()),
	}

	if err := s.db.Create(&record).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to store refresh token", zap.Error(err))
		}
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("refresh token issued",
			zap.Uint("user_id", userID),
			zap.Uint("token_id", record.ID),
			zap.Time("expires_at", record.ExpiresAt))
	}

	return tokenString, nil
}

// IssuePair mints an access/refresh pair for a login or registration.
func (s *Service) IssuePair(u *user.User, device DeviceContext) (*TokenPair, error) {
	accessToken, err := s.IssueAccessToken(u.ID, u.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.IssueRefreshToken(u.ID, u.Role, device)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Renew exchanges a presented refresh token for a new access token. The
// checks run in strict order and the first failure wins. Routine
// failures (absence, prior revocation, expiry) reject without side
// effects since the token is already unusable; every later failure is
// treated as a compromise signal and revokes the stored record before
// rejecting.
//
// On success the presented refresh token is echoed back unchanged: there
// is no rotation, so it stays valid until its original expiry. This is a
// deliberate trade-off keeping client token storage simple; see
// DESIGN.md for the concurrency consequence.
func (s *Service) Renew(presentedToken string, claimedUserID uint, requestUserAgent string) (*TokenPair, error) {
	var record RefreshToken
	err := s.db.Where("token = ?", presentedToken).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logger != nil {
				s.logger.Warn("renewal rejected: token not on record")
			}
			return nil, &RenewalError{Reason: ReasonInvalidToken}
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if record.Revoked {
		if s.logger != nil {
			s.logger.Warn("renewal rejected: token already revoked",
				zap.Uint("token_id", record.ID),
				zap.Uint("user_id", record.UserID))
		}
		return nil, &RenewalError{Reason: ReasonRevokedToken}
	}

	if !time.Now().Before(record.ExpiresAt) {
		if s.logger != nil {
			s.logger.Warn("renewal rejected: token expired",
				zap.Uint("token_id", record.ID),
				zap.Time("expired_at", record.ExpiresAt))
		}
		return nil, &RenewalError{Reason: ReasonExpiredToken}
	}

	storedUserAgent, err := s.cipher.Decrypt(record.UserAgent)
	if err != nil || storedUserAgent != requestUserAgent {
		// Security audit event, not a routine rejection: the token is
		// being replayed from a device it was not issued to, or the
		// stored fingerprint has been tampered with.
		if s.logger != nil {
			s.logger.Warn("renewal rejected: device binding failure, revoking token",
				zap.Uint("token_id", record.ID),
				zap.Uint("user_id", record.UserID),
				zap.Bool("fingerprint_unreadable", err != nil))
		}
		if err := s.RevokeAndPersist(&record); err != nil {
			return nil, err
		}
		return nil, &RenewalError{Reason: ReasonSecurityValidationFailure}
	}

	claims, err := s.ParseToken(presentedToken)
	if err != nil {
		reason := ReasonInvalidToken
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = ReasonExpiredToken
		}
		if s.logger != nil {
			s.logger.Warn("renewal rejected: signature verification failed, revoking token",
				zap.Uint("token_id", record.ID),
				zap.Error(err))
		}
		if err := s.RevokeAndPersist(&record); err != nil {
			return nil, err
		}
		return nil, &RenewalError{Reason: reason}
	}

	owner, err := s.users.FindByID(claims.UserID)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		if s.logger != nil {
			s.logger.Warn("renewal rejected: token owner no longer exists, revoking token",
				zap.Uint("token_id", record.ID),
				zap.Uint("claimed_user_id", claims.UserID))
		}
		if err := s.RevokeAndPersist(&record); err != nil {
			return nil, err
		}
		return nil, &RenewalError{Reason: ReasonMismatch}
	}

	if claims.UserID != claimedUserID {
		if s.logger != nil {
			s.logger.Warn("renewal rejected: identity mismatch, revoking token",
				zap.Uint("token_id", record.ID),
				zap.Uint("token_user_id", claims.UserID),
				zap.Uint("claimed_user_id", claimedUserID))
		}
		if err := s.RevokeAndPersist(&record); err != nil {
			return nil, err
		}
		return nil, &RenewalError{Reason: ReasonMismatch}
	}

	if !owner.Active {
		if s.logger != nil {
			s.logger.Warn("renewal rejected: account deactivated, revoking token",
				zap.Uint("token_id", record.ID),
				zap.Uint("user_id", owner.ID))
		}
		if err := s.RevokeAndPersist(&record); err != nil {
			return nil, err
		}
		return nil, &RenewalError{Reason: ReasonNoConditionsMet}
	}

	accessToken, err := s.IssueAccessToken(claims.UserID, claims.Role)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("access token renewed",
			zap.Uint("user_id", claims.UserID),
			zap.Uint("token_id", record.ID))
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: presentedToken}, nil
}

// Revoke flips the record's revoked flag in memory. Revoking an already
// revoked record is a no-op; the flag never transitions back to false.
func (s *Service) Revoke(record *RefreshToken) {
	if record.Revoked {
		return
	}
	record.Revoked = true
}

// RevokeAndPersist revokes the record and writes the mutation through.
func (s *Service) RevokeAndPersist(record *RefreshToken) error {
	s.Revoke(record)

	err := s.db.Model(&RefreshToken{}).
		Where("id = ?", record.ID).
		Update("revoked", true).Error
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to persist token revocation",
				zap.Uint("token_id", record.ID),
				zap.Error(err))
		}
		return fmt.Errorf("failed to persist token revocation: %w", err)
	}

	return nil
}

// FindByToken looks up the stored record for a refresh token string.
func (s *Service) FindByToken(tokenString string) (*RefreshToken, error) {
	var record RefreshToken
	err := s.db.Where("token = ?", tokenString).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &record, nil
}

// DeleteByToken removes a refresh-token record on logout.
func (s *Service) DeleteByToken(tokenString string) error {
	result := s.db.Where("token = ?", tokenString).Delete(&RefreshToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete refresh token: %w", result.Error)
	}

	if s.logger != nil {
		s.logger.Info("refresh token deleted",
			zap.Int64("affected_rows", result.RowsAffected))
	}
	return nil
}

// ActiveSessions lists the live refresh-token records for a user with
// device metadata decrypted for display. Unreadable fields degrade to
// placeholders instead of failing the listing.
func (s *Service) ActiveSessions(userID uint) ([]SessionInfo, error) {
	var records []RefreshToken
	err := s.db.Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, time.Now()).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	sessions := make([]SessionInfo, len(records))
	for i, record := range records {
		sessions[i] = SessionInfo{
			ID:         record.ID,
			UserAgent:  s.cipher.DecryptFieldOr("userAgent", record.UserAgent),
			IPAddress:  s.cipher.DecryptFieldOr("ipAddress", record.IPAddress),
			DeviceInfo: record.DeviceInfo,
			CreatedAt:  record.CreatedAt,
			ExpiresAt:  record.ExpiresAt,
		}
	}
	return sessions, nil
}

// CleanupExpired garbage-collects records past their expiry.
func (s *Service) CleanupExpired() error {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&RefreshToken{})
	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to cleanup expired refresh tokens", zap.Error(result.Error))
		}
		return fmt.Errorf("failed to cleanup expired tokens: %w", result.Error)
	}

	if s.logger != nil && result.RowsAffected > 0 {
		s.logger.Info("cleaned up expired refresh tokens",
			zap.Int64("count", result.RowsAffected))
	}
	return nil
}

func (s *Service) StartCleanupWorker() {
	go func() {
		ticker := time.NewTicker(s.config.JWT.CleanupInterval.Std())
		defer ticker.Stop()

		for range ticker.C {
			if err := s.CleanupExpired(); err != nil && s.logger != nil {
				s.logger.Error("refresh token cleanup worker failed", zap.Error(err))
			}
		}
	}()

	if s.logger != nil {
		s.logger.Info("started refresh token cleanup worker",
			zap.Duration("interval", s.config.JWT.CleanupInterval.Std()))
	}
}

// ParseToken verifies the signature and structure of a signed token and
// returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	if s.config.JWT.SecretKey == "" {
		return nil, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *Service) sign(userID uint, role user.Role, expiry time.Duration) (string, error) {
	if s.config.JWT.SecretKey == "" {
		return "", ErrMissingSecret
	}

	now := time.Now()
	jti := uuid.New().String()
	claims := Claims{
		UserID: userID,
		Role:   role,
		JTI:    jti,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.config.JWT.Issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.config.JWT.SecretKey))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to sign token", zap.Error(err))
		}
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func deviceLabel(rawUserAgent string) string {
	if rawUserAgent == "" || rawUserAgent == "unknown" {
		return "Unknown device"
	}

	ua := useragent.Parse(rawUserAgent)
	switch {
	case ua.Name != "" && ua.OS != "":
		return ua.Name + " on " + ua.OS
	case ua.Name != "":
		return ua.Name
	default:
		return "Unknown device"
	}
}
