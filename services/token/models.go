package token

import (
	"time"

	"github.com/cesizen/cesizen/services/user"
	"github.com/golang-jwt/jwt/v5"
)

// RefreshToken is the persisted record backing a long-lived refresh
// token. UserAgent and IPAddress hold ciphertext from the field cipher;
// DeviceInfo is a derived human-readable label for session listings.
//
// Revoked only ever transitions false -> true. A record past ExpiresAt is
// dead regardless of Revoked.
type RefreshToken struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Token      string    `json:"-" gorm:"uniqueIndex;size:1000;not null"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	UserAgent  string    `json:"-" gorm:"size:2000"`
	IPAddress  string    `json:"-" gorm:"size:500"`
	DeviceInfo string    `json:"device_info" gorm:"size:255"`
	Revoked    bool      `json:"revoked" gorm:"not null;default:false"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Claims is the signed token payload. Role is a snapshot taken at mint
// time; it is only re-checked against the live user record at renewal.
type Claims struct {
	UserID uint      `json:"user_id"`
	Role   user.Role `json:"role"`
	JTI    string    `json:"jti"`
	jwt.RegisteredClaims
}

// DeviceContext is the user-agent and IP captured at refresh-token
// issuance and used for anomaly detection at renewal.
type DeviceContext struct {
	UserAgent string
	IPAddress string
}

// TokenPair is the result of a successful issuance or renewal. On
// renewal the refresh token is the one that was presented: tokens are
// not rotated.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionInfo is a decrypted view of a refresh-token record for account
// session listings.
type SessionInfo struct {
	ID         uint      `json:"id"`
	UserAgent  string    `json:"user_agent"`
	IPAddress  string    `json:"ip_address"`
	DeviceInfo string    `json:"device_info"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// RejectReason identifies why a renewal was refused. The codes are
// stable and user facing; the reasons that indicate tampering also
// revoke the presented token as a side effect.
type RejectReason string

const (
	ReasonInvalidToken              RejectReason = "invalid_token"
	ReasonRevokedToken              RejectReason = "revoked_token"
	ReasonExpiredToken              RejectReason = "expired_token"
	ReasonSecurityValidationFailure RejectReason = "security_validation_failure"
	ReasonMismatch                  RejectReason = "mismatch"
	ReasonNoConditionsMet           RejectReason = "no_conditions_met"
)

// RenewalError is a rejection outcome of the renewal protocol. It is an
// expected result value, distinct from infrastructure failures: callers
// branch on it with errors.As.
type RenewalError struct {
	Reason RejectReason
}

func (e *RenewalError) Error() string {
	return "refresh token rejected: " + string(e.Reason)
}
