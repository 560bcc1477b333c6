package user

import (
	"time"
)

// Role is an ordinal privilege level: a lower value carries more
// privilege, so RoleAdmin outranks RoleMember.
type Role int

const (
	RoleAdmin  Role = 1
	RoleMember Role = 2
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// AtLeast reports whether r has at least the privilege of required.
func (r Role) AtLeast(required Role) bool {
	return r.Valid() && r <= required
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleMember:
		return "member"
	default:
		return "unknown"
	}
}

// User is the account record. Name, FirstName and BirthDate hold
// ciphertext produced by the field cipher; they are decrypted only for
// display via DecryptPII.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         Role      `json:"role" gorm:"not null;default:2"`
	Active       bool      `json:"active" gorm:"not null;default:true"`
	Name         string    `json:"name" gorm:"size:500"`
	FirstName    string    `json:"first_name" gorm:"size:500"`
	BirthDate    string    `json:"birth_date" gorm:"size:500"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
