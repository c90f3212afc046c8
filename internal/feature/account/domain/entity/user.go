// Package entity はaccountフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// Role is an authorization label attached to a user.
// Rows are seeded at store initialization and never mutated at runtime.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`

	// RoleName is the label used in session claims (e.g. "Member", "Admin").
	RoleName string `gorm:"uniqueIndex;size:64;not null"`

	// Description is an optional human-readable description.
	Description string `gorm:"size:255"`
}

// User represents a registered account in the system.
// It contains the credentials, role reference and verification state.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Name is the display name shown in session claims.
	Name string `gorm:"size:255;not null"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the hashed password for the user.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	// RoleID is the foreign key to the user's role. Every user has exactly one.
	RoleID uint `gorm:"not null"`

	// Role is the associated role. It is loaded explicitly (Preload) at the
	// lookup points that need the role name, never lazily.
	Role Role

	// IsEmailVerified reports whether the user confirmed their email address.
	// Users are created unverified and cannot log in until verified.
	IsEmailVerified bool `gorm:"not null;default:false"`

	// CreatedAt is the timestamp when the user was created (UTC).
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated (UTC).
	UpdatedAt time.Time
}

// Seeded role names.
const (
	RoleNameMember = "Member"
	RoleNameAdmin  = "Admin"
)
