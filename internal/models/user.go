package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address, stored lowercase and unique.
	Email string

	// Name is the display name of the user.
	Name string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Avatar is an optional URL to the user's profile picture.
	Avatar string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a user with a generated ID and current timestamps.
// The email must already be normalized to lowercase by the caller.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
