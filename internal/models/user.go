package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
//
// The three aggregate balance fields are derived caches: they are recomputed
// from the user's active friends by the ledger package and must never be
// mutated independently.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Email is the user's email address (unique, lowercase).
	// Used for login and notifications.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized in API responses.
	PasswordHash string `json:"-"`

	// Avatar is a profile picture URL. Defaults to a pravatar URL derived
	// from the email.
	Avatar string `json:"avatar"`

	// TotalOwedToYou is the sum of all positive friend balances.
	TotalOwedToYou float64 `json:"totalOwedToYou"`

	// TotalYouOwe is the sum of the absolute values of all negative friend
	// balances.
	TotalYouOwe float64 `json:"totalYouOwe"`

	// NetBalance is TotalOwedToYou - TotalYouOwe.
	NetBalance float64 `json:"netBalance"`

	// IsVerified reports whether the user has confirmed their email via OTP.
	IsVerified bool `json:"isVerified"`

	// IsActive is false for deactivated accounts; deactivated accounts
	// cannot log in.
	IsActive bool `json:"isActive"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is the Unix timestamp of the last modification.
	UpdatedAt int64 `json:"updatedAt"`
}

// NewUser builds a user with generated ID, timestamps and default avatar.
func NewUser(name, email, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Avatar:       DefaultAvatar(email),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DefaultAvatar returns the placeholder avatar URL for an email address.
func DefaultAvatar(email string) string {
	return fmt.Sprintf("https://i.pravatar.cc/150?u=%s", email)
}
