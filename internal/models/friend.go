package models

import (
	"time"

	"github.com/google/uuid"
)

// Friend represents a counterparty relationship owned by exactly one user.
type Friend struct {
	// ID is the unique identifier for the friend (UUID format).
	ID string `json:"id"`

	// UserID is the owning user.
	UserID string `json:"userId"`

	// Name is the friend's display name.
	Name string `json:"name"`

	// Email is the friend's email address (lowercase). Unique per owning
	// user among active friends.
	Email string `json:"email"`

	// Avatar is a profile picture URL.
	Avatar string `json:"avatar"`

	// Notes is free-form text attached by the owning user.
	Notes string `json:"notes,omitempty"`

	// Balance is the cached signed balance for this friend.
	// Positive = friend owes the user; negative = user owes the friend.
	// It is always the deterministic fold of the friend's active
	// transactions, written only by the ledger recompute path.
	Balance float64 `json:"balance"`

	// IsActive is false once the friend is soft-deleted.
	IsActive bool `json:"isActive"`

	// CreatedAt is the Unix timestamp when the friend was added.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is the Unix timestamp of the last modification.
	UpdatedAt int64 `json:"updatedAt"`
}

// NewFriend builds a friend with generated ID, timestamps and default avatar.
func NewFriend(userID, name, email, avatar, notes string) *Friend {
	if avatar == "" {
		avatar = DefaultAvatar(email)
	}
	now := time.Now().Unix()
	return &Friend{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Email:     email,
		Avatar:    avatar,
		Notes:     notes,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
