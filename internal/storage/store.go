// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/praneeth1335/backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist (or is no
// longer active, for lookups scoped to active records).
var ErrNotFound = errors.New("record not found")

// UserStore persists user accounts and their derived aggregate fields.
type UserStore interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) if no
	// such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns (nil, nil) if no such
	// user exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// UpdateUser updates name, avatar and verification state.
	UpdateUser(ctx context.Context, user *models.User) error

	// SetUserPassword replaces the stored password hash.
	SetUserPassword(ctx context.Context, userID, passwordHash string) error

	// SetUserAggregates writes the three derived aggregate fields.
	SetUserAggregates(ctx context.Context, userID string, totalOwedToYou, totalYouOwe, netBalance float64) error
}

// FriendStore persists friend relationships and their cached balances.
type FriendStore interface {
	// CreateFriend persists a new friend.
	CreateFriend(ctx context.Context, friend *models.Friend) error

	// GetFriend retrieves an active friend owned by userID.
	GetFriend(ctx context.Context, userID, friendID string) (*models.Friend, error)

	// GetFriendByEmail retrieves an active friend of userID by email.
	// Returns (nil, nil) if none exists.
	GetFriendByEmail(ctx context.Context, userID, email string) (*models.Friend, error)

	// ListFriends returns all active friends of userID, newest first.
	ListFriends(ctx context.Context, userID string) ([]*models.Friend, error)

	// UpdateFriend updates name, avatar and notes.
	UpdateFriend(ctx context.Context, friend *models.Friend) error

	// SetFriendBalance writes the cached balance.
	SetFriendBalance(ctx context.Context, friendID string, balance float64) error

	// DeleteFriend permanently removes the friend row.
	DeleteFriend(ctx context.Context, friendID string) error
}

// TransactionStore persists transactions.
type TransactionStore interface {
	// CreateTransaction persists a new transaction.
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error

	// GetTransaction retrieves an active transaction owned by userID.
	GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error)

	// ListTransactionsForFriend returns the pair's active transactions
	// ordered by creation time ascending (the ledger fold input).
	ListTransactionsForFriend(ctx context.Context, userID, friendID string) ([]*models.Transaction, error)

	// HistoryForFriend returns a page of the pair's active transactions,
	// newest first, along with the total active count.
	HistoryForFriend(ctx context.Context, userID, friendID string, page, limit int) ([]*models.Transaction, int, error)

	// ListTransactions returns a page of all the user's active
	// transactions, newest first, along with the total active count.
	ListTransactions(ctx context.Context, userID string, page, limit int) ([]*models.Transaction, int, error)

	// SetTransactionBalanceAfter stamps the post-transaction balance
	// snapshot.
	SetTransactionBalanceAfter(ctx context.Context, transactionID string, balanceAfter float64) error

	// DeactivateTransaction soft-deletes a transaction. The transition is
	// one-way and terminal.
	DeactivateTransaction(ctx context.Context, transactionID string) error

	// PurgeTransactionsForFriend permanently removes all of a friend's
	// transactions, active or not. Only the friend-deletion cascade calls
	// this.
	PurgeTransactionsForFriend(ctx context.Context, friendID string) error

	// TransactionStats summarizes the user's active transactions by kind.
	TransactionStats(ctx context.Context, userID string) (*models.TransactionStats, error)
}

// Store is the full persistence surface. The abstraction allows swapping
// backends (SQLite, Postgres, in-memory) without changing the service layer.
type Store interface {
	UserStore
	FriendStore
	TransactionStore

	// Close releases any resources held by the store.
	Close() error
}
