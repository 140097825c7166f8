// Package memory provides an in-process implementation of the storage.Store
// interface. It backs the dev mode (DB_DRIVER=memory) and the service tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/praneeth1335/backend/internal/models"
	"github.com/praneeth1335/backend/internal/storage"
)

// Ensure MemoryStore implements storage.Store
var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore implements storage.Store with maps guarded by a mutex.
// Insertion order doubles as creation order so listings are deterministic
// even when timestamps collide.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]*models.User
	friends      map[string]*models.Friend
	friendOrder  []string
	transactions map[string]*models.Transaction
	txnOrder     []string
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*models.User),
		friends:      make(map[string]*models.Friend),
		transactions: make(map[string]*models.Transaction),
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// CreateUser persists a new user.
func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
		user.UpdatedAt = user.CreatedAt
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with email %s already exists", user.Email)
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

// GetUserByEmail retrieves a user by email, or (nil, nil) if absent.
func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

// GetUserByID retrieves a user by ID, or (nil, nil) if absent.
func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

// UpdateUser updates the user's mutable profile fields.
func (s *MemoryStore) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, storage.ErrNotFound)
	}
	stored.Name = user.Name
	stored.Avatar = user.Avatar
	stored.IsVerified = user.IsVerified
	stored.IsActive = user.IsActive
	stored.UpdatedAt = time.Now().Unix()
	return nil
}

// SetUserPassword replaces the stored password hash.
func (s *MemoryStore) SetUserPassword(_ context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	stored.PasswordHash = passwordHash
	stored.UpdatedAt = time.Now().Unix()
	return nil
}

// SetUserAggregates writes the three derived aggregate fields.
func (s *MemoryStore) SetUserAggregates(_ context.Context, userID string, totalOwedToYou, totalYouOwe, netBalance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	stored.TotalOwedToYou = totalOwedToYou
	stored.TotalYouOwe = totalYouOwe
	stored.NetBalance = netBalance
	stored.UpdatedAt = time.Now().Unix()
	return nil
}

// CreateFriend persists a new friend.
func (s *MemoryStore) CreateFriend(_ context.Context, friend *models.Friend) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if friend.ID == "" {
		friend.ID = uuid.New().String()
	}
	if friend.CreatedAt == 0 {
		friend.CreatedAt = time.Now().Unix()
		friend.UpdatedAt = friend.CreatedAt
	}
	clone := *friend
	s.friends[friend.ID] = &clone
	s.friendOrder = append(s.friendOrder, friend.ID)
	return nil
}

// GetFriend retrieves an active friend owned by userID.
func (s *MemoryStore) GetFriend(_ context.Context, userID, friendID string) (*models.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.friends[friendID]
	if !ok || f.UserID != userID || !f.IsActive {
		return nil, fmt.Errorf("friend %s: %w", friendID, storage.ErrNotFound)
	}
	clone := *f
	return &clone, nil
}

// GetFriendByEmail retrieves an active friend of userID by email, or
// (nil, nil) if absent.
func (s *MemoryStore) GetFriendByEmail(_ context.Context, userID, email string) (*models.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.friends {
		if f.UserID == userID && f.Email == email && f.IsActive {
			clone := *f
			return &clone, nil
		}
	}
	return nil, nil
}

// ListFriends returns all active friends of userID, newest first.
func (s *MemoryStore) ListFriends(_ context.Context, userID string) ([]*models.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var friends []*models.Friend
	for i := len(s.friendOrder) - 1; i >= 0; i-- {
		f := s.friends[s.friendOrder[i]]
		if f != nil && f.UserID == userID && f.IsActive {
			clone := *f
			friends = append(friends, &clone)
		}
	}
	return friends, nil
}

// UpdateFriend updates the friend's mutable profile fields.
func (s *MemoryStore) UpdateFriend(_ context.Context, friend *models.Friend) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.friends[friend.ID]
	if !ok {
		return fmt.Errorf("friend %s: %w", friend.ID, storage.ErrNotFound)
	}
	stored.Name = friend.Name
	stored.Avatar = friend.Avatar
	stored.Notes = friend.Notes
	stored.UpdatedAt = time.Now().Unix()
	return nil
}

// SetFriendBalance writes the cached balance.
func (s *MemoryStore) SetFriendBalance(_ context.Context, friendID string, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.friends[friendID]
	if !ok {
		return fmt.Errorf("friend %s: %w", friendID, storage.ErrNotFound)
	}
	stored.Balance = balance
	stored.UpdatedAt = time.Now().Unix()
	return nil
}

// DeleteFriend permanently removes the friend.
func (s *MemoryStore) DeleteFriend(_ context.Context, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.friends[friendID]; !ok {
		return fmt.Errorf("friend %s: %w", friendID, storage.ErrNotFound)
	}
	delete(s.friends, friendID)
	return nil
}

// CreateTransaction persists a new transaction.
func (s *MemoryStore) CreateTransaction(_ context.Context, transaction *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	if transaction.CreatedAt == 0 {
		transaction.CreatedAt = time.Now().Unix()
	}
	clone := *transaction
	s.transactions[transaction.ID] = &clone
	s.txnOrder = append(s.txnOrder, transaction.ID)
	return nil
}

// GetTransaction retrieves an active transaction owned by userID.
func (s *MemoryStore) GetTransaction(_ context.Context, userID, transactionID string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[transactionID]
	if !ok || t.UserID != userID || !t.IsActive {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	clone := *t
	return &clone, nil
}

// ListTransactionsForFriend returns the pair's active transactions in
// creation order.
func (s *MemoryStore) ListTransactionsForFriend(_ context.Context, userID, friendID string) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var transactions []*models.Transaction
	for _, id := range s.txnOrder {
		t := s.transactions[id]
		if t != nil && t.UserID == userID && t.FriendID == friendID && t.IsActive {
			clone := *t
			transactions = append(transactions, &clone)
		}
	}
	return transactions, nil
}

// HistoryForFriend returns a page of the pair's active transactions, newest
// first, with the total active count.
func (s *MemoryStore) HistoryForFriend(ctx context.Context, userID, friendID string, page, limit int) ([]*models.Transaction, int, error) {
	ascending, err := s.ListTransactionsForFriend(ctx, userID, friendID)
	if err != nil {
		return nil, 0, err
	}
	return paginateNewestFirst(ascending, page, limit)
}

// ListTransactions returns a page of all the user's active transactions,
// newest first, with the total active count.
func (s *MemoryStore) ListTransactions(_ context.Context, userID string, page, limit int) ([]*models.Transaction, int, error) {
	s.mu.RLock()
	var ascending []*models.Transaction
	for _, id := range s.txnOrder {
		t := s.transactions[id]
		if t != nil && t.UserID == userID && t.IsActive {
			clone := *t
			ascending = append(ascending, &clone)
		}
	}
	s.mu.RUnlock()
	return paginateNewestFirst(ascending, page, limit)
}

// SetTransactionBalanceAfter stamps the post-transaction balance snapshot.
func (s *MemoryStore) SetTransactionBalanceAfter(_ context.Context, transactionID string, balanceAfter float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.transactions[transactionID]
	if !ok {
		return fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	stored.BalanceAfter = balanceAfter
	return nil
}

// DeactivateTransaction soft-deletes a transaction.
func (s *MemoryStore) DeactivateTransaction(_ context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.transactions[transactionID]
	if !ok || !stored.IsActive {
		return fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	stored.IsActive = false
	return nil
}

// PurgeTransactionsForFriend permanently removes all of a friend's
// transactions.
func (s *MemoryStore) PurgeTransactionsForFriend(_ context.Context, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.txnOrder[:0]
	for _, id := range s.txnOrder {
		t := s.transactions[id]
		if t != nil && t.FriendID == friendID {
			delete(s.transactions, id)
			continue
		}
		kept = append(kept, id)
	}
	s.txnOrder = kept
	return nil
}

// TransactionStats summarizes the user's active transactions by kind.
func (s *MemoryStore) TransactionStats(_ context.Context, userID string) (*models.TransactionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.TransactionStats{}
	for _, t := range s.transactions {
		if t.UserID != userID || !t.IsActive {
			continue
		}
		switch t.Type {
		case models.TypeExpense:
			stats.Expenses.Count++
			stats.Expenses.TotalAmount += t.BillTotal
		case models.TypeSettlement:
			stats.Settlements.Count++
			stats.Settlements.TotalAmount += t.Amount
		}
	}
	return stats, nil
}

func paginateNewestFirst(ascending []*models.Transaction, page, limit int) ([]*models.Transaction, int, error) {
	total := len(ascending)
	newest := make([]*models.Transaction, 0, total)
	for i := total - 1; i >= 0; i-- {
		newest = append(newest, ascending[i])
	}
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return newest[start:end], total, nil
}
