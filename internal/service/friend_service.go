package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/praneeth1335/backend/internal/ledger"
	"github.com/praneeth1335/backend/internal/models"
	"github.com/praneeth1335/backend/internal/storage"
)

// FriendService manages friend relationships. List and Get always return
// freshly recomputed balances; cached values are never served as-is.
type FriendService struct {
	store      storage.Store
	calculator *ledger.Calculator
	updater    *ledger.Updater
}

// NewFriendService creates a FriendService.
func NewFriendService(store storage.Store, calculator *ledger.Calculator, updater *ledger.Updater) *FriendService {
	return &FriendService{store: store, calculator: calculator, updater: updater}
}

// List recomputes every friend balance and the user's aggregates, then
// returns the user's active friends newest first.
func (s *FriendService) List(ctx context.Context, user *models.User) ([]*models.Friend, error) {
	if err := s.updater.RecomputeUser(ctx, user); err != nil {
		return nil, err
	}
	friends, err := s.store.ListFriends(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	return friends, nil
}

// Get returns one friend with a freshly recomputed balance.
func (s *FriendService) Get(ctx context.Context, userID, friendID string) (*models.Friend, error) {
	friend, err := s.store.GetFriend(ctx, userID, friendID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrFriendNotFound
		}
		return nil, fmt.Errorf("loading friend: %w", err)
	}
	if _, err := s.calculator.Recompute(ctx, friend); err != nil {
		return nil, err
	}
	return friend, nil
}

// Add creates a friend relationship. The same email may only appear once
// among the user's active friends.
func (s *FriendService) Add(ctx context.Context, user *models.User, name, emailAddr, avatar, notes string) (*models.Friend, error) {
	name = strings.TrimSpace(name)
	emailAddr = NormalizeEmail(emailAddr)
	if name == "" {
		return nil, fmt.Errorf("%w: friend name is required", ErrValidation)
	}
	if emailAddr == "" {
		return nil, fmt.Errorf("%w: friend email is required", ErrValidation)
	}

	existing, err := s.store.GetFriendByEmail(ctx, user.ID, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("checking for duplicate friend: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateFriend
	}

	friend := models.NewFriend(user.ID, name, emailAddr, avatar, notes)
	if err := s.store.CreateFriend(ctx, friend); err != nil {
		return nil, fmt.Errorf("creating friend: %w", err)
	}

	if err := s.updater.RecomputeUser(ctx, user); err != nil {
		return nil, err
	}
	return friend, nil
}

// Update changes a friend's name, avatar or notes. Empty name and avatar
// arguments leave the current values untouched; notes are replaced as given.
func (s *FriendService) Update(ctx context.Context, userID, friendID, name, avatar, notes string) (*models.Friend, error) {
	friend, err := s.store.GetFriend(ctx, userID, friendID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrFriendNotFound
		}
		return nil, fmt.Errorf("loading friend: %w", err)
	}

	if name = strings.TrimSpace(name); name != "" {
		friend.Name = name
	}
	if avatar != "" {
		friend.Avatar = avatar
	}
	friend.Notes = notes
	friend.UpdatedAt = time.Now().Unix()

	if err := s.store.UpdateFriend(ctx, friend); err != nil {
		return nil, fmt.Errorf("updating friend: %w", err)
	}
	return friend, nil
}

// Delete removes a friend and all of their transactions. The balance is
// recomputed first and the deletion is rejected while anything is
// outstanding, so money owed can never silently disappear.
func (s *FriendService) Delete(ctx context.Context, user *models.User, friendID string) error {
	friend, err := s.store.GetFriend(ctx, user.ID, friendID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrFriendNotFound
		}
		return fmt.Errorf("loading friend: %w", err)
	}

	balance, err := s.calculator.Recompute(ctx, friend)
	if err != nil {
		return err
	}
	if !ledger.Settled(balance) {
		return &UnsettledBalanceError{Balance: balance}
	}

	if err := s.store.PurgeTransactionsForFriend(ctx, friend.ID); err != nil {
		return fmt.Errorf("purging transactions for friend %s: %w", friend.ID, err)
	}
	if err := s.store.DeleteFriend(ctx, friend.ID); err != nil {
		return fmt.Errorf("deleting friend %s: %w", friend.ID, err)
	}

	return s.updater.RecomputeUser(ctx, user)
}
