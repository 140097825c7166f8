package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/praneeth1335/backend/internal/metrics"
	"github.com/praneeth1335/backend/internal/models"
)

// TransactionSource provides the ordered active transaction history for one
// (user, friend) pair.
type TransactionSource interface {
	// ListTransactionsForFriend returns the pair's active transactions
	// ordered by creation time ascending.
	ListTransactionsForFriend(ctx context.Context, userID, friendID string) ([]*models.Transaction, error)
}

// BalanceSink persists a recomputed friend balance.
type BalanceSink interface {
	SetFriendBalance(ctx context.Context, friendID string, balance float64) error
}

// FriendSource provides a user's active friends.
type FriendSource interface {
	ListFriends(ctx context.Context, userID string) ([]*models.Friend, error)
}

// AggregateSink persists a user's recomputed aggregate figures.
type AggregateSink interface {
	SetUserAggregates(ctx context.Context, userID string, totalOwedToYou, totalYouOwe, netBalance float64) error
}

// Calculator derives and persists the authoritative balance for one
// (user, friend) pair. Stores are injected explicitly; the calculator holds
// no ambient state.
type Calculator struct {
	transactions TransactionSource
	friends      BalanceSink
}

// NewCalculator creates a Calculator backed by the given stores.
func NewCalculator(transactions TransactionSource, friends BalanceSink) *Calculator {
	return &Calculator{transactions: transactions, friends: friends}
}

// Recompute re-folds the friend's active transaction history, persists the
// result, and updates friend.Balance in place.
//
// Fail-safe: on any error the cached balance is reset to 0 (and persisted)
// rather than left stale; the error is still returned to the caller.
func (c *Calculator) Recompute(ctx context.Context, friend *models.Friend) (float64, error) {
	transactions, err := c.transactions.ListTransactionsForFriend(ctx, friend.UserID, friend.ID)
	if err != nil {
		return c.resetOnError(ctx, friend, fmt.Errorf("loading transactions for friend %s: %w", friend.ID, err))
	}

	balance := Fold(transactions)
	if err := c.friends.SetFriendBalance(ctx, friend.ID, balance); err != nil {
		return c.resetOnError(ctx, friend, fmt.Errorf("persisting balance %.2f for friend %s: %w", balance, friend.ID, err))
	}

	friend.Balance = balance
	metrics.BalanceRecomputations.WithLabelValues("ok").Inc()
	return balance, nil
}

// resetOnError zeroes the cached balance so a failed recomputation never
// leaves a stale nonzero value behind. The original error is surfaced; a
// failure of the reset write itself is joined onto it.
func (c *Calculator) resetOnError(ctx context.Context, friend *models.Friend, err error) (float64, error) {
	slog.Error("balance recomputation failed, resetting to zero", "friend_id", friend.ID, "error", err)
	friend.Balance = 0
	if werr := c.friends.SetFriendBalance(ctx, friend.ID, 0); werr != nil {
		err = errors.Join(err, fmt.Errorf("resetting balance for friend %s: %w", friend.ID, werr))
	}
	metrics.BalanceRecomputations.WithLabelValues("error").Inc()
	return 0, err
}

// Updater rolls all of a user's friend balances up into the three aggregate
// figures stored on the user record.
type Updater struct {
	friends    FriendSource
	users      AggregateSink
	calculator *Calculator
}

// NewUpdater creates an Updater backed by the given stores and calculator.
func NewUpdater(friends FriendSource, users AggregateSink, calculator *Calculator) *Updater {
	return &Updater{friends: friends, users: users, calculator: calculator}
}

// RecomputeUser recomputes every active friend's balance via the Calculator
// (cached values are never trusted), sums the results, and persists the
// three aggregate fields, updating user in place.
//
// A user with no active friends gets all three fields explicitly set to 0.
// Fail-safe: on any error all three fields are reset to 0 and the error is
// returned.
func (u *Updater) RecomputeUser(ctx context.Context, user *models.User) error {
	friends, err := u.friends.ListFriends(ctx, user.ID)
	if err != nil {
		return u.resetOnError(ctx, user, fmt.Errorf("loading friends for user %s: %w", user.ID, err))
	}

	var totalOwedToYou, totalYouOwe float64
	for _, friend := range friends {
		balance, err := u.calculator.Recompute(ctx, friend)
		if err != nil {
			return u.resetOnError(ctx, user, fmt.Errorf("recomputing friend %s: %w", friend.ID, err))
		}
		if balance > 0 {
			totalOwedToYou += balance
		} else if balance < 0 {
			totalYouOwe += -balance
		}
	}

	// Each figure is rounded independently.
	owed := Round2(totalOwedToYou)
	owes := Round2(totalYouOwe)
	net := Round2(totalOwedToYou - totalYouOwe)

	if err := u.users.SetUserAggregates(ctx, user.ID, owed, owes, net); err != nil {
		return u.resetOnError(ctx, user, fmt.Errorf("persisting aggregates for user %s: %w", user.ID, err))
	}

	user.TotalOwedToYou = owed
	user.TotalYouOwe = owes
	user.NetBalance = net
	metrics.AggregateRecomputations.WithLabelValues("ok").Inc()
	return nil
}

func (u *Updater) resetOnError(ctx context.Context, user *models.User, err error) error {
	slog.Error("aggregate recomputation failed, resetting to zero", "user_id", user.ID, "error", err)
	user.TotalOwedToYou = 0
	user.TotalYouOwe = 0
	user.NetBalance = 0
	if werr := u.users.SetUserAggregates(ctx, user.ID, 0, 0, 0); werr != nil {
		err = errors.Join(err, fmt.Errorf("resetting aggregates for user %s: %w", user.ID, werr))
	}
	metrics.AggregateRecomputations.WithLabelValues("error").Inc()
	return err
}
