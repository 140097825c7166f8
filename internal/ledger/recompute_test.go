package ledger

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/praneeth1335/backend/internal/models"
)

// fakeStore implements the four narrow store interfaces with canned data and
// injectable failures.
type fakeStore struct {
	transactions map[string][]*models.Transaction // keyed by friend ID
	friends      []*models.Friend

	balances   map[string]float64
	aggregates map[string][3]float64

	listTxnErr    error
	setBalanceErr error
	listFriendErr error
	setAggErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		transactions: make(map[string][]*models.Transaction),
		balances:     make(map[string]float64),
		aggregates:   make(map[string][3]float64),
	}
}

func (f *fakeStore) ListTransactionsForFriend(_ context.Context, _, friendID string) ([]*models.Transaction, error) {
	if f.listTxnErr != nil {
		return nil, f.listTxnErr
	}
	return f.transactions[friendID], nil
}

func (f *fakeStore) SetFriendBalance(_ context.Context, friendID string, balance float64) error {
	if f.setBalanceErr != nil {
		return f.setBalanceErr
	}
	f.balances[friendID] = balance
	return nil
}

func (f *fakeStore) ListFriends(_ context.Context, _ string) ([]*models.Friend, error) {
	if f.listFriendErr != nil {
		return nil, f.listFriendErr
	}
	return f.friends, nil
}

func (f *fakeStore) SetUserAggregates(_ context.Context, userID string, owed, owes, net float64) error {
	if f.setAggErr != nil {
		return f.setAggErr
	}
	f.aggregates[userID] = [3]float64{owed, owes, net}
	return nil
}

func TestCalculatorRecompute(t *testing.T) {
	t.Run("persists the folded balance and updates the friend", func(t *testing.T) {
		store := newFakeStore()
		store.transactions["f1"] = []*models.Transaction{
			expense(25, 25, models.PartyUser),
			settlement(10, models.PartyFriend),
		}
		calc := NewCalculator(store, store)

		friend := &models.Friend{ID: "f1", UserID: "u1", Balance: 999}
		balance, err := calc.Recompute(context.Background(), friend)
		if err != nil {
			t.Fatalf("Recompute failed: %v", err)
		}
		if balance != 35 {
			t.Errorf("balance = %v, want 35", balance)
		}
		if friend.Balance != 35 {
			t.Errorf("friend.Balance = %v, want 35", friend.Balance)
		}
		if store.balances["f1"] != 35 {
			t.Errorf("persisted balance = %v, want 35", store.balances["f1"])
		}
	})

	t.Run("stale cached value is overwritten even with no transactions", func(t *testing.T) {
		store := newFakeStore()
		calc := NewCalculator(store, store)

		friend := &models.Friend{ID: "f1", UserID: "u1", Balance: 123.45}
		balance, err := calc.Recompute(context.Background(), friend)
		if err != nil {
			t.Fatalf("Recompute failed: %v", err)
		}
		if balance != 0 || friend.Balance != 0 {
			t.Errorf("balance = %v, friend.Balance = %v, want 0 for both", balance, friend.Balance)
		}
	})

	t.Run("load failure resets balance to zero and returns the error", func(t *testing.T) {
		store := newFakeStore()
		store.listTxnErr = errors.New("db gone")
		calc := NewCalculator(store, store)

		friend := &models.Friend{ID: "f1", UserID: "u1", Balance: 50}
		balance, err := calc.Recompute(context.Background(), friend)
		if err == nil {
			t.Fatal("expected an error")
		}
		if balance != 0 || friend.Balance != 0 {
			t.Errorf("balance = %v, friend.Balance = %v, want 0 after failure", balance, friend.Balance)
		}
		if store.balances["f1"] != 0 {
			t.Errorf("persisted balance = %v, want 0 reset", store.balances["f1"])
		}
	})

	t.Run("persist failure still surfaces the original error", func(t *testing.T) {
		store := newFakeStore()
		store.transactions["f1"] = []*models.Transaction{expense(25, 25, models.PartyUser)}
		store.setBalanceErr = errors.New("write failed")
		calc := NewCalculator(store, store)

		friend := &models.Friend{ID: "f1", UserID: "u1"}
		if _, err := calc.Recompute(context.Background(), friend); err == nil {
			t.Fatal("expected an error")
		}
		if friend.Balance != 0 {
			t.Errorf("friend.Balance = %v, want 0 after failure", friend.Balance)
		}
	})
}

func TestUpdaterRecomputeUser(t *testing.T) {
	t.Run("sums positive and negative balances independently", func(t *testing.T) {
		store := newFakeStore()
		store.friends = []*models.Friend{
			{ID: "f1", UserID: "u1"},
			{ID: "f2", UserID: "u1"},
			{ID: "f3", UserID: "u1"},
		}
		store.transactions["f1"] = []*models.Transaction{expense(25, 25, models.PartyUser)} // +25
		store.transactions["f2"] = []*models.Transaction{expense(40, 0, models.PartyFriend)} // -40
		// f3 has no transactions: contributes to neither side.

		calc := NewCalculator(store, store)
		updater := NewUpdater(store, store, calc)

		user := &models.User{ID: "u1"}
		if err := updater.RecomputeUser(context.Background(), user); err != nil {
			t.Fatalf("RecomputeUser failed: %v", err)
		}

		if user.TotalOwedToYou != 25 {
			t.Errorf("TotalOwedToYou = %v, want 25", user.TotalOwedToYou)
		}
		if user.TotalYouOwe != 40 {
			t.Errorf("TotalYouOwe = %v, want 40", user.TotalYouOwe)
		}
		if user.NetBalance != -15 {
			t.Errorf("NetBalance = %v, want -15", user.NetBalance)
		}
		got := store.aggregates["u1"]
		if got != [3]float64{25, 40, -15} {
			t.Errorf("persisted aggregates = %v, want [25 40 -15]", got)
		}
	})

	t.Run("cached friend balances are never trusted", func(t *testing.T) {
		store := newFakeStore()
		// Cache says +100 but the history folds to +25.
		store.friends = []*models.Friend{{ID: "f1", UserID: "u1", Balance: 100}}
		store.transactions["f1"] = []*models.Transaction{expense(25, 25, models.PartyUser)}

		calc := NewCalculator(store, store)
		updater := NewUpdater(store, store, calc)

		user := &models.User{ID: "u1"}
		if err := updater.RecomputeUser(context.Background(), user); err != nil {
			t.Fatalf("RecomputeUser failed: %v", err)
		}
		if user.TotalOwedToYou != 25 {
			t.Errorf("TotalOwedToYou = %v, want 25 from recomputation, not the cached 100", user.TotalOwedToYou)
		}
	})

	t.Run("no friends yields explicit zeros", func(t *testing.T) {
		store := newFakeStore()
		calc := NewCalculator(store, store)
		updater := NewUpdater(store, store, calc)

		user := &models.User{ID: "u1", TotalOwedToYou: 10, TotalYouOwe: 5, NetBalance: 5}
		if err := updater.RecomputeUser(context.Background(), user); err != nil {
			t.Fatalf("RecomputeUser failed: %v", err)
		}
		if user.TotalOwedToYou != 0 || user.TotalYouOwe != 0 || user.NetBalance != 0 {
			t.Errorf("aggregates = (%v, %v, %v), want all zero",
				user.TotalOwedToYou, user.TotalYouOwe, user.NetBalance)
		}
		if got, ok := store.aggregates["u1"]; !ok || got != [3]float64{} {
			t.Errorf("persisted aggregates = %v (present=%v), want explicit zeros", got, ok)
		}
	})

	t.Run("each figure is rounded independently", func(t *testing.T) {
		store := newFakeStore()
		store.friends = []*models.Friend{
			{ID: "f1", UserID: "u1"},
			{ID: "f2", UserID: "u1"},
		}
		store.transactions["f1"] = []*models.Transaction{expense(0, 10.10, models.PartyUser)}
		store.transactions["f2"] = []*models.Transaction{expense(20.20, 0, models.PartyFriend)}

		calc := NewCalculator(store, store)
		updater := NewUpdater(store, store, calc)

		user := &models.User{ID: "u1"}
		if err := updater.RecomputeUser(context.Background(), user); err != nil {
			t.Fatalf("RecomputeUser failed: %v", err)
		}
		if math.Abs(user.TotalOwedToYou-10.10) > 1e-9 {
			t.Errorf("TotalOwedToYou = %v, want 10.10", user.TotalOwedToYou)
		}
		if math.Abs(user.TotalYouOwe-20.20) > 1e-9 {
			t.Errorf("TotalYouOwe = %v, want 20.20", user.TotalYouOwe)
		}
		if math.Abs(user.NetBalance-(-10.10)) > 1e-9 {
			t.Errorf("NetBalance = %v, want -10.10", user.NetBalance)
		}
	})

	t.Run("friend recompute failure resets aggregates", func(t *testing.T) {
		store := newFakeStore()
		store.friends = []*models.Friend{{ID: "f1", UserID: "u1"}}
		store.listTxnErr = errors.New("db gone")

		calc := NewCalculator(store, store)
		updater := NewUpdater(store, store, calc)

		user := &models.User{ID: "u1", TotalOwedToYou: 25, NetBalance: 25}
		if err := updater.RecomputeUser(context.Background(), user); err == nil {
			t.Fatal("expected an error")
		}
		if user.TotalOwedToYou != 0 || user.TotalYouOwe != 0 || user.NetBalance != 0 {
			t.Errorf("aggregates = (%v, %v, %v), want all zero after failure",
				user.TotalOwedToYou, user.TotalYouOwe, user.NetBalance)
		}
	})

	t.Run("friend list failure resets aggregates", func(t *testing.T) {
		store := newFakeStore()
		store.listFriendErr = errors.New("db gone")

		calc := NewCalculator(store, store)
		updater := NewUpdater(store, store, calc)

		user := &models.User{ID: "u1", TotalYouOwe: 12}
		if err := updater.RecomputeUser(context.Background(), user); err == nil {
			t.Fatal("expected an error")
		}
		if user.TotalYouOwe != 0 {
			t.Errorf("TotalYouOwe = %v, want 0 after failure", user.TotalYouOwe)
		}
	})
}
