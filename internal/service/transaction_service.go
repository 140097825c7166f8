package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/praneeth1335/backend/internal/ledger"
	"github.com/praneeth1335/backend/internal/models"
	"github.com/praneeth1335/backend/internal/storage"
)

// Default page size for transaction listings.
const defaultPageLimit = 20

// TransactionService records expenses and settlements and serves transaction
// history. Every mutation runs the recomputation cascade: friend balance
// first, then the user's aggregates.
type TransactionService struct {
	store      storage.Store
	calculator *ledger.Calculator
	updater    *ledger.Updater
}

// NewTransactionService creates a TransactionService.
func NewTransactionService(store storage.Store, calculator *ledger.Calculator, updater *ledger.Updater) *TransactionService {
	return &TransactionService{store: store, calculator: calculator, updater: updater}
}

// ExpenseInput is the payload for recording a split bill.
type ExpenseInput struct {
	FriendID      string
	Description   string
	BillTotal     float64
	UserExpense   float64
	FriendExpense float64
	PaidBy        models.Party
}

// AddExpense validates and records a split bill, then recomputes the
// friend's balance, stamps it on the transaction, and refreshes the user's
// aggregates.
func (s *TransactionService) AddExpense(ctx context.Context, user *models.User, in ExpenseInput) (*models.Transaction, error) {
	friend, err := s.store.GetFriend(ctx, user.ID, in.FriendID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrFriendNotFound
		}
		return nil, fmt.Errorf("loading friend: %w", err)
	}

	txn := models.NewExpense(user.ID, friend.ID, in.Description, in.BillTotal, in.UserExpense, in.FriendExpense, in.PaidBy)
	if err := txn.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	if err := s.finishCascade(ctx, user, friend, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// Settle records a payment against the friend's outstanding balance.
//
// The balance is recomputed first; a friend already within tolerance of zero
// cannot be settled. A zero amount defaults to the full outstanding balance
// and an empty settledBy defaults to the user paying.
func (s *TransactionService) Settle(ctx context.Context, user *models.User, friendID string, amount float64, settledBy models.Party) (*models.Transaction, error) {
	friend, err := s.store.GetFriend(ctx, user.ID, friendID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrFriendNotFound
		}
		return nil, fmt.Errorf("loading friend: %w", err)
	}

	balance, err := s.calculator.Recompute(ctx, friend)
	if err != nil {
		return nil, err
	}
	if ledger.Settled(balance) {
		return nil, ErrNothingToSettle
	}

	if amount == 0 {
		amount = ledger.Round2(math.Abs(balance))
	}
	if settledBy == "" {
		settledBy = models.PartyUser
	}

	txn := models.NewSettlement(user.ID, friend.ID, amount, settledBy)
	if err := txn.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("creating settlement: %w", err)
	}

	if err := s.finishCascade(ctx, user, friend, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// finishCascade runs the post-creation half of the cascade: recompute the
// friend's balance, stamp it on the new transaction, refresh the user's
// aggregates.
func (s *TransactionService) finishCascade(ctx context.Context, user *models.User, friend *models.Friend, txn *models.Transaction) error {
	balance, err := s.calculator.Recompute(ctx, friend)
	if err != nil {
		return err
	}

	txn.BalanceAfter = balance
	if err := s.store.SetTransactionBalanceAfter(ctx, txn.ID, balance); err != nil {
		// The snapshot is cosmetic; the authoritative balance is already
		// persisted on the friend.
		slog.Warn("failed to stamp balance snapshot", "transaction_id", txn.ID, "error", err)
	}

	return s.updater.RecomputeUser(ctx, user)
}

// Page is a paginated slice of transactions with the friend's current
// balance context where applicable.
type Page struct {
	Transactions []models.TransactionView `json:"transactions"`
	Total        int                      `json:"totalCount"`
	Page         int                      `json:"page"`
	Limit        int                      `json:"limit"`
}

func clampPaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultPageLimit
	}
	return page, limit
}

func viewsOf(transactions []*models.Transaction) []models.TransactionView {
	views := make([]models.TransactionView, 0, len(transactions))
	for _, t := range transactions {
		views = append(views, t.Display())
	}
	return views
}

// HistoryForFriend returns a page of the pair's transactions, newest first,
// after recomputing the friend's balance. The friend is returned alongside
// so handlers can report the fresh balance with the history.
func (s *TransactionService) HistoryForFriend(ctx context.Context, userID, friendID string, page, limit int) (*models.Friend, *Page, error) {
	friend, err := s.store.GetFriend(ctx, userID, friendID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrFriendNotFound
		}
		return nil, nil, fmt.Errorf("loading friend: %w", err)
	}
	if _, err := s.calculator.Recompute(ctx, friend); err != nil {
		return nil, nil, err
	}

	page, limit = clampPaging(page, limit)
	transactions, total, err := s.store.HistoryForFriend(ctx, userID, friendID, page, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("loading transaction history: %w", err)
	}
	return friend, &Page{Transactions: viewsOf(transactions), Total: total, Page: page, Limit: limit}, nil
}

// List returns a page of all the user's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID string, page, limit int) (*Page, error) {
	page, limit = clampPaging(page, limit)
	transactions, total, err := s.store.ListTransactions(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return &Page{Transactions: viewsOf(transactions), Total: total, Page: page, Limit: limit}, nil
}

// Get returns one active transaction.
func (s *TransactionService) Get(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	txn, err := s.store.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("loading transaction: %w", err)
	}
	return txn, nil
}

// Delete soft-deletes a transaction and recomputes both the friend's balance
// and the user's aggregates, returning the friend's new balance.
func (s *TransactionService) Delete(ctx context.Context, user *models.User, transactionID string) (float64, error) {
	txn, err := s.store.GetTransaction(ctx, user.ID, transactionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, ErrTransactionNotFound
		}
		return 0, fmt.Errorf("loading transaction: %w", err)
	}

	if err := s.store.DeactivateTransaction(ctx, txn.ID); err != nil {
		return 0, fmt.Errorf("deactivating transaction %s: %w", txn.ID, err)
	}

	friend, err := s.store.GetFriend(ctx, user.ID, txn.FriendID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Friend already gone; only the aggregates need refreshing.
			return 0, s.updater.RecomputeUser(ctx, user)
		}
		return 0, fmt.Errorf("loading friend: %w", err)
	}

	balance, err := s.calculator.Recompute(ctx, friend)
	if err != nil {
		return 0, err
	}
	if err := s.updater.RecomputeUser(ctx, user); err != nil {
		return 0, err
	}
	return balance, nil
}

// Stats summarizes the user's active transactions by kind.
func (s *TransactionService) Stats(ctx context.Context, userID string) (*models.TransactionStats, error) {
	stats, err := s.store.TransactionStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("computing transaction stats: %w", err)
	}
	return stats, nil
}
