package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/praneeth1335/backend/internal/models"
	"github.com/praneeth1335/backend/internal/storage"
)

const transactionColumns = `id, user_id, friend_id, type, description,
	bill_total, user_expense, friend_expense, paid_by,
	amount, settled_by, balance_after, is_active, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.FriendID,
		&t.Type,
		&t.Description,
		&t.BillTotal,
		&t.UserExpense,
		&t.FriendExpense,
		&t.PaidBy,
		&t.Amount,
		&t.SettledBy,
		&t.BalanceAfter,
		&t.IsActive,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTransaction inserts a new transaction.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	if transaction.CreatedAt == 0 {
		transaction.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transaction.ID, transaction.UserID, transaction.FriendID, transaction.Type, transaction.Description,
		transaction.BillTotal, transaction.UserExpense, transaction.FriendExpense, transaction.PaidBy,
		transaction.Amount, transaction.SettledBy, transaction.BalanceAfter, transaction.IsActive, transaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves an active transaction owned by userID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ? AND is_active = 1`,
		transactionID, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// ListTransactionsForFriend returns the pair's active transactions ordered by
// creation time ascending.
func (s *SQLiteStore) ListTransactionsForFriend(ctx context.Context, userID, friendID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND friend_id = ? AND is_active = 1
		ORDER BY created_at ASC, id`,
		userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// HistoryForFriend returns a page of the pair's active transactions, newest
// first, with the total active count.
func (s *SQLiteStore) HistoryForFriend(ctx context.Context, userID, friendID string, page, limit int) ([]*models.Transaction, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ? AND friend_id = ? AND is_active = 1`,
		userID, friendID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND friend_id = ? AND is_active = 1
		ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		userID, friendID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transaction history: %w", err)
	}
	defer rows.Close()

	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// ListTransactions returns a page of all the user's active transactions,
// newest first, with the total active count.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string, page, limit int) ([]*models.Transaction, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ? AND is_active = 1`,
		userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// SetTransactionBalanceAfter stamps the post-transaction balance snapshot.
func (s *SQLiteStore) SetTransactionBalanceAfter(ctx context.Context, transactionID string, balanceAfter float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET balance_after = ? WHERE id = ?`,
		balanceAfter, transactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to set balance after: %w", err)
	}
	return requireRow(res, "transaction", transactionID)
}

// DeactivateTransaction soft-deletes a transaction.
func (s *SQLiteStore) DeactivateTransaction(ctx context.Context, transactionID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET is_active = 0 WHERE id = ? AND is_active = 1`,
		transactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate transaction: %w", err)
	}
	return requireRow(res, "transaction", transactionID)
}

// PurgeTransactionsForFriend permanently removes all of a friend's
// transactions.
func (s *SQLiteStore) PurgeTransactionsForFriend(ctx context.Context, friendID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE friend_id = ?`, friendID)
	if err != nil {
		return fmt.Errorf("failed to purge transactions: %w", err)
	}
	return nil
}

// TransactionStats summarizes the user's active transactions by kind.
func (s *SQLiteStore) TransactionStats(ctx context.Context, userID string) (*models.TransactionStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, COUNT(*),
		       SUM(CASE WHEN type = 'expense' THEN bill_total ELSE amount END)
		FROM transactions
		WHERE user_id = ? AND is_active = 1
		GROUP BY type`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute transaction stats: %w", err)
	}
	defer rows.Close()

	stats := &models.TransactionStats{}
	for rows.Next() {
		var kind string
		var bucket models.StatBucket
		if err := rows.Scan(&kind, &bucket.Count, &bucket.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction stats: %w", err)
		}
		switch models.TransactionType(kind) {
		case models.TypeExpense:
			stats.Expenses = bucket
		case models.TypeSettlement:
			stats.Settlements = bucket
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction stats: %w", err)
	}
	return stats, nil
}

func collectTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}
