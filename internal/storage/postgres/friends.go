package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/praneeth1335/backend/internal/models"
	"github.com/praneeth1335/backend/internal/storage"
)

const friendColumns = `id, user_id, name, email, avatar, notes, balance, is_active, created_at, updated_at`

func scanFriend(row interface{ Scan(...any) error }) (*models.Friend, error) {
	friend := &models.Friend{}
	err := row.Scan(
		&friend.ID,
		&friend.UserID,
		&friend.Name,
		&friend.Email,
		&friend.Avatar,
		&friend.Notes,
		&friend.Balance,
		&friend.IsActive,
		&friend.CreatedAt,
		&friend.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return friend, nil
}

// CreateFriend inserts a new friend into the database.
func (s *PostgresStore) CreateFriend(ctx context.Context, friend *models.Friend) error {
	if friend.ID == "" {
		friend.ID = uuid.New().String()
	}
	if friend.CreatedAt == 0 {
		friend.CreatedAt = time.Now().Unix()
		friend.UpdatedAt = friend.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friends (`+friendColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		friend.ID, friend.UserID, friend.Name, friend.Email, friend.Avatar,
		friend.Notes, friend.Balance, friend.IsActive, friend.CreatedAt, friend.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create friend: %w", err)
	}
	return nil
}

// GetFriend retrieves an active friend owned by userID.
func (s *PostgresStore) GetFriend(ctx context.Context, userID, friendID string) (*models.Friend, error) {
	friend, err := scanFriend(s.db.QueryRowContext(ctx,
		`SELECT `+friendColumns+` FROM friends WHERE id = $1 AND user_id = $2 AND is_active`,
		friendID, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("friend %s: %w", friendID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend: %w", err)
	}
	return friend, nil
}

// GetFriendByEmail retrieves an active friend of userID by email.
func (s *PostgresStore) GetFriendByEmail(ctx context.Context, userID, email string) (*models.Friend, error) {
	friend, err := scanFriend(s.db.QueryRowContext(ctx,
		`SELECT `+friendColumns+` FROM friends WHERE user_id = $1 AND email = $2 AND is_active`,
		userID, email))
	if err == sql.ErrNoRows {
		return nil, nil // No active friend with this email
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend by email: %w", err)
	}
	return friend, nil
}

// ListFriends returns all active friends of userID, newest first.
func (s *PostgresStore) ListFriends(ctx context.Context, userID string) ([]*models.Friend, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+friendColumns+` FROM friends WHERE user_id = $1 AND is_active ORDER BY created_at DESC, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []*models.Friend
	for rows.Next() {
		friend, err := scanFriend(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, friend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return friends, nil
}

// UpdateFriend updates the friend's mutable profile fields.
func (s *PostgresStore) UpdateFriend(ctx context.Context, friend *models.Friend) error {
	friend.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx, `
		UPDATE friends SET name = $1, avatar = $2, notes = $3, updated_at = $4
		WHERE id = $5`,
		friend.Name, friend.Avatar, friend.Notes, friend.UpdatedAt, friend.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update friend: %w", err)
	}
	return requireRow(res, "friend", friend.ID)
}

// SetFriendBalance writes the cached balance.
func (s *PostgresStore) SetFriendBalance(ctx context.Context, friendID string, balance float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE friends SET balance = $1, updated_at = $2 WHERE id = $3`,
		balance, time.Now().Unix(), friendID,
	)
	if err != nil {
		return fmt.Errorf("failed to set friend balance: %w", err)
	}
	return requireRow(res, "friend", friendID)
}

// DeleteFriend permanently removes the friend row.
func (s *PostgresStore) DeleteFriend(ctx context.Context, friendID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM friends WHERE id = $1`, friendID)
	if err != nil {
		return fmt.Errorf("failed to delete friend: %w", err)
	}
	return requireRow(res, "friend", friendID)
}
