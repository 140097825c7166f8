package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/praneeth1335/backend/internal/models"
)

const userColumns = `id, name, email, password_hash, avatar,
	total_owed_to_you, total_you_owe, net_balance,
	is_verified, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Avatar,
		&user.TotalOwedToYou,
		&user.TotalYouOwe,
		&user.NetBalance,
		&user.IsVerified,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user into the database.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
		user.UpdatedAt = user.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Avatar,
		user.TotalOwedToYou, user.TotalYouOwe, user.NetBalance,
		user.IsVerified, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// UpdateUser updates the user's mutable profile fields.
func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = $1, avatar = $2, is_verified = $3, is_active = $4, updated_at = $5
		WHERE id = $6`,
		user.Name, user.Avatar, user.IsVerified, user.IsActive, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(res, "user", user.ID)
}

// SetUserPassword replaces the stored password hash.
func (s *PostgresStore) SetUserPassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set user password: %w", err)
	}
	return requireRow(res, "user", userID)
}

// SetUserAggregates writes the three derived aggregate fields.
func (s *PostgresStore) SetUserAggregates(ctx context.Context, userID string, totalOwedToYou, totalYouOwe, netBalance float64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET total_owed_to_you = $1, total_you_owe = $2, net_balance = $3, updated_at = $4
		WHERE id = $5`,
		totalOwedToYou, totalYouOwe, netBalance, time.Now().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set user aggregates: %w", err)
	}
	return requireRow(res, "user", userID)
}
