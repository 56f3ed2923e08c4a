package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/gojo5t5/papertrade/internal/models"
)

// CreateUser inserts a new user with a starting cash balance. A duplicate
// username maps to models.ErrUsernameTaken via the unique constraint.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, cash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := db.conn.QueryRowContext(ctx, query, u.Username, u.PasswordHash, u.Cash.String()).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return models.ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by primary key.
func (db *DB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, cash, created_at
		FROM users
		WHERE id = $1
	`
	return db.scanUser(db.conn.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by their unique username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, cash, created_at
		FROM users
		WHERE username = $1
	`
	return db.scanUser(db.conn.QueryRowContext(ctx, query, username))
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var cash string

	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &cash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Cash, err = decimal.NewFromString(cash)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cash balance: %w", err)
	}
	return &u, nil
}

// UsernameExists reports whether a username is already registered.
func (db *DB) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := db.conn.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// GetCash returns a user's current cash balance.
func (db *DB) GetCash(ctx context.Context, userID int) (decimal.Decimal, error) {
	query := `SELECT cash FROM users WHERE id = $1`
	var cash string
	err := db.conn.QueryRowContext(ctx, query, userID).Scan(&cash)
	if err == sql.ErrNoRows {
		return decimal.Zero, models.ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get cash balance: %w", err)
	}
	return decimal.NewFromString(cash)
}

// UpdatePassword replaces a user's password hash.
func (db *DB) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	result, err := db.conn.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
