package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gojo5t5/papertrade/internal/models"
)

// ExecuteTrade atomically applies one trade: it locks the user's balance
// row, verifies the trade is legal, adjusts cash and appends the trade in
// a single transaction. Shares is signed (positive buy, negative sell) and
// consideration is the positive total transaction value. Returns the new
// cash balance.
//
// The FOR UPDATE lock on the user row serializes concurrent trades for the
// same user, which is what keeps the non-negative-holdings and cash
// conservation invariants intact without any engine-level locking.
func (db *DB) ExecuteTrade(ctx context.Context, t *models.Trade) (decimal.Decimal, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var cashStr string
	err = tx.QueryRowContext(ctx,
		`SELECT cash FROM users WHERE id = $1 FOR UPDATE`, t.UserID,
	).Scan(&cashStr)
	if err == sql.ErrNoRows {
		return decimal.Zero, models.ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock balance: %w", err)
	}
	cash, err := decimal.NewFromString(cashStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse cash balance: %w", err)
	}

	if t.Shares.IsNegative() {
		// Selling: the net holding, recomputed inside the transaction,
		// must cover the quantity sold.
		held, err := holdingInTx(ctx, tx, t.UserID, t.Symbol)
		if err != nil {
			return decimal.Zero, err
		}
		if held.LessThan(t.Shares.Abs()) {
			return decimal.Zero, models.ErrInsufficientShares
		}
	} else {
		if cash.LessThan(t.Consideration) {
			return decimal.Zero, models.ErrInsufficientFunds
		}
	}

	newCash := cash.Add(t.CashDelta())

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET cash = $1 WHERE id = $2`, newCash.String(), t.UserID,
	); err != nil {
		return decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO trades (user_id, symbol, shares, consideration)
		VALUES ($1, $2, $3, $4)
		RETURNING id, executed_at
	`, t.UserID, t.Symbol, t.Shares.String(), t.Consideration.String(),
	).Scan(&t.ID, &t.ExecutedAt)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to append trade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit trade: %w", err)
	}
	return newCash, nil
}

func holdingInTx(ctx context.Context, tx *sql.Tx, userID int, symbol string) (decimal.Decimal, error) {
	var sum string
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(shares), 0)
		FROM trades
		WHERE user_id = $1 AND symbol = $2
	`, userID, symbol).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum holding: %w", err)
	}
	return decimal.NewFromString(sum)
}

// GetHoldings derives the current portfolio from the trade log: net shares
// per symbol, symbols with a zero net excluded. The sum is commutative, so
// the result does not depend on storage order.
func (db *DB) GetHoldings(ctx context.Context, userID int) ([]models.Holding, error) {
	query := `
		SELECT symbol, SUM(shares) AS net_shares
		FROM trades
		WHERE user_id = $1
		GROUP BY symbol
		HAVING SUM(shares) > 0
		ORDER BY symbol
	`
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := []models.Holding{}
	for rows.Next() {
		var h models.Holding
		var shares string
		if err := rows.Scan(&h.Symbol, &shares); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		if h.Shares, err = decimal.NewFromString(shares); err != nil {
			return nil, fmt.Errorf("failed to parse holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// GetTradesByUser returns the user's full trade log, newest first.
func (db *DB) GetTradesByUser(ctx context.Context, userID int) ([]*models.Trade, error) {
	query := `
		SELECT id, user_id, symbol, shares, consideration, executed_at
		FROM trades
		WHERE user_id = $1
		ORDER BY executed_at DESC, id DESC
	`
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		var t models.Trade
		var shares, consideration string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &shares, &consideration, &t.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		if t.Shares, err = decimal.NewFromString(shares); err != nil {
			return nil, fmt.Errorf("failed to parse shares: %w", err)
		}
		if t.Consideration, err = decimal.NewFromString(consideration); err != nil {
			return nil, fmt.Errorf("failed to parse consideration: %w", err)
		}
		trades = append(trades, &t)
	}
	return trades, rows.Err()
}
