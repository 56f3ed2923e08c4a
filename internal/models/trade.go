package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade side constants
const (
	TradeSideBuy  = "BUY"
	TradeSideSell = "SELL"
)

// Trade is one immutable ledger entry. Shares is signed: positive for a
// buy, negative for a sell. Consideration is always positive and equals
// |Shares| times the price captured at execution time, so the direction of
// the cash flow is carried entirely by the sign of Shares.
type Trade struct {
	ID            int             `json:"id"`
	UserID        int             `json:"user_id"`
	Symbol        string          `json:"symbol"`
	Shares        decimal.Decimal `json:"shares"`
	Consideration decimal.Decimal `json:"consideration"`
	ExecutedAt    time.Time       `json:"executed_at"`
}

// Side derives BUY or SELL from the sign of Shares.
func (t *Trade) Side() string {
	if t.Shares.IsNegative() {
		return TradeSideSell
	}
	return TradeSideBuy
}

// UnitPrice returns the per-share price at execution time,
// Consideration / |Shares|.
func (t *Trade) UnitPrice() decimal.Decimal {
	if t.Shares.IsZero() {
		return decimal.Zero
	}
	return t.Consideration.Div(t.Shares.Abs())
}

// CashDelta returns the signed effect of the trade on the user's cash
// balance: negative for a buy (outflow), positive for a sell (inflow).
func (t *Trade) CashDelta() decimal.Decimal {
	if t.Shares.IsNegative() {
		return t.Consideration
	}
	return t.Consideration.Neg()
}

// TradeView is a history row enriched for display with the per-unit price
// and, best effort, the instrument's display name.
type TradeView struct {
	Trade
	Side      string          `json:"side"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Name      string          `json:"name,omitempty"`
}
