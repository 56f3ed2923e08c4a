package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a registered account. Cash is mutated only by trade
// execution; everything else about the account is set at registration.
type User struct {
	ID           int             `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Cash         decimal.Decimal `json:"cash"`
	CreatedAt    time.Time       `json:"created_at"`
}
