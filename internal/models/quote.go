package models

import "github.com/shopspring/decimal"

// Quote is a point-in-time price for a symbol. Quotes are fetched per
// request and never cached by the engine.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}
