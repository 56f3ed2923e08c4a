package models

import "github.com/shopspring/decimal"

// Holding is the net share count for one symbol, derived from the trade
// log. It is never stored; a zero net count means the symbol is not held.
type Holding struct {
	Symbol string          `json:"symbol"`
	Shares decimal.Decimal `json:"shares"`
}

// Position is one holding valued at the current market price.
type Position struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Shares      decimal.Decimal `json:"shares"`
	MarketValue decimal.Decimal `json:"market_value"`
}

// PortfolioSnapshot is a point-in-time view of a user's valued holdings
// plus cash. TotalEquity = Cash + sum of position market values.
type PortfolioSnapshot struct {
	Positions   []Position      `json:"positions"`
	Cash        decimal.Decimal `json:"cash"`
	TotalEquity decimal.Decimal `json:"total_equity"`
}
