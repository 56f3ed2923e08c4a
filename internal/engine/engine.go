package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gojo5t5/papertrade/internal/models"
)

// Ledger is the durable, transactional store the engine records against.
// ExecuteTrade must apply the balance mutation and the trade append in a
// single transaction and reject illegal trades without mutating anything.
type Ledger interface {
	ExecuteTrade(ctx context.Context, t *models.Trade) (decimal.Decimal, error)
	GetHoldings(ctx context.Context, userID int) ([]models.Holding, error)
	GetTradesByUser(ctx context.Context, userID int) ([]*models.Trade, error)
	GetCash(ctx context.Context, userID int) (decimal.Decimal, error)
}

// QuoteProvider resolves a symbol to its display name and current price.
type QuoteProvider interface {
	Lookup(ctx context.Context, symbol string) (*models.Quote, error)
}

// Publisher emits trade events to downstream consumers, best effort.
type Publisher interface {
	PublishTradeExecuted(ctx context.Context, t *models.Trade) error
}

// Engine validates and records trades and derives portfolio views from
// the trade log. Holdings and equity are always recomputed, never cached.
type Engine struct {
	ledger    Ledger
	quotes    QuoteProvider
	publisher Publisher
	logger    *zap.Logger
}

// New creates an engine. publisher may be nil; events are then skipped.
func New(ledger Ledger, quotes QuoteProvider, publisher Publisher, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		ledger:    ledger,
		quotes:    quotes,
		publisher: publisher,
		logger:    logger,
	}
}

// Buy purchases shares of symbol at the current quoted price and returns
// the updated cash balance. The cost is captured at execution time and the
// debit plus the ledger append commit atomically.
func (e *Engine) Buy(ctx context.Context, userID int, symbol string, shares decimal.Decimal) (decimal.Decimal, error) {
	if !shares.IsPositive() {
		return decimal.Zero, models.ErrInvalidQuantity
	}

	quote, err := e.quotes.Lookup(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	trade := &models.Trade{
		UserID:        userID,
		Symbol:        quote.Symbol,
		Shares:        shares,
		Consideration: quote.Price.Mul(shares),
	}

	balance, err := e.ledger.ExecuteTrade(ctx, trade)
	if err != nil {
		return decimal.Zero, err
	}

	e.logger.Info("trade executed",
		zap.Int("user_id", userID),
		zap.String("symbol", trade.Symbol),
		zap.String("side", trade.Side()),
		zap.String("shares", shares.String()),
		zap.String("consideration", trade.Consideration.String()),
	)
	e.publish(ctx, trade)
	return balance, nil
}

// Sell disposes of shares of symbol at the current quoted price and
// returns the updated cash balance. The ledger rejects the sale inside its
// transaction if the net holding does not cover the quantity.
func (e *Engine) Sell(ctx context.Context, userID int, symbol string, shares decimal.Decimal) (decimal.Decimal, error) {
	if !shares.IsPositive() {
		return decimal.Zero, models.ErrInvalidQuantity
	}

	quote, err := e.quotes.Lookup(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	trade := &models.Trade{
		UserID:        userID,
		Symbol:        quote.Symbol,
		Shares:        shares.Neg(),
		Consideration: quote.Price.Mul(shares),
	}

	balance, err := e.ledger.ExecuteTrade(ctx, trade)
	if err != nil {
		return decimal.Zero, err
	}

	e.logger.Info("trade executed",
		zap.Int("user_id", userID),
		zap.String("symbol", trade.Symbol),
		zap.String("side", trade.Side()),
		zap.String("shares", shares.String()),
		zap.String("consideration", trade.Consideration.String()),
	)
	e.publish(ctx, trade)
	return balance, nil
}

// Holdings returns the user's current derived holdings. Symbols with a
// zero net share count are excluded.
func (e *Engine) Holdings(ctx context.Context, userID int) ([]models.Holding, error) {
	return e.ledger.GetHoldings(ctx, userID)
}

// Snapshot values the user's holdings at live prices and combines them
// with cash into a portfolio snapshot. If any position's quote cannot be
// resolved the whole snapshot fails: a silently omitted position would
// misrepresent total equity.
func (e *Engine) Snapshot(ctx context.Context, userID int) (*models.PortfolioSnapshot, error) {
	cash, err := e.ledger.GetCash(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := e.ledger.GetHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.PortfolioSnapshot{
		Positions:   make([]models.Position, 0, len(holdings)),
		Cash:        cash,
		TotalEquity: cash,
	}

	for _, h := range holdings {
		quote, err := e.quotes.Lookup(ctx, h.Symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to value %s: %w", h.Symbol, err)
		}
		marketValue := quote.Price.Mul(h.Shares)
		snapshot.Positions = append(snapshot.Positions, models.Position{
			Symbol:      h.Symbol,
			Name:        quote.Name,
			Price:       quote.Price,
			Shares:      h.Shares,
			MarketValue: marketValue,
		})
		snapshot.TotalEquity = snapshot.TotalEquity.Add(marketValue)
	}
	return snapshot, nil
}

// History returns the user's trade log enriched with per-unit prices and
// display names. Name lookups are best effort; a failed lookup leaves the
// name empty rather than failing the history.
func (e *Engine) History(ctx context.Context, userID int) ([]models.TradeView, error) {
	trades, err := e.ledger.GetTradesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	views := make([]models.TradeView, 0, len(trades))
	for _, t := range trades {
		name, ok := names[t.Symbol]
		if !ok {
			if quote, err := e.quotes.Lookup(ctx, t.Symbol); err == nil {
				name = quote.Name
			}
			names[t.Symbol] = name
		}
		views = append(views, models.TradeView{
			Trade:     *t,
			Side:      t.Side(),
			UnitPrice: t.UnitPrice(),
			Name:      name,
		})
	}
	return views, nil
}

func (e *Engine) publish(ctx context.Context, t *models.Trade) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishTradeExecuted(ctx, t); err != nil {
		e.logger.Warn("failed to publish trade event",
			zap.Int("trade_id", t.ID),
			zap.Error(err),
		)
	}
}
