package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gojo5t5/papertrade/internal/models"
)

// Client fetches quotes from an external quote API. It holds no cache;
// every Lookup is a live request with a bounded timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a quote client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type quoteResponse struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"companyName"`
	Price  float64 `json:"latestPrice"`
}

// Lookup resolves a symbol to its display name and current price.
// An unknown symbol returns models.ErrUnknownSymbol; transport failures,
// non-OK statuses and malformed bodies return models.ErrQuoteUnavailable.
func (c *Client) Lookup(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, models.ErrUnknownSymbol
	}

	endpoint := fmt.Sprintf("%s/stock/%s/quote", c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrQuoteUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.ErrUnknownSymbol
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: quote API returned %d", models.ErrQuoteUnavailable, resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrQuoteUnavailable, err)
	}

	price := decimal.NewFromFloat(body.Price)
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive price for %s", models.ErrQuoteUnavailable, symbol)
	}

	return &models.Quote{
		Symbol: symbol,
		Name:   body.Name,
		Price:  price,
	}, nil
}
