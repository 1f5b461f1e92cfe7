// Package exchange talks to the exchangerate-api.com public endpoint to
// convert submitted amounts into the company currency.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/expense-flow/internal/application/port"
)

const defaultBaseURL = "https://api.exchangerate-api.com/v4/latest"

// Client fetches exchange rates over HTTP. Rates are cached per base
// currency for a short window so a burst of submissions does not hammer the
// rate service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[string]cachedRates
}

type cachedRates struct {
	rates     map[string]float64
	fetchedAt time.Time
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Option configures the client
type Option func(*Client)

// WithBaseURL overrides the rate endpoint, used in tests
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithCacheTTL overrides how long fetched rates are reused
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// NewClient creates a new exchange rate client
func NewClient(logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		cacheTTL:   10 * time.Minute,
		cache:      make(map[string]cachedRates),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert returns the amount expressed in the target currency
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	rates, err := c.rates(ctx, from)
	if err != nil {
		return 0, err
	}

	rate, ok := rates[to]
	if !ok {
		return 0, fmt.Errorf("no rate from %s to %s", from, to)
	}
	return amount * rate, nil
}

func (c *Client) rates(ctx context.Context, base string) (map[string]float64, error) {
	c.mu.Lock()
	cached, ok := c.cache[base]
	c.mu.Unlock()
	if ok && time.Since(cached.fetchedAt) < c.cacheTTL {
		return cached.rates, nil
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Rate request failed", zap.String("base", base), zap.Error(err))
		return nil, fmt.Errorf("fetch rates for %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Rate service returned non-200",
			zap.String("base", base), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("rate service returned status %d for %s", resp.StatusCode, base)
	}

	var parsed ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode rate response: %w", err)
	}
	if len(parsed.Rates) == 0 {
		return nil, fmt.Errorf("rate service returned no rates for %s", base)
	}

	c.mu.Lock()
	c.cache[base] = cachedRates{rates: parsed.Rates, fetchedAt: time.Now()}
	c.mu.Unlock()
	return parsed.Rates, nil
}

// Verify interface compliance
var _ port.CurrencyConverter = (*Client)(nil)
