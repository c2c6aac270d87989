package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/elevatecapital/fundtracker/internal/metrics"
	"github.com/elevatecapital/fundtracker/internal/store"
)

const (
	quoteDefaultTimeout = 10 * time.Second

	// The breaker opens after this many consecutive upstream failures and
	// stays open for quoteBreakerOpenFor.
	quoteBreakerTrips   = 5
	quoteBreakerOpenFor = time.Minute
)

// QuoteFetcher looks up the latest traded price for a ticker.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// HTTPQuoteClient fetches quotes from a JSON endpoint of the form
// GET {baseURL}?symbol=TICKER returning {"symbol": "...", "price": 123.45}.
// Transport errors and 5xx responses count against a circuit breaker;
// while it is open, lookups fail fast with gobreaker.ErrOpenState.
type HTTPQuoteClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// upstreamError is a failure of the quote API itself rather than of one
// ticker.
type upstreamError struct{ err error }

func (e *upstreamError) Error() string { return e.err.Error() }
func (e *upstreamError) Unwrap() error { return e.err }

type quoteResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Error  string          `json:"error,omitempty"`
}

// NewHTTPQuoteClient creates a client paced to requestsPerMinute.
func NewHTTPQuoteClient(baseURL, apiKey string, requestsPerMinute int, timeout time.Duration) *HTTPQuoteClient {
	if timeout <= 0 {
		timeout = quoteDefaultTimeout
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &HTTPQuoteClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "quote-api",
			Timeout: quoteBreakerOpenFor,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= quoteBreakerTrips
			},
			IsSuccessful: func(err error) bool {
				var upstream *upstreamError
				return !errors.As(err, &upstream)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("quote breaker state changed")
			},
		}),
	}
}

func (c *HTTPQuoteClient) FetchQuote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return decimal.Zero, err
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, ticker)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return out.(decimal.Decimal), nil
}

func (c *HTTPQuoteClient) fetch(ctx context.Context, ticker string) (decimal.Decimal, error) {

	params := url.Values{}
	params.Set("symbol", ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, &upstreamError{fmt.Errorf("quote request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("quote API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return decimal.Zero, &upstreamError{err}
		}
		return decimal.Zero, err
	}

	var qr quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode quote: %w", err)
	}
	if qr.Error != "" {
		return decimal.Zero, fmt.Errorf("quote API error for %s: %s", ticker, qr.Error)
	}
	if !qr.Price.IsPositive() {
		return decimal.Zero, fmt.Errorf("no price for %s", ticker)
	}
	return qr.Price, nil
}

// QuoteService resolves live prices for holdings that track a ticker.
// Prices are cached for the configured TTL so that repeated refreshes of
// the same ticker within the window cost no API calls.
type QuoteService struct {
	fetcher  QuoteFetcher
	holdings store.HoldingRepository
	cache    *expirable.LRU[string, decimal.Decimal]
	now      func() time.Time
}

func NewQuoteService(fetcher QuoteFetcher, holdings store.HoldingRepository, cacheSize int, ttl time.Duration) *QuoteService {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	return &QuoteService{
		fetcher:  fetcher,
		holdings: holdings,
		cache:    expirable.NewLRU[string, decimal.Decimal](cacheSize, nil, ttl),
		now:      time.Now,
	}
}

// Quote returns the price for ticker from cache or the quote API.
func (s *QuoteService) Quote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if price, ok := s.cache.Get(ticker); ok {
		metrics.QuoteCacheHits.Inc()
		return price, nil
	}

	price, err := s.fetcher.FetchQuote(ctx, ticker)
	if err != nil {
		metrics.QuoteRequestsTotal.WithLabelValues("failed").Inc()
		return decimal.Zero, err
	}
	metrics.QuoteRequestsTotal.WithLabelValues("success").Inc()
	s.cache.Add(ticker, price)
	return price, nil
}

// RefreshLive updates the stored quote of every live holding. A ticker
// that fails to resolve keeps its previous quote, or the placeholder
// (valued at zero) if it never had one.
func (s *QuoteService) RefreshLive(ctx context.Context) (updated int, err error) {
	live, err := s.holdings.ListLive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list live holdings: %w", err)
	}

	for _, h := range live {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}
		price, err := s.Quote(ctx, h.Ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", h.Ticker).Msg("quote lookup failed")
			continue
		}
		if err := s.holdings.SetQuote(ctx, h.ID, price, s.now()); err != nil {
			log.Warn().Err(err).Str("stock", h.StockName).Msg("failed to store quote")
			continue
		}
		metrics.QuoteUpdatesTotal.Inc()
		updated++
	}
	return updated, nil
}

// LiveCount is the number of holdings tracking live quotes.
func (s *QuoteService) LiveCount(ctx context.Context) (int, error) {
	live, err := s.holdings.ListLive(ctx)
	return len(live), err
}
