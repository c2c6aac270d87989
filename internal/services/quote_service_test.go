package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/elevatecapital/fundtracker/internal/fund"
	"github.com/elevatecapital/fundtracker/internal/models"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchQuote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func TestQuote_Cached(t *testing.T) {
	env := newTestEnv(t)
	fetcher := &mockFetcher{}
	fetcher.On("FetchQuote", mock.Anything, "INFY").Return(d("1620.5"), nil).Once()

	svc := NewQuoteService(fetcher, env.repos.Holdings, 8, time.Minute)

	price, err := svc.Quote(context.Background(), "infy")
	require.NoError(t, err)
	assertDec(t, "1620.5", price)

	price, err = svc.Quote(context.Background(), " INFY")
	require.NoError(t, err)
	assertDec(t, "1620.5", price)

	fetcher.AssertNumberOfCalls(t, "FetchQuote", 1)
}

func TestRefreshLive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, in := range []models.AddHoldingRequest{
		{Holding: models.HoldingInput{StockName: ptr("Infosys"), Ticker: ptr("INFY"), Shares: ptr(d("2")), PurchasePrice: ptr(d("1500"))}, UseLiveQuote: true},
		{Holding: models.HoldingInput{StockName: ptr("Delisted"), Ticker: ptr("GONE"), Shares: ptr(d("3")), PurchasePrice: ptr(d("10"))}, UseLiveQuote: true},
		{Holding: models.HoldingInput{StockName: ptr("Gold"), Shares: ptr(d("1")), PurchasePrice: ptr(d("50")), CurrentPrice: ptr("60")}},
	} {
		_, err := env.portfolio.AddHolding(ctx, in)
		require.NoError(t, err)
	}

	fetcher := &mockFetcher{}
	fetcher.On("FetchQuote", mock.Anything, "INFY").Return(d("1600"), nil)
	fetcher.On("FetchQuote", mock.Anything, "GONE").Return(decimal.Zero, errors.New("no price for GONE"))

	svc := NewQuoteService(fetcher, env.repos.Holdings, 8, time.Minute)
	updated, err := svc.RefreshLive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	fetcher.AssertExpectations(t)

	holdings, err := env.fund.Portfolio(ctx)
	require.NoError(t, err)
	byName := map[string]models.PortfolioHolding{}
	for _, h := range holdings {
		byName[h.StockName] = h
	}

	assertDec(t, "1600", byName["Infosys"].Price)
	assertDec(t, "3200", byName["Infosys"].MarketValue)
	// unresolved tickers keep the placeholder and value at zero
	assert.Equal(t, fund.LivePricePlaceholder, byName["Delisted"].CurrentPrice)
	assert.True(t, byName["Delisted"].MarketValue.IsZero())
	assertDec(t, "60", byName["Gold"].Price)
}

func TestQuoteWorker_RunOnceRecalculates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.contribute(t, "a@x.com", "3000", day(2024, 1, 1))
	_, err := env.portfolio.AddHolding(ctx, models.AddHoldingRequest{
		Holding:      models.HoldingInput{StockName: ptr("Infosys"), Ticker: ptr("INFY"), Shares: ptr(d("2")), PurchasePrice: ptr(d("1500"))},
		UseLiveQuote: true,
	})
	require.NoError(t, err)

	fetcher := &mockFetcher{}
	fetcher.On("FetchQuote", mock.Anything, "INFY").Return(d("1600"), nil)

	worker := NewQuoteWorker(NewQuoteService(fetcher, env.repos.Holdings, 8, time.Minute), env.fund, time.Hour)
	updated, err := worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	dash, err := env.fund.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3200", dash.Metrics[models.MetricTotalFundValue])

	status := worker.Status(ctx)
	assert.Equal(t, 1, status.LastUpdated)
	assert.Equal(t, 1, status.UpdatedToday)
	assert.Equal(t, 1, status.LiveHoldings)
	assert.Equal(t, status.LastRunTime.Add(time.Hour), status.NextRunTime)
}

func TestHTTPQuoteClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("symbol") {
		case "INFY":
			_, _ = w.Write([]byte(`{"symbol":"INFY","price":1623.45}`))
		case "TCS":
			_, _ = w.Write([]byte(`{"symbol":"TCS","price":"3890.10"}`))
		case "ZERO":
			_, _ = w.Write([]byte(`{"symbol":"ZERO","price":0}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`unknown symbol`))
		}
	}))
	defer server.Close()

	client := NewHTTPQuoteClient(server.URL, "test-key", 6000, time.Second)
	ctx := context.Background()

	price, err := client.FetchQuote(ctx, "INFY")
	require.NoError(t, err)
	assertDec(t, "1623.45", price)

	price, err = client.FetchQuote(ctx, "TCS")
	require.NoError(t, err)
	assertDec(t, "3890.1", price)

	_, err = client.FetchQuote(ctx, "ZERO")
	assert.Error(t, err)

	_, err = client.FetchQuote(ctx, "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPQuoteClient_BreakerOpensOnUpstreamFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewHTTPQuoteClient(server.URL, "", 6000, time.Second)
	ctx := context.Background()

	for i := 0; i < quoteBreakerTrips; i++ {
		_, err := client.FetchQuote(ctx, "INFY")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	}

	_, err := client.FetchQuote(ctx, "INFY")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(quoteBreakerTrips), calls.Load())
}

func TestHTTPQuoteClient_UnknownTickerDoesNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "INFY" {
			_, _ = w.Write([]byte(`{"symbol":"INFY","price":10}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPQuoteClient(server.URL, "", 6000, time.Second)
	ctx := context.Background()

	for i := 0; i < quoteBreakerTrips+2; i++ {
		_, err := client.FetchQuote(ctx, "NOPE")
		require.Error(t, err)
	}
	price, err := client.FetchQuote(ctx, "INFY")
	require.NoError(t, err)
	assertDec(t, "10", price)
}
