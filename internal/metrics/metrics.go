// Package metrics provides Prometheus metrics for the fund tracker.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/elevatecapital/fundtracker/internal/fund"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fund_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fund_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// API dispatch, labelled by page or action name
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fund_api_calls_total",
			Help: "Total page reads and actions by name and outcome",
		},
		[]string{"kind", "name", "result"}, // kind: "page" or "action"
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fund_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"scope"}, // "action", "signin"
	)

	// Fund Metrics, refreshed on every recalculation
	FundInvested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fund_invested_total",
			Help: "Capital invested across all holdings",
		},
	)

	FundCurrentValue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fund_current_value",
			Help: "Current market value of all holdings",
		},
	)

	FundContributions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fund_contributions_total",
			Help: "Sum of all member contributions",
		},
	)

	FundReturnRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fund_return_ratio",
			Help: "Total return divided by capital invested",
		},
	)

	FundMembers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fund_members",
			Help: "Number of fund members",
		},
	)

	// Quote Metrics
	QuoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fund_quote_requests_total",
			Help: "Quote API requests by result",
		},
		[]string{"result"}, // "success", "failed"
	)

	QuoteCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fund_quote_cache_hits_total",
			Help: "Quote cache hit count",
		},
	)

	QuoteUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fund_quote_updates_total",
			Help: "Total number of holding quotes written",
		},
	)

	QuoteBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fund_quote_batch_duration_seconds",
			Help:    "Time taken to refresh all live holdings",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Snapshot Metrics
	SnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fund_snapshots_total",
			Help: "Automatic history snapshots by result",
		},
		[]string{"result"}, // "recorded", "failed"
	)
)

// UpdateFundMetrics publishes a freshly computed summary.
func UpdateFundMetrics(summary fund.Summary, members int) {
	FundInvested.Set(toFloat(summary.TotalInvested))
	FundCurrentValue.Set(toFloat(summary.CurrentValue))
	FundContributions.Set(toFloat(summary.TotalContributions))
	FundReturnRatio.Set(toFloat(summary.ReturnRatio))
	FundMembers.Set(float64(members))
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
