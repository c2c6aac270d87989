package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/elevatecapital/fundtracker/internal/metrics"
	"github.com/elevatecapital/fundtracker/internal/models"
)

// QuoteWorker refreshes live holding prices in the background and
// recalculates the dashboard metrics whenever a price changed.
type QuoteWorker struct {
	quotes         *QuoteService
	fund           *FundService
	updateInterval time.Duration

	// serializes refreshes between the ticker and manual triggers
	runMu sync.Mutex

	mu                 sync.RWMutex
	lastUpdateTime     time.Time
	lastUpdated        int
	quotesUpdatedToday int
	lastStatsDay       time.Time
}

func NewQuoteWorker(quotes *QuoteService, fundSvc *FundService, interval time.Duration) *QuoteWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &QuoteWorker{
		quotes:         quotes,
		fund:           fundSvc,
		updateInterval: interval,
	}
}

// Start runs the refresh loop until ctx is cancelled.
func (w *QuoteWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.updateInterval).Msg("quote worker started")

	// Run immediately on startup
	if _, err := w.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("quote worker: initial refresh failed")
	}

	ticker := time.NewTicker(w.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("quote worker stopping")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("quote worker: refresh failed")
			}
		}
	}
}

// RunOnce refreshes every live holding now.
func (w *QuoteWorker) RunOnce(ctx context.Context) (int, error) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	start := time.Now()
	updated, err := w.quotes.RefreshLive(ctx)
	metrics.QuoteBatchDuration.Observe(time.Since(start).Seconds())

	w.record(updated)
	if err != nil {
		return updated, err
	}

	if updated > 0 {
		log.Info().Int("updated", updated).Msg("quote worker: refreshed live holdings")
		if _, err := w.fund.Recalculate(ctx); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

func (w *QuoteWorker) record(updated int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if w.lastStatsDay.Before(today) {
		w.quotesUpdatedToday = 0
		w.lastStatsDay = today
	}

	w.lastUpdateTime = now
	w.lastUpdated = updated
	w.quotesUpdatedToday += updated
}

// Status reports the worker's progress for the admin dashboard.
func (w *QuoteWorker) Status(ctx context.Context) models.QuoteStatus {
	w.mu.RLock()
	status := models.QuoteStatus{
		Enabled:      true,
		LastRunTime:  w.lastUpdateTime,
		LastUpdated:  w.lastUpdated,
		UpdatedToday: w.quotesUpdatedToday,
	}
	if !w.lastUpdateTime.IsZero() {
		status.NextRunTime = w.lastUpdateTime.Add(w.updateInterval)
	}
	w.mu.RUnlock()

	if n, err := w.quotes.LiveCount(ctx); err == nil {
		status.LiveHoldings = n
	}
	return status
}
