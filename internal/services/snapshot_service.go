package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/elevatecapital/fundtracker/internal/metrics"
	"github.com/elevatecapital/fundtracker/internal/models"
	"github.com/elevatecapital/fundtracker/internal/store"
)

// SnapshotService records the fund value into the history chart once a
// day. Days that already have a point, manual or automatic, are skipped.
type SnapshotService struct {
	fund    *FundService
	history store.HistoryRepository

	mu            sync.Mutex
	lastSnapshot  time.Time
	snapshotHour  int // Hour of day to take snapshot (0-23)
	checkInterval time.Duration
	now           func() time.Time
}

func NewSnapshotService(fundSvc *FundService, history store.HistoryRepository, hour int, checkInterval time.Duration) *SnapshotService {
	if checkInterval <= 0 {
		checkInterval = 15 * time.Minute
	}
	return &SnapshotService{
		fund:          fundSvc,
		history:       history,
		snapshotHour:  hour,
		checkInterval: checkInterval,
		now:           time.Now,
	}
}

// Start begins the background snapshot worker.
func (s *SnapshotService) Start(ctx context.Context) {
	log.Info().Int("hour", s.snapshotHour).Msg("snapshot service started")

	// Check if we need to take a snapshot for today on startup
	s.checkAndSnapshot(ctx)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("snapshot service stopping")
			return
		case <-ticker.C:
			s.checkAndSnapshot(ctx)
		}
	}
}

// snapshotDay is the history date for t: its calendar day at UTC midnight,
// matching how manually entered points are stored.
func snapshotDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *SnapshotService) checkAndSnapshot(ctx context.Context) {
	now := s.now()
	if now.Hour() < s.snapshotHour {
		return
	}

	exists, err := s.history.ExistsForDay(ctx, snapshotDay(now))
	if err != nil {
		log.Error().Err(err).Msg("snapshot service: failed to check history")
		return
	}
	if exists {
		return
	}

	if _, err := s.TakeSnapshot(ctx); err != nil {
		metrics.SnapshotsTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Msg("snapshot service: failed to take snapshot")
	}
}

// TakeSnapshot records today's fund value. It fails with ErrConflict if
// today already has a point.
func (s *SnapshotService) TakeSnapshot(ctx context.Context) (*models.HistoryPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	day := snapshotDay(now)

	sum, err := s.fund.Summary(ctx)
	if err != nil {
		return nil, err
	}

	point := &models.HistoryPoint{
		Date:      day,
		Value:     sum.TotalFundValue,
		Automatic: true,
	}
	if err := s.history.Create(ctx, point); err != nil {
		return nil, storeError(err, "A history point for "+day.Format(dateLayout)+" already exists.")
	}

	s.lastSnapshot = now
	metrics.SnapshotsTotal.WithLabelValues("recorded").Inc()
	log.Info().
		Str("date", day.Format(dateLayout)).
		Str("value", sum.TotalFundValue.String()).
		Msg("snapshot service: recorded fund value")
	return point, nil
}

// LastSnapshot returns when this process last recorded a snapshot.
func (s *SnapshotService) LastSnapshot() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSnapshot
}
