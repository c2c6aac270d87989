// Package store is the record store behind the fund services. The
// repository interfaces keep the arithmetic and service layers unaware of
// how rows are persisted; the gorm implementation backs them with SQLite.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elevatecapital/fundtracker/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	ListByStatus(ctx context.Context, status models.UserStatus) ([]models.User, error)
	CountByStatus(ctx context.Context, status models.UserStatus) (int64, error)
}

type MemberRepository interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	Create(ctx context.Context, member *models.Member) error
	Save(ctx context.Context, member *models.Member) error
}

type ContributionRepository interface {
	ListContributions(ctx context.Context) ([]models.Contribution, error)
	Create(ctx context.Context, c *models.Contribution) error
}

type HoldingRepository interface {
	ListHoldings(ctx context.Context) ([]models.Holding, error)
	ListLive(ctx context.Context) ([]models.Holding, error)
	GetByID(ctx context.Context, id uint) (*models.Holding, error)
	GetByStockName(ctx context.Context, name string) (*models.Holding, error)
	Create(ctx context.Context, h *models.Holding) error
	Save(ctx context.Context, h *models.Holding) error
	Delete(ctx context.Context, id uint) error
	SetQuote(ctx context.Context, id uint, price decimal.Decimal, at time.Time) error
}

type HistoryRepository interface {
	ListHistory(ctx context.Context) ([]models.HistoryPoint, error)
	GetByID(ctx context.Context, id uint) (*models.HistoryPoint, error)
	ExistsForDay(ctx context.Context, day time.Time) (bool, error)
	Create(ctx context.Context, p *models.HistoryPoint) error
	Save(ctx context.Context, p *models.HistoryPoint) error
	Delete(ctx context.Context, id uint) error
}

type NotificationRepository interface {
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	ListActiveFor(ctx context.Context, email string) ([]models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type ProofRepository interface {
	ListProofs(ctx context.Context) ([]models.Proof, error)
	Create(ctx context.Context, p *models.Proof) error
}

type MetricRepository interface {
	ListMetrics(ctx context.Context) ([]models.DashboardMetric, error)
	Upsert(ctx context.Context, name, value string) (created bool, err error)
}

// Repositories bundles every repository over one database handle.
type Repositories struct {
	Users         UserRepository
	Members       MemberRepository
	Contributions ContributionRepository
	Holdings      HoldingRepository
	History       HistoryRepository
	Notifications NotificationRepository
	Proofs        ProofRepository
	Metrics       MetricRepository
}
