package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elevatecapital/fundtracker/internal/fund"
	"github.com/elevatecapital/fundtracker/internal/models"
)

// ErrDuplicate is returned when an insert violates a unique key.
var ErrDuplicate = errors.New("record already exists")

// New builds gorm-backed repositories over db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         &userRepo{db: db},
		Members:       &memberRepo{db: db},
		Contributions: &contributionRepo{db: db},
		Holdings:      &holdingRepo{db: db},
		History:       &historyRepo{db: db},
		Notifications: &notificationRepo{db: db},
		Proofs:        &proofRepo{db: db},
		Metrics:       &metricRepo{db: db},
	}
}

// translate maps gorm errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

// deleted reports ErrNotFound for deletes that touched nothing.
func deleted(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

const emailMatch = "LOWER(TRIM(email)) = ?"

// Users

type userRepo struct{ db *gorm.DB }

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(emailMatch, fund.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	user.Email = fund.NormalizeEmail(user.Email)
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepo) Save(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepo) Delete(ctx context.Context, id uint) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.User{}, id))
}

func (r *userRepo) ListByStatus(ctx context.Context, status models.UserStatus) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC").Find(&users).Error
	return users, translate(err)
}

func (r *userRepo) CountByStatus(ctx context.Context, status models.UserStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("status = ?", status).Count(&count).Error
	return count, translate(err)
}

// Members

type memberRepo struct{ db *gorm.DB }

func (r *memberRepo) ListMembers(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).Order("join_date ASC, id ASC").Find(&members).Error
	return members, translate(err)
}

func (r *memberRepo) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where(emailMatch, fund.NormalizeEmail(email)).First(&member).Error; err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *memberRepo) Create(ctx context.Context, member *models.Member) error {
	member.Email = fund.NormalizeEmail(member.Email)
	return translate(r.db.WithContext(ctx).Create(member).Error)
}

func (r *memberRepo) Save(ctx context.Context, member *models.Member) error {
	return translate(r.db.WithContext(ctx).Save(member).Error)
}

// Contributions

type contributionRepo struct{ db *gorm.DB }

func (r *contributionRepo) ListContributions(ctx context.Context) ([]models.Contribution, error) {
	var rows []models.Contribution
	err := r.db.WithContext(ctx).Order("date ASC, id ASC").Find(&rows).Error
	return rows, translate(err)
}

func (r *contributionRepo) Create(ctx context.Context, c *models.Contribution) error {
	c.MemberEmail = fund.NormalizeEmail(c.MemberEmail)
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

// Holdings

type holdingRepo struct{ db *gorm.DB }

func (r *holdingRepo) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	var rows []models.Holding
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, translate(err)
}

func (r *holdingRepo) ListLive(ctx context.Context) ([]models.Holding, error) {
	var rows []models.Holding
	err := r.db.WithContext(ctx).
		Where("use_live_quote = ? AND ticker <> ''", true).
		Order("quoted_at ASC").
		Find(&rows).Error
	return rows, translate(err)
}

func (r *holdingRepo) GetByID(ctx context.Context, id uint) (*models.Holding, error) {
	var h models.Holding
	if err := r.db.WithContext(ctx).First(&h, id).Error; err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (r *holdingRepo) GetByStockName(ctx context.Context, name string) (*models.Holding, error) {
	var h models.Holding
	err := r.db.WithContext(ctx).
		Where("LOWER(TRIM(stock_name)) = ?", fund.NormalizeEmail(name)).
		First(&h).Error
	if err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (r *holdingRepo) Create(ctx context.Context, h *models.Holding) error {
	return translate(r.db.WithContext(ctx).Create(h).Error)
}

func (r *holdingRepo) Save(ctx context.Context, h *models.Holding) error {
	return translate(r.db.WithContext(ctx).Save(h).Error)
}

func (r *holdingRepo) Delete(ctx context.Context, id uint) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.Holding{}, id))
}

// SetQuote writes only the quote columns so a concurrent admin edit of the
// other fields is not overwritten.
func (r *holdingRepo) SetQuote(ctx context.Context, id uint, price decimal.Decimal, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Holding{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_quote": decimal.NewNullDecimal(price),
		"quoted_at":  at,
	})
	return deleted(res)
}

// History

type historyRepo struct{ db *gorm.DB }

func (r *historyRepo) ListHistory(ctx context.Context) ([]models.HistoryPoint, error) {
	var rows []models.HistoryPoint
	err := r.db.WithContext(ctx).Order("date ASC").Find(&rows).Error
	return rows, translate(err)
}

func (r *historyRepo) GetByID(ctx context.Context, id uint) (*models.HistoryPoint, error) {
	var p models.HistoryPoint
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *historyRepo) ExistsForDay(ctx context.Context, day time.Time) (bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var count int64
	err := r.db.WithContext(ctx).Model(&models.HistoryPoint{}).
		Where("date >= ? AND date < ?", start, end).
		Count(&count).Error
	return count > 0, translate(err)
}

func (r *historyRepo) Create(ctx context.Context, p *models.HistoryPoint) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *historyRepo) Save(ctx context.Context, p *models.HistoryPoint) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *historyRepo) Delete(ctx context.Context, id uint) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.HistoryPoint{}, id))
}

// Notifications

type notificationRepo struct{ db *gorm.DB }

func (r *notificationRepo) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, translate(err)
}

func (r *notificationRepo) ListActiveFor(ctx context.Context, email string) ([]models.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND (target_email = ? OR LOWER(TRIM(target_email)) = ?)",
			true, models.NotificationTargetAll, fund.NormalizeEmail(email)).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, translate(err)
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(n).Error)
}

func (r *notificationRepo) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("is_active", active)
	return deleted(res)
}

func (r *notificationRepo) Delete(ctx context.Context, id string) error {
	return deleted(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{}))
}

// Proofs

type proofRepo struct{ db *gorm.DB }

func (r *proofRepo) ListProofs(ctx context.Context) ([]models.Proof, error) {
	var rows []models.Proof
	err := r.db.WithContext(ctx).Order("upload_date DESC").Find(&rows).Error
	return rows, translate(err)
}

func (r *proofRepo) Create(ctx context.Context, p *models.Proof) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

// Dashboard metrics

type metricRepo struct{ db *gorm.DB }

func (r *metricRepo) ListMetrics(ctx context.Context) ([]models.DashboardMetric, error) {
	var rows []models.DashboardMetric
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, translate(err)
}

func (r *metricRepo) Upsert(ctx context.Context, name, value string) (bool, error) {
	db := r.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.DashboardMetric{}).Where("name = ?", name).Count(&existing).Error; err != nil {
		return false, translate(err)
	}

	metric := models.DashboardMetric{Name: name, Value: value, UpdatedAt: time.Now()}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&metric).Error
	if err != nil {
		return false, translate(err)
	}
	return existing == 0, nil
}
