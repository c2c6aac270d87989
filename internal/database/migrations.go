package database

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elevatecapital/fundtracker/internal/models"
)

// RunMigrations runs data migrations after schema changes. Each step is
// safe to run repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := normalizeEmails(db); err != nil {
		return err
	}
	return seedDashboardMetrics(db)
}

// normalizeEmails lowercases and trims stored emails so lookups can use
// plain equality. Rows imported from spreadsheets often carry stray case.
func normalizeEmails(db *gorm.DB) error {
	for _, stmt := range []struct{ table, column string }{
		{"users", "email"},
		{"members", "email"},
		{"contributions", "member_email"},
	} {
		res := db.Exec(`UPDATE ` + stmt.table + ` SET ` + stmt.column + ` = LOWER(TRIM(` + stmt.column + `)) WHERE ` +
			stmt.column + ` <> LOWER(TRIM(` + stmt.column + `))`)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Info().Str("table", stmt.table).Int64("rows", res.RowsAffected).Msg("normalized emails")
		}
	}

	res := db.Exec(`UPDATE notifications SET target_email = LOWER(TRIM(target_email))
		WHERE target_email <> ? AND target_email <> LOWER(TRIM(target_email))`, models.NotificationTargetAll)
	return res.Error
}

// seedDashboardMetrics creates the recalculated metrics with zero values
// so the dashboard has something to show before the first recalculation.
func seedDashboardMetrics(db *gorm.DB) error {
	now := time.Now()
	seed := []models.DashboardMetric{
		{Name: models.MetricInvestedInStocks, Value: "0", UpdatedAt: now},
		{Name: models.MetricTotalFundValue, Value: "0", UpdatedAt: now},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error
}
