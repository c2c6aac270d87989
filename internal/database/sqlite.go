package database

import (
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/elevatecapital/fundtracker/internal/models"
)

var DB *gorm.DB

// Open connects to the SQLite database at dsn, migrates the schema and runs
// the data migrations. It does not touch the package-level handle.
func Open(dsn, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(logLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Member{},
		&models.Contribution{},
		&models.Holding{},
		&models.HistoryPoint{},
		&models.DashboardMetric{},
		&models.Notification{},
		&models.Proof{},
	); err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Initialize opens the database and stores it as the process-wide handle.
func Initialize(dbPath, logLevel string) error {
	db, err := Open(dbPath, logLevel)
	if err != nil {
		return err
	}
	DB = db
	log.Info().Str("path", dbPath).Msg("database ready")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent", "":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
