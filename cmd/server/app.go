package main

import (
	"fmt"

	"github.com/elevatecapital/fundtracker/internal/api/handlers"
	"github.com/elevatecapital/fundtracker/internal/config"
	"github.com/elevatecapital/fundtracker/internal/database"
	"github.com/elevatecapital/fundtracker/internal/fund"
	"github.com/elevatecapital/fundtracker/internal/services"
	"github.com/elevatecapital/fundtracker/internal/store"
)

// app is the wired set of services shared by every command.
type app struct {
	repos    *store.Repositories
	storage  *services.FileStorage
	services handlers.Services
}

func newApp(cfg *config.Config) (*app, error) {
	if err := database.Initialize(cfg.Database.Path, cfg.Database.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	repos := store.New(database.GetDB())

	storage, err := services.NewFileStorage(cfg.Proofs.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize proof storage: %w", err)
	}

	auth := services.NewAuthService(repos, cfg.Admin.Emails)
	formatter := fund.NewFormatter(cfg.Display.Currency, cfg.Display.AmountFraction)
	fundSvc := services.NewFundService(repos, auth, formatter, cfg.Display.PercentFraction)

	a := &app{
		repos:   repos,
		storage: storage,
		services: handlers.Services{
			Auth:          auth,
			Fund:          fundSvc,
			Portfolio:     services.NewPortfolioService(repos),
			Notifications: services.NewNotificationService(repos),
			Proofs:        services.NewProofService(repos, storage, int64(cfg.Proofs.MaxSizeByte)),
			Snapshots:     services.NewSnapshotService(fundSvc, repos.History, cfg.Snapshots.Hour, cfg.Snapshots.CheckInterval),
		},
	}

	if cfg.Quotes.Enabled {
		q := cfg.Quotes
		client := services.NewHTTPQuoteClient(q.BaseURL, q.APIKey, q.RequestsPerMin, q.Timeout)
		quotes := services.NewQuoteService(client, repos.Holdings, q.CacheSize, q.CacheTTL)
		a.services.Quotes = services.NewQuoteWorker(quotes, fundSvc, q.RefreshEvery)
	}
	return a, nil
}
