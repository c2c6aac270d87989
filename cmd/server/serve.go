package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elevatecapital/fundtracker/internal/api"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	cfg := opts.cfg
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	// Bring stored metrics in line with the records before serving.
	if _, err := a.services.Fund.Recalculate(ctx); err != nil {
		log.Warn().Err(err).Msg("initial metric recalculation failed")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if worker := a.services.Quotes; worker != nil {
		// Start quote worker in background with panic recovery
		go func() {
			for {
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Error().Interface("panic", r).Msg("quote worker panicked, restarting in 30 seconds")
						}
					}()
					worker.Start(ctx)
				}()

				select {
				case <-ctx.Done():
					return
				case <-time.After(30 * time.Second):
					log.Info().Msg("quote worker restarting after panic recovery")
				}
			}
		}()
	} else {
		log.Info().Msg("live quotes disabled")
	}

	if cfg.Snapshots.Enabled {
		go a.services.Snapshots.Start(ctx)
	}

	if !cfg.Log.Pretty {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(cfg, a.services, a.storage.Dir())

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}
	log.Info().Msg("server exited")
	return nil
}
