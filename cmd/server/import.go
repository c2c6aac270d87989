package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elevatecapital/fundtracker/internal/importer"
	"github.com/elevatecapital/fundtracker/internal/store"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import (contributions|holdings) FILE",
		Short: "Load contributions or holdings from a CSV export",
		Long: "Load contributions or holdings from a CSV export.\n\n" +
			"Rows are written one at a time, not in a transaction: if a row fails, the rows\n" +
			"before it stay stored and the dashboard metrics are recalculated for them.",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"contributions", "holdings"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			recalc := func(ctx context.Context) error {
				_, err := a.services.Fund.Recalculate(ctx)
				return err
			}

			res, err := runImport(cmd.Context(), args[0], f, dryRun, a.repos, recalc)
			log.Info().Int("added", res.added).Int("skipped", res.skipped).Bool("dry_run", dryRun).Msg("import finished")
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate without writing")
	return cmd
}

type importResult struct {
	added, skipped int
}

// runImport parses r and stores its rows. Whenever at least one row was
// stored, recalc runs, even when a later row failed.
func runImport(ctx context.Context, kind string, r io.Reader, dryRun bool, repos *store.Repositories, recalc func(context.Context) error) (importResult, error) {
	var (
		res importResult
		err error
	)
	switch kind {
	case "contributions":
		res.added, err = importContributions(ctx, repos.Contributions, r, dryRun)
	case "holdings":
		res.added, res.skipped, err = importHoldings(ctx, repos.Holdings, r, dryRun)
	default:
		return res, fmt.Errorf("unknown import kind %q", kind)
	}

	if dryRun || res.added == 0 {
		return res, err
	}
	if recalcErr := recalc(ctx); recalcErr != nil {
		return res, errors.Join(err, fmt.Errorf("recalculate metrics: %w", recalcErr))
	}
	return res, err
}

func importContributions(ctx context.Context, repo store.ContributionRepository, r io.Reader, dryRun bool) (int, error) {
	rows, err := importer.Contributions(r)
	if err != nil {
		return 0, err
	}
	if dryRun {
		return len(rows), nil
	}
	for i := range rows {
		if err := repo.Create(ctx, &rows[i]); err != nil {
			return i, fmt.Errorf("store contribution for %s: %w", rows[i].MemberEmail, err)
		}
	}
	return len(rows), nil
}

// importHoldings skips holdings whose stock name already exists.
func importHoldings(ctx context.Context, repo store.HoldingRepository, r io.Reader, dryRun bool) (added, skipped int, err error) {
	rows, err := importer.Holdings(r)
	if err != nil {
		return 0, 0, err
	}
	if dryRun {
		return len(rows), 0, nil
	}
	for i := range rows {
		err := repo.Create(ctx, &rows[i])
		if errors.Is(err, store.ErrDuplicate) {
			log.Warn().Str("stock", rows[i].StockName).Msg("holding already exists, skipping")
			skipped++
			continue
		}
		if err != nil {
			return added, skipped, fmt.Errorf("store holding %s: %w", rows[i].StockName, err)
		}
		added++
	}
	return added, skipped, nil
}
