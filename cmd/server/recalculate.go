package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRecalculateCmd(opts *rootOptions) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Recompute the stored dashboard metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if refresh && a.services.Quotes != nil {
				updated, err := a.services.Quotes.RunOnce(ctx)
				if err != nil {
					return err
				}
				log.Info().Int("updated", updated).Msg("live quotes refreshed")
			}

			resp, err := a.services.Fund.Recalculate(ctx)
			if err != nil {
				return err
			}
			log.Info().Msg(resp.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh-quotes", false, "refresh live quotes before recalculating")
	return cmd
}
