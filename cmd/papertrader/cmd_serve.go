package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/api"
	"github.com/rustyeddy/papertrader/engine"
)

// newServeCmd serves the HTTP facade for one account session, with the
// periodic price refresher running alongside when enabled.
func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the trading API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			s, err := buildSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.close()

			if cfg.Refresh.Enabled {
				refresher, err := engine.NewRefresher(s.engine, cfg.Refresh.Spec)
				if err != nil {
					return err
				}
				refresher.Start()
				defer refresher.Stop()
				log.Printf("price refresher running (%s)", cfg.Refresh.Spec)
			}

			srv := api.NewServer(s.engine)
			log.Printf("account %s listening on %s", s.engine.AccountID(), cfg.Server.Addr)
			return srv.Start(cfg.Server.Addr)
		},
	}
}
