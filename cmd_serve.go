package main

import (
	"github.com/spf13/cobra"

	"github.com/dgtlunion/konspekt/config"
	"github.com/dgtlunion/konspekt/server"
)

func newServeCmd(root *rootOpts) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			a, err := newApp(ctx, cfg, logger, appOpts{summarizer: true, intake: true, store: true})
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(server.Config{
				Addr:          cfg.Server.Addr(),
				WebhookSecret: cfg.Fireflies.WebhookSecret,
				AllowOrigin:   cfg.Server.AllowOrigin,
				MaxBodyBytes:  cfg.Server.MaxBodyBytes,
				Diagnostics:   cfg.Server.Diagnostics,
			}, a.svc, a.store, logger)
			return srv.Start(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config and PORT)")
	return cmd
}
