package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/streamgen/httpstream"
	"github.com/kbukum/streamgen/logger"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr     string
		maxConns int
		rateLim  int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generator streams over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("max-conns") {
				cfg.Server.MaxConns = maxConns
			}
			if cmd.Flags().Changed("rate") {
				cfg.Server.RateLimit = rateLim
			}
			if err := cfg.Server.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			metrics, shutdown, err := setupTelemetry(ctx, cfg)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			log := logger.GetGlobalLogger()
			handler := httpstream.NewHandler(cfg.Server,
				httpstream.WithServiceName(cfg.Name),
				httpstream.WithStreamOptions(cfg.Stream),
				httpstream.WithAdapterOptions(cfg.AdapterOptions()...),
				httpstream.WithMetrics(metrics),
				httpstream.WithLogger(log.WithComponent("httpstream")),
			)
			srv := httpstream.NewServer(cfg.Server, handler, log)
			if err := srv.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return srv.Stop(context.Background())
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	f.IntVar(&maxConns, "max-conns", 0, "maximum concurrent connections, 0 for unlimited")
	f.IntVar(&rateLim, "rate", 0, "per-response bytes/second, 0 for unlimited")
	return cmd
}
