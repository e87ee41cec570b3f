package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/streamgen/config"
	"github.com/kbukum/streamgen/logger"
	"github.com/kbukum/streamgen/observability"
	"github.com/kbukum/streamgen/version"
)

type rootOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "streamgen",
		Short:         "Stream deterministic generator bytes through a backpressured adapter",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: search ./cmd/streamgen, ./config, .)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".env file to load")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newVerifyCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load reads the configuration and initialises the global logger.
func (o *rootOptions) load() (*config.Config, error) {
	var loadOpts []config.LoaderOption
	if o.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(o.envFile))
	}
	cfg, err := config.Load(config.DefaultServiceName, loadOpts...)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
		if err := cfg.Logging.Validate(); err != nil {
			return nil, err
		}
	}
	logger.Init(cfg.Logging, cfg.Name)
	return cfg, nil
}

// setupTelemetry returns stream metrics and a shutdown func. With export
// disabled the metrics record into the global no-op provider.
func setupTelemetry(ctx context.Context, cfg *config.Config) (*observability.Metrics, func(context.Context), error) {
	shutdown := func(context.Context) {}
	if cfg.Observability.Enabled {
		v := version.Get().Version
		tp, err := observability.InitTracer(ctx, cfg.TracerConfig(v))
		if err != nil {
			return nil, nil, err
		}
		mp, err := observability.InitMeter(ctx, cfg.MeterConfig(v))
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, nil, err
		}
		shutdown = func(ctx context.Context) {
			if err := mp.Shutdown(ctx); err != nil {
				logger.Warn("meter shutdown failed", logger.ErrorFields("shutdown", err))
			}
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("tracer shutdown failed", logger.ErrorFields("shutdown", err))
			}
		}
	}
	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		shutdown(ctx)
		return nil, nil, err
	}
	return metrics, shutdown, nil
}
