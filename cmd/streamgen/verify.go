package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/streamgen/adapter"
	"github.com/kbukum/streamgen/config"
	"github.com/kbukum/streamgen/digest"
	"github.com/kbukum/streamgen/errors"
	"github.com/kbukum/streamgen/generator"
	"github.com/kbukum/streamgen/logger"
	"github.com/kbukum/streamgen/observability"
)

type verifyOptions struct {
	generator string
	seed      uint64
	bytes     int64
	digest    string
	expect    string
}

func newVerifyCmd(root *rootOptions) *cobra.Command {
	o := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that two independent streams of a generator hash identically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if o.generator == "" {
				o.generator = cfg.Generator.Name
			}
			if !cmd.Flags().Changed("seed") {
				o.seed = cfg.Generator.Seed
			}
			if o.digest == "" {
				o.digest = cfg.Digest.Algorithm
			}
			return o.run(cmd, cfg)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.generator, "generator", "g", "", "generator name (default: generator.name)")
	f.Uint64Var(&o.seed, "seed", 0, "generator seed, 0 for the generator default")
	f.Int64VarP(&o.bytes, "bytes", "n", 100000, "number of bytes to hash per stream")
	f.StringVar(&o.digest, "digest", "", "digest algorithm (default: digest.algorithm)")
	f.StringVar(&o.expect, "expect", "", "expected hex digest; fail on mismatch")
	return cmd
}

func (o *verifyOptions) run(cmd *cobra.Command, cfg *config.Config) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	factory, err := generator.New(o.generator, o.seed)
	if err != nil {
		return err
	}

	metrics, shutdown, err := setupTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	op := observability.NewOperation("verify", o.generator, metrics)
	ctx, span := op.Start(ctx, observability.SpanVerify, attribute.Int64(observability.AttrBytes, o.bytes))
	defer func() { op.End(ctx, span, err) }()

	opts := append(cfg.AdapterOptions(), adapter.WithObserver(metrics.Observer(ctx, o.generator)))
	res, err := digest.Reproducible(ctx, factory, o.bytes, digest.Algorithm(o.digest), opts...)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(res)
	if err != nil {
		return errors.Internal(err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))

	fields := logger.Fields(logger.FieldGenerator, o.generator, logger.FieldBytes, o.bytes, logger.FieldDigest, res.First)
	if !res.Match {
		logger.Error("streams diverged", fields)
		return errors.New(errors.ErrCodeInternal, "Two streams of the same generator produced different bytes.", http.StatusInternalServerError).
			WithDetail("first", res.First).
			WithDetail("second", res.Second)
	}
	if o.expect != "" && o.expect != res.First {
		logger.Error("digest mismatch", fields)
		return errors.New(errors.ErrCodeInternal, "The stream digest does not match the expected value.", http.StatusInternalServerError).
			WithDetail("expected", o.expect).
			WithDetail("actual", res.First)
	}
	logger.Info("stream reproducible", fields)
	return nil
}
