package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/ulikunitz/xz"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/streamgen/adapter"
	"github.com/kbukum/streamgen/config"
	"github.com/kbukum/streamgen/digest"
	"github.com/kbukum/streamgen/errors"
	"github.com/kbukum/streamgen/generator"
	"github.com/kbukum/streamgen/logger"
	"github.com/kbukum/streamgen/observability"
	"github.com/kbukum/streamgen/stream"
)

type generateOptions struct {
	generator string
	seed      uint64
	bytes     int64
	out       string
	chunk     int
	compress  string
	digest    string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the first --bytes bytes of a generator to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			o.applyConfig(cmd, cfg)
			return o.run(cmd.Context(), cmd, cfg)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.generator, "generator", "g", "", "generator name (default: generator.name)")
	f.Uint64Var(&o.seed, "seed", 0, "generator seed, 0 for the generator default")
	f.Int64VarP(&o.bytes, "bytes", "n", 1945, "number of bytes to write")
	f.StringVarP(&o.out, "out", "o", "-", "output file, - for stdout")
	f.IntVar(&o.chunk, "chunk", 0, "adapter chunk ceiling (default: adapter.chunk_ceiling, else stream.high_water_mark)")
	f.StringVar(&o.compress, "compress", "none", "output compression: none or xz")
	f.StringVar(&o.digest, "digest", "", "print the digest of the uncompressed bytes with this algorithm")
	return cmd
}

func (o *generateOptions) applyConfig(cmd *cobra.Command, cfg *config.Config) {
	if o.generator == "" {
		o.generator = cfg.Generator.Name
	}
	if !cmd.Flags().Changed("seed") {
		o.seed = cfg.Generator.Seed
	}
}

func (o *generateOptions) run(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if o.bytes < 1 {
		return errors.InvalidArgument("bytes", "must be at least 1")
	}
	if o.compress != "none" && o.compress != "xz" {
		return errors.InvalidArgument("compress", "must be one of: none xz")
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

	op := observability.NewOperation("generate", o.generator, metrics)
	ctx, span := op.Start(ctx, observability.SpanGenerate,
		attribute.Int64(observability.AttrBytes, o.bytes),
		attribute.Int64(observability.AttrSeed, int64(o.seed)),
	)
	var sum string
	defer func() { op.End(ctx, span, err, attribute.String(observability.AttrDigest, sum)) }()

	adapterOpts := append(cfg.AdapterOptions(), adapter.WithObserver(metrics.Observer(ctx, o.generator)))
	if o.chunk != 0 {
		adapterOpts = append(adapterOpts, adapter.WithChunkCeiling(o.chunk))
	}
	so := cfg.Stream
	so.Limit = o.bytes
	r, err := stream.NewReadable(factory, so, adapterOpts...)
	if err != nil {
		return err
	}

	dst, closeDst, err := openOutput(o.out, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeDst(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var w io.Writer = dst
	var xzw *xz.Writer
	if o.compress == "xz" {
		xzw, err = xz.WriterConfig{CheckSum: xz.SHA256}.NewWriter(dst)
		if err != nil {
			return errors.Internal(err)
		}
		w = xzw
	}
	var ht *digest.HashThrough
	if o.digest != "" {
		if ht, err = digest.NewHashThrough(digest.Algorithm(o.digest), w); err != nil {
			return err
		}
		w = ht
	}

	n, err := stream.Copy(ctx, w, r)
	if err != nil {
		return err
	}
	if xzw != nil {
		if err := xzw.Close(); err != nil {
			return errors.Internal(err)
		}
	}
	if n != o.bytes {
		return errors.New(errors.ErrCodeInternal, "The producer ended before the requested length.", http.StatusInternalServerError).
			WithDetail("expected_bytes", o.bytes).
			WithDetail("written_bytes", n)
	}

	fields := logger.Fields(
		logger.FieldGenerator, o.generator,
		logger.FieldBytes, n,
		logger.FieldChunks, r.Adapter().Chunks(),
		logger.FieldStreamID, r.Adapter().ID(),
		"out", o.out,
	)
	if ht != nil {
		sum = ht.Sum()
		fields[logger.FieldDigest] = sum
		fmt.Fprintf(cmd.ErrOrStderr(), "%s  %s\n", sum, o.digest)
	}
	logger.Info("generated", fields)
	return nil
}

// openOutput returns a buffered writer for path ("-" is stdout) and a func
// that flushes and closes it.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" || path == "" {
		bw := bufio.NewWriter(stdout)
		return bw, bw.Flush, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.InvalidArgument("out", err.Error()).WithCause(err)
	}
	bw := bufio.NewWriter(f)
	return bw, func() error {
		if err := bw.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}
