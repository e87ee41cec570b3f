package adapter

import (
	"github.com/kbukum/streamgen/logger"
)

type options struct {
	cfg      Config
	observer Observer
	log      *logger.Logger
	id       string
}

// Option configures an Adapter.
type Option func(*options)

// WithConfig replaces the adapter configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithChunkCeiling sets the per-chunk byte ceiling.
func WithChunkCeiling(n int) Option {
	return func(o *options) { o.cfg.ChunkCeiling = n }
}

// WithObserver attaches lifecycle hooks (metrics, tests).
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger sets the logger. Defaults to the "adapter" component logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithID sets the stream identifier used in logs and error details.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}
