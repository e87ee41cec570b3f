package config

import (
	"fmt"
	"time"

	"github.com/kbukum/streamgen/adapter"
	"github.com/kbukum/streamgen/digest"
	"github.com/kbukum/streamgen/generator"
	"github.com/kbukum/streamgen/httpstream"
	"github.com/kbukum/streamgen/observability"
	"github.com/kbukum/streamgen/stream"
)

// DefaultServiceName is the service name used for config lookup and logs.
const DefaultServiceName = "streamgen"

// Config is the complete streamgen configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Adapter       adapter.Config      `yaml:"adapter" mapstructure:"adapter"`
	Stream        stream.Options      `yaml:"stream" mapstructure:"stream"`
	Generator     GeneratorConfig     `yaml:"generator" mapstructure:"generator"`
	Digest        DigestConfig        `yaml:"digest" mapstructure:"digest"`
	Server        httpstream.Config   `yaml:"server" mapstructure:"server"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// GeneratorConfig selects the default byte generator.
type GeneratorConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	Seed uint64 `yaml:"seed" mapstructure:"seed"` // 0 = the generator's default seed
}

// DigestConfig selects the default digest algorithm.
type DigestConfig struct {
	Algorithm string `yaml:"algorithm" mapstructure:"algorithm"`
}

// ObservabilityConfig configures OTLP export. Disabled by default.
type ObservabilityConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults fills unset fields in every section. Adapter.ChunkCeiling is
// left at zero so streams inherit Stream.HighWaterMark.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Stream.ApplyDefaults()
	if c.Generator.Name == "" {
		c.Generator.Name = "mt19937"
	}
	if c.Digest.Algorithm == "" {
		c.Digest.Algorithm = string(digest.Default)
	}
	c.Server.ApplyDefaults()

	o := &c.Observability
	if o.Endpoint == "" {
		o.Endpoint = "localhost:4318"
	}
	if o.SampleRate == 0 {
		o.SampleRate = 1.0
	}
	if o.Interval == 0 {
		o.Interval = 15 * time.Second
	}
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.Adapter.ChunkCeiling != 0 {
		if err := c.Adapter.Validate(); err != nil {
			return fmt.Errorf("config.adapter: %w", err)
		}
	}
	if err := c.Stream.Validate(); err != nil {
		return fmt.Errorf("config.stream: %w", err)
	}
	if _, ok := generator.Lookup(c.Generator.Name); !ok {
		return fmt.Errorf("config.generator.name must be one of %v (got: %s)", generator.Names(), c.Generator.Name)
	}
	if _, err := digest.NewHash(digest.Algorithm(c.Digest.Algorithm)); err != nil {
		return fmt.Errorf("config.digest: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if r := c.Observability.SampleRate; r < 0 || r > 1 {
		return fmt.Errorf("config.observability.sample_rate must be between 0 and 1 (got: %v)", r)
	}
	return nil
}

// AdapterOptions returns the adapter options implied by the configuration.
func (c *Config) AdapterOptions() []adapter.Option {
	if c.Adapter.ChunkCeiling == 0 {
		return nil
	}
	return []adapter.Option{adapter.WithConfig(c.Adapter)}
}

// TracerConfig returns the tracer settings for this service.
func (c *Config) TracerConfig(serviceVersion string) observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    c.Name,
		ServiceVersion: serviceVersion,
		Environment:    c.Environment,
		Endpoint:       c.Observability.Endpoint,
		Insecure:       c.Observability.Insecure,
		SampleRate:     c.Observability.SampleRate,
	}
}

// MeterConfig returns the meter settings for this service.
func (c *Config) MeterConfig(serviceVersion string) observability.MeterConfig {
	return observability.MeterConfig{
		ServiceName:    c.Name,
		ServiceVersion: serviceVersion,
		Environment:    c.Environment,
		Endpoint:       c.Observability.Endpoint,
		Insecure:       c.Observability.Insecure,
		Interval:       c.Observability.Interval,
	}
}

// Load reads config.yml and .env for serviceName into a Config, then applies
// defaults and validates it.
func Load(serviceName string, opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
