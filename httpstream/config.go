package httpstream

import (
	"github.com/kbukum/streamgen/validation"
)

// Config holds HTTP sink configuration.
type Config struct {
	Addr         string `yaml:"addr" mapstructure:"addr" validate:"required"`
	MaxConns     int    `yaml:"max_conns" mapstructure:"max_conns" validate:"gte=0"`         // 0 = unlimited
	RateLimit    int    `yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`       // bytes/second per response, 0 = unlimited
	MaxBytes     int64  `yaml:"max_bytes" mapstructure:"max_bytes" validate:"gte=1"`         // cap on ?n=
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"` // seconds, 0 = none
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gte=0"`   // seconds
}

// DefaultMaxBytes caps a single response at 64 MiB.
const DefaultMaxBytes = 64 << 20

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
