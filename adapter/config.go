package adapter

import (
	"github.com/kbukum/streamgen/validation"
)

// DefaultChunkCeiling bounds how many bytes are pulled before one push attempt.
const DefaultChunkCeiling = 16384

// Config contains adapter configuration.
type Config struct {
	// ChunkCeiling is the upper bound on bytes pulled per offered chunk.
	ChunkCeiling int `yaml:"chunk_ceiling" mapstructure:"chunk_ceiling" validate:"gte=1"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.ChunkCeiling == 0 {
		c.ChunkCeiling = DefaultChunkCeiling
	}
}

// Validate validates adapter configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
