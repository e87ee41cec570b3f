package stream

import (
	"github.com/kbukum/streamgen/validation"
)

// DefaultHighWaterMark is the queued-bytes threshold used when none is set.
const DefaultHighWaterMark = 16384

// Options are the stream-level settings passed through alongside the adapter
// configuration. The adapter never reads them.
type Options struct {
	// HighWaterMark is the number of queued bytes at which the stream reports
	// saturation. When the adapter's chunk ceiling is unset it inherits this value.
	HighWaterMark int `yaml:"high_water_mark" mapstructure:"high_water_mark" validate:"gte=1"`
	// Limit caps the total bytes the stream delivers before closing the adapter.
	// Zero means unlimited.
	Limit int64 `yaml:"limit" mapstructure:"limit" validate:"gte=0"`
}

// ApplyDefaults fills unset fields.
func (o *Options) ApplyDefaults() {
	if o.HighWaterMark == 0 {
		o.HighWaterMark = DefaultHighWaterMark
	}
}

// Validate validates stream options.
func (o *Options) Validate() error {
	return validation.Validate(o)
}
