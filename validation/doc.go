// Package validation validates configuration and request structs using
// go-playground/validator struct tags.
//
//	type Options struct {
//	    ChunkCeiling int `mapstructure:"chunk_ceiling" validate:"gte=1"`
//	}
//	err := validation.Validate(opts)
//
// Failures are returned as INVALID_ARGUMENT AppErrors whose details list
// the offending fields by their mapstructure name.
package validation
