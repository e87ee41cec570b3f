package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/streamgen/errors"
)

type streamOptions struct {
	ChunkCeiling int    `mapstructure:"chunk_ceiling" validate:"gte=1"`
	Generator    string `mapstructure:"generator" validate:"required,oneof=counter mt19937"`
	Nested       nested `mapstructure:"nested"`
}

type nested struct {
	HighWaterMark int `mapstructure:"high_water_mark" validate:"gte=1,lte=1048576"`
}

func TestValidate_Valid(t *testing.T) {
	opts := streamOptions{ChunkCeiling: 4, Generator: "counter", Nested: nested{HighWaterMark: 16}}
	if err := Validate(opts); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_ReportsMapstructureNames(t *testing.T) {
	opts := streamOptions{ChunkCeiling: 0, Generator: "pcg", Nested: nested{HighWaterMark: 0}}
	err := Validate(opts)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT, got %v", err)
	}

	msg := err.Error()
	for _, want := range []string{
		"chunk_ceiling: must be at least 1",
		"generator: must be one of: counter mt19937",
		"nested.high_water_mark: must be at least 1",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}

	appErr, _ := errors.AsAppError(err)
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %v", appErr.Details["fields"])
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"ChunkCeiling": "chunk_ceiling",
		"Seed":         "seed",
		"a":            "a",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
