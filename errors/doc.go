// Package errors provides the structured error type shared by every streamgen
// package. Errors carry a machine-readable code, an HTTP status used by the
// network sink, optional details and an underlying cause.
package errors
