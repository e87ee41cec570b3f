package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Construction errors
const (
	// ErrCodeInvalidArgument indicates malformed construction input (nil producer,
	// nil sink, non-positive chunk ceiling, bad configuration).
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates a named resource (generator, digest algorithm) is unknown.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Stream errors
const (
	// ErrCodeProducerFailure indicates the byte iterator raised a fault during a pull.
	ErrCodeProducerFailure ErrorCode = "PRODUCER_FAILURE"
	// ErrCodeStreamClosed indicates the stream was closed before it was exhausted.
	ErrCodeStreamClosed ErrorCode = "STREAM_CLOSED"
	// ErrCodeCanceled indicates the consumer's context was canceled mid-stream.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// None of the stream codes are retryable: a failed producer is never resumed,
// the caller decides whether to build a fresh adapter.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeInvalidArgument: false,
	ErrCodeProducerFailure: false,
	ErrCodeStreamClosed:    false,
	ErrCodeCanceled:        false,
	ErrCodeInternal:        false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
