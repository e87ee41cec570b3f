package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// InvalidArgument creates an error for bad construction input.
func InvalidArgument(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("Invalid argument: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates an INVALID_ARGUMENT error from a pre-built message.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidArgument, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// NotFound creates an error for an unknown named resource.
func NotFound(resource, name string) *AppError {
	details := map[string]any{"resource": resource}
	if name != "" {
		details["name"] = name
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("Unknown %s %q.", resource, name),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// ProducerFailure wraps a fault raised by a byte iterator during a pull.
func ProducerFailure(cause error) *AppError {
	return &AppError{
		Code: ErrCodeProducerFailure, Message: "The byte producer failed.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// StreamClosed creates an error for reads on a closed stream.
func StreamClosed() *AppError {
	return &AppError{
		Code: ErrCodeStreamClosed, Message: "The stream has been closed.",
		HTTPStatus: http.StatusGone, Retryable: false,
	}
}

// Canceled wraps a context cancellation observed while streaming.
func Canceled(cause error) *AppError {
	return &AppError{
		Code: ErrCodeCanceled, Message: "The stream was canceled.",
		HTTPStatus: 499, Retryable: false, Cause: cause,
	}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ErrorBody is the JSON error body returned by the network sink.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError into its JSON envelope.
func (e *AppError) ToResponse() map[string]ErrorBody {
	return map[string]ErrorBody{
		"error": {
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}
