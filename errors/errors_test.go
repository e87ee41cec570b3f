package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_InvalidArgument(t *testing.T) {
	err := InvalidArgument("chunk_ceiling", "must be at least 1")
	if err.Code != ErrCodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT, got %s", err.Code)
	}
	if err.Details["field"] != "chunk_ceiling" {
		t.Errorf("expected field=chunk_ceiling, got %v", err.Details["field"])
	}
	if !strings.Contains(err.Message, "must be at least 1") {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestAppError_InvalidArgument_NoField(t *testing.T) {
	err := InvalidArgument("", "bad")
	if _, ok := err.Details["field"]; ok {
		t.Error("expected no 'field' key in details when field is empty")
	}
}

func TestAppError_ProducerFailure(t *testing.T) {
	cause := fmt.Errorf("entropy source gone")
	err := ProducerFailure(cause)
	if err.Code != ErrCodeProducerFailure {
		t.Errorf("expected PRODUCER_FAILURE, got %s", err.Code)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable through errors.Is")
	}
	if err.Retryable {
		t.Error("producer failures must not be retryable")
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := StreamClosed()
	if got := err.Error(); got != "STREAM_CLOSED: The stream has been closed." {
		t.Errorf("unexpected format %q", got)
	}
	wrapped := Internal(fmt.Errorf("boom"))
	if !strings.Contains(wrapped.Error(), "(cause: boom)") {
		t.Errorf("expected cause in message, got %q", wrapped.Error())
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{Code: ErrCodeInternal}
	err.WithDetail("stream_id", "abc")
	if err.Details["stream_id"] != "abc" {
		t.Errorf("expected stream_id detail, got %v", err.Details)
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"invalid argument", InvalidArgument("x", "y"), ErrCodeInvalidArgument, http.StatusBadRequest},
		{"validation", Validation("x: bad"), ErrCodeInvalidArgument, http.StatusBadRequest},
		{"not found", NotFound("generator", "pcg"), ErrCodeNotFound, http.StatusNotFound},
		{"producer failure", ProducerFailure(nil), ErrCodeProducerFailure, http.StatusInternalServerError},
		{"stream closed", StreamClosed(), ErrCodeStreamClosed, http.StatusGone},
		{"canceled", Canceled(nil), ErrCodeCanceled, 499},
		{"internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
		})
	}
}

func TestCodeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("reading: %w", ProducerFailure(nil))
	if CodeOf(err) != ErrCodeProducerFailure {
		t.Errorf("expected PRODUCER_FAILURE, got %q", CodeOf(err))
	}
	if !Is(err, ErrCodeProducerFailure) {
		t.Error("expected Is to match wrapped code")
	}
	if CodeOf(stderrors.New("plain")) != "" {
		t.Error("expected empty code for plain error")
	}
}

func TestAppError_ToResponse_Success(t *testing.T) {
	resp := NotFound("digest", "md4").ToResponse()
	body, ok := resp["error"]
	if !ok {
		t.Fatal("expected error envelope")
	}
	if body.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", body.Code)
	}
	if body.Details["name"] != "md4" {
		t.Errorf("expected name=md4, got %v", body.Details["name"])
	}
}

func TestAppError_ImplementsErrorInterface(t *testing.T) {
	var err error = StreamClosed()
	if _, ok := AsAppError(err); !ok {
		t.Error("expected AsAppError to succeed")
	}
}
