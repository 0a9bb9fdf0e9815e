package export

import (
	"errors"
	"fmt"
)

// ErrExportInFlight is returned when an export is requested while another
// job is still running on the same controller.
var ErrExportInFlight = errors.New("an export is already in progress")

// ValidationError reports invalid filter input. It is raised locally,
// before any network call, and is never retried.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid export request: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// NetworkError is a failed or non-2xx upstream request. Retryable.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StreamError is a response body read that failed mid-stream. The attempt
// it belongs to is treated as failed; the next retry starts a fresh
// request rather than resuming.
type StreamError struct {
	BytesReceived int64
	Err           error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream interrupted after %d bytes: %v", e.BytesReceived, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// ExhaustedRetriesError wraps the last underlying error once every retry
// attempt has failed.
type ExhaustedRetriesError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("export failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedRetriesError) Unwrap() error { return e.Err }

// userMessage extracts the human-readable message shown on terminal
// failure, falling back to a generic string when the error is silent.
func userMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "unknown export error"
	}
	return err.Error()
}
