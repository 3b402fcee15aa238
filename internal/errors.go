package internal

import (
	"errors"
	"fmt"
)

// ErrNoSourceSelected is returned by operations that need an active source
// when none has been selected. No request is sent in that case.
var ErrNoSourceSelected = errors.New("no source selected: run `chatlog-viewer sources use <id>` first")

// TransportError represents a failed call to the upstream service: dial
// errors, timeouts and non-2xx responses
type TransportError struct {
	Method   string
	Endpoint string
	Status   int // 0 when no response was received
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("transport error: %s %s: HTTP %d: %v", e.Method, e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StateError represents errors reading or writing persisted viewer state
type StateError struct {
	Op  string // "get", "set", "delete", "open"
	Key string
	Err error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
