package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by remote errors for missing tasks.
	ErrNotFound = errors.New("not found")

	// ErrTimeout is matched by remote errors caused by the client timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrUnauthorized is matched by remote errors for rejected credentials.
	ErrUnauthorized = errors.New("token expired or revoked (run: tasksync login)")
)

// ValidationError is a client-side input error. It is raised before any
// remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RemoteError is a failed call to the remote task service, including
// transport failures and timeouts.
type RemoteError struct {
	// Op names the failed operation, e.g. "list tasks".
	Op string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Message is the most specific message the remote side returned.
	Message string

	// Err is the underlying cause.
	Err error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, msg, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
