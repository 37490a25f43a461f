package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed remote call.
type ErrorKind int

const (
	// NetworkFailure covers transport faults and unreadable responses.
	NetworkFailure ErrorKind = iota + 1
	// ServerRejection is a non-success status, usually with a detail message.
	ServerRejection
)

// String returns a log-friendly name for k.
func (k ErrorKind) String() string {
	switch k {
	case NetworkFailure:
		return "network_failure"
	case ServerRejection:
		return "server_rejection"
	default:
		return "unknown"
	}
}

// Error is returned by every Client operation that does not succeed.
type Error struct {
	Kind   ErrorKind
	Op     string
	Status int    // HTTP status for ServerRejection
	Detail string // server-provided detail, may be empty
	Err    error  // underlying cause for NetworkFailure
}

// Error implements error.
func (e *Error) Error() string {
	switch {
	case e.Kind == ServerRejection && e.Detail != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Detail)
	case e.Kind == ServerRejection:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + e.Kind.String()
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNetworkFailure reports whether err is a transport-level failure.
func IsNetworkFailure(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == NetworkFailure
}

// Detail returns the server-provided detail of a rejection, if any.
func Detail(err error) (string, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == ServerRejection && apiErr.Detail != "" {
		return apiErr.Detail, true
	}
	return "", false
}

// Message picks the user-facing text for a failed call: the server detail
// when present, networkText for transport failures, and rejectedText for
// rejections without a detail.
func Message(err error, rejectedText, networkText string) string {
	if detail, ok := Detail(err); ok {
		return detail
	}
	if IsNetworkFailure(err) {
		return networkText
	}
	return rejectedText
}
