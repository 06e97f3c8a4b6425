// Package service holds the auth flows and search token issuance. Each
// flow step is a function from the verified claims of the previous step
// (plus request input) to the next token; no session state is kept.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. Client kinds map to 400 with their
// message; infrastructure kinds map to 500 with a sanitized message.
type Kind string

const (
	ValidationError Kind = "ValidationError"
	AuthError       Kind = "AuthError"
	ConflictError   Kind = "ConflictError"
	NotFoundError   Kind = "NotFoundError"
	StorageError    Kind = "StorageError"
	MailError       Kind = "MailError"
)

// Internal reports whether k is an infrastructure failure.
func (k Kind) Internal() bool {
	return k == StorageError || k == MailError
}

// Error is returned by every service operation.
type Error struct {
	Kind    Kind
	Message string // safe to show to the client
	Op      string // operation that failed, for logs
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a service error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a service error of kind k.
func IsKind(err error, k Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == k
}

func invalid(msg string) error { return &Error{Kind: ValidationError, Message: msg} }
func authFailure(msg string, err error) error {
	return &Error{Kind: AuthError, Message: msg, Err: err}
}
func conflict(msg string) error { return &Error{Kind: ConflictError, Message: msg} }
func notFound(msg string) error { return &Error{Kind: NotFoundError, Message: msg} }

func storage(op string, err error) error {
	return &Error{Kind: StorageError, Message: MsgInternal, Op: op, Err: err}
}

func mailFailure(op string, err error) error {
	return &Error{Kind: MailError, Message: MsgInternal, Op: op, Err: err}
}
