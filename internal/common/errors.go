// Package common defines shared constants and sentinel errors used across
// the vault server and client. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ReasonError carries a human-readable reason for one of the sentinel
// errors above. Error returns only the reason, so it can be shown to the
// caller as is.
type ReasonError struct {
	Kind   error
	Reason string
}

func (e *ReasonError) Error() string { return e.Reason }

func (e *ReasonError) Unwrap() error { return e.Kind }

// WithReason wraps kind so that errors.Is(err, kind) holds and err.Error()
// returns reason.
func WithReason(kind error, reason string) error {
	return &ReasonError{Kind: kind, Reason: reason}
}

// Reason returns the human-readable reason attached to err, or fallback if
// err carries none.
func Reason(err error, fallback string) string {
	var re *ReasonError
	if errors.As(err, &re) {
		return re.Reason
	}
	return fallback
}
