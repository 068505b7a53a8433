package apperror

import (
	"context"
	"errors"
)

// Kind classifies a failure so the transport layer can choose a status code
// without inspecting driver-specific error shapes.
type Kind int

const (
	Internal Kind = iota
	InvalidContent
	NotFound
	Forbidden
	Conflict
	InvalidCredentials
	MissingCredential
	MalformedCredential
	InvalidToken
	ExpiredToken
	UnknownSubject
	Unavailable
	Timeout
)

var kindNames = map[Kind]string{
	Internal:            "internal",
	InvalidContent:      "invalid_content",
	NotFound:            "not_found",
	Forbidden:           "forbidden",
	Conflict:            "conflict",
	InvalidCredentials:  "invalid_credentials",
	MissingCredential:   "missing_credential",
	MalformedCredential: "malformed_credential",
	InvalidToken:        "invalid_token",
	ExpiredToken:        "expired_token",
	UnknownSubject:      "unknown_subject",
	Unavailable:         "unavailable",
	Timeout:             "timeout",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsCredential reports whether k is one of the authentication failure kinds.
func (k Kind) IsCredential() bool {
	switch k {
	case MissingCredential, MalformedCredential, InvalidToken, ExpiredToken, UnknownSubject, InvalidCredentials:
		return true
	}
	return false
}

// Error is a classified failure. Message is safe to show to API clients;
// Err carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err. Context deadline and cancellation errors are
// mapped to Timeout and Unavailable; anything unclassified is Internal.
func KindOf(err error) Kind {
	if err == nil {
		return Internal
	}
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Kind == Internal && ae.Err != nil {
			if k := contextKind(ae.Err); k != Internal {
				return k
			}
		}
		return ae.Kind
	}
	return contextKind(err)
}

func contextKind(err error) Kind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.Is(err, context.Canceled):
		return Unavailable
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the client-facing message carried by err, or fallback.
func MessageOf(err error, fallback string) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}
