package research

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind uint8

// Failure kinds.
const (
	KindInvalidRequest Kind = iota + 1
	KindUnknownOperation
	KindTransport
	KindMalformedResponse
	KindNoContent
	KindCancelled
	KindInvalidConfig
)

// String returns a stable, lower-case name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindUnknownOperation:
		return "unknown_operation"
	case KindTransport:
		return "transport_failure"
	case KindMalformedResponse:
		return "malformed_response"
	case KindNoContent:
		return "no_content"
	case KindCancelled:
		return "cancelled"
	case KindInvalidConfig:
		return "invalid_config"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidRequest    = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
	ErrUnknownOperation  = &Error{Kind: KindUnknownOperation, Message: "unknown operation"}
	ErrTransport         = &Error{Kind: KindTransport, Message: "transport failure"}
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse, Message: "malformed response"}
	ErrNoContent         = &Error{Kind: KindNoContent, Message: "no content in response"}
	ErrCancelled         = &Error{Kind: KindCancelled, Message: "cancelled"}
	ErrInvalidConfig     = &Error{Kind: KindInvalidConfig, Message: "invalid config"}
)

// Error is the single error type returned by this package.
// Messages are safe to show to a user: they never contain the API key or a
// raw response body.
type Error struct {
	Kind       Kind
	Operation  string // Offending tag, set for KindUnknownOperation
	StatusCode int    // HTTP status, set for non-2xx transport failures
	Message    string
	Err        error // Underlying cause, may be nil
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("research: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("research: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of err, or 0 if err is not from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsRetryable reports whether a caller may reasonably retry the request.
// Only transport failures qualify. The assistant itself never retries.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransport
}

// redactor scrubs a secret out of error text.
type redactor struct {
	secret string
}

const redacted = "[REDACTED]"

func (r redactor) string(s string) string {
	if r.secret == "" {
		return s
	}
	return strings.ReplaceAll(s, r.secret, redacted)
}

// error returns err with the secret removed from its text. The original error
// is dropped from the chain when it leaked the secret.
func (r redactor) error(err error) error {
	if err == nil || r.secret == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, r.secret) {
		return err
	}
	return errors.New(r.string(msg))
}
