// Package relayerr defines the error-kind taxonomy: HTTP handlers map
// a Kind to a status code. The event-log consumers do not consult the
// Kind; any error a handler returns leaves its record uncommitted.
package relayerr

import "errors"

type Kind int

const (
	Unknown Kind = iota
	Unauthorized
	Forbidden
	BadRequest
	NotFound
	Conflict
	Transient
	Fatal
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case BadRequest:
		return "bad_request"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Transient:
		return "transient"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// HTTPStatus maps a Kind to the status code the API surface returns.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthorized:
		return 401
	case Forbidden:
		return 403
	case BadRequest:
		return 400
	case NotFound:
		return 404
	case Conflict:
		return 409
	default:
		return 500
	}
}

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

// As extracts the Kind of err, defaulting to Transient for an error
// that isn't one of ours — unclassified errors from db/cache/producer
// calls are treated as retryable by default.
func As(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if err == nil {
		return Unknown
	}
	return Transient
}
