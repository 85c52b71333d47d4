package relay

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/elbader17/sheetrelay/pkg/database"
	"github.com/elbader17/sheetrelay/pkg/gsheet"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Kind classifies a failed relay.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindConnection
	KindQuery
	KindCredential
	KindWrite
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindConnection:
		return "connection"
	case KindQuery:
		return "query"
	case KindCredential:
		return "credential"
	case KindWrite:
		return "write"
	default:
		return "internal"
	}
}

// StatusCode maps the kind to its HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case KindNone:
		return http.StatusOK
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified pipeline failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Classify derives the kind of err from the component error types, falling
// back to KindInternal.
func Classify(err error) Kind {
	var (
		relayErr *Error
		connErr  *database.ConnectionError
		queryErr *database.QueryError
		credErr  *gsheet.CredentialError
		writeErr *gsheet.WriteError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &relayErr):
		return relayErr.Kind
	case errors.As(err, &connErr):
		return KindConnection
	case errors.As(err, &queryErr):
		return KindQuery
	case errors.As(err, &credErr):
		return KindCredential
	case errors.As(err, &writeErr):
		return KindWrite
	default:
		return KindInternal
	}
}

// Result is the envelope returned for every relay call.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	kind Kind
}

// Success builds a 200 envelope carrying message.
func Success(message string) Result {
	return Result{Status: StatusSuccess, Message: message, kind: KindNone}
}

// Failure builds an error envelope whose status code follows kind.
func Failure(kind Kind, message string) Result {
	return Result{Status: StatusError, Message: message, kind: kind}
}

// FailureFrom builds the envelope for err using its classification.
func FailureFrom(err error) Result {
	return Failure(Classify(err), err.Error())
}

// Kind reports the failure kind, KindNone on success.
func (r Result) Kind() Kind { return r.kind }

// StatusCode returns the HTTP status for the envelope.
func (r Result) StatusCode() int { return r.kind.StatusCode() }

// OK reports whether the relay succeeded.
func (r Result) OK() bool { return r.kind == KindNone }
