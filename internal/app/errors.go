package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/bidhub/internal/adapters/ranking"
	"github.com/okian/bidhub/internal/adapters/repository"
)

// Error kinds returned by service operations. Check them with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrApplicationsClosed = errors.New("applications closed")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrNotStarted         = errors.New("service not started")
)

// Error is a failed operation with a message safe to show clients.
type Error struct {
	Op   string
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the client-facing text of err, or "" when err carries none.
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Msg
	}
	return ""
}

func fail(op string, kind error, msg string) error {
	return &Error{Op: op, Kind: kind, Msg: msg}
}

// wrap classifies a store error. Unknown errors keep only the op.
func wrap(op, notFound string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, ranking.ErrNotFound):
		return &Error{Op: op, Kind: ErrNotFound, Msg: notFound, Err: err}
	case errors.Is(err, repository.ErrConflict):
		return &Error{Op: op, Kind: ErrConflict, Msg: "Status does not allow this change", Err: err}
	case errors.Is(err, repository.ErrDuplicate):
		return &Error{Op: op, Kind: ErrConflict, Msg: "Already exists", Err: err}
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// validAmount reports whether v is a usable price: positive and finite.
func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
