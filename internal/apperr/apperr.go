// Package apperr defines the error kinds shared by every store and engine.
//
// Services return plain Go errors. Domain-rule violations are *Error values
// carrying a Kind; anything else is treated as an unexpected storage fault.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Kind string

const (
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindAccessDenied       Kind = "access_denied"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInactiveAccount    Kind = "inactive_account"
	KindUnexpected         Kind = "unexpected"
)

// Error is a classified failure. Message is safe to show to callers; Err is
// the internal cause and never leaves the process.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input for field.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

// NotFound reports a missing entity, e.g. NotFound("track").
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func AccessDenied() *Error {
	return &Error{Kind: KindAccessDenied, Message: "access denied"}
}

// InvalidCredentials deliberately covers both an unknown email and a wrong
// password.
func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "invalid email or password"}
}

func InactiveAccount() *Error {
	return &Error{Kind: KindInactiveAccount, Message: "account is inactive"}
}

// Unexpected wraps a storage or infrastructure failure in op.
func Unexpected(op string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: "internal error", Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf returns the kind of err. Errors that were never classified are
// unexpected.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Message returns the caller-safe message for err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// FromStore classifies an error returned by the driver. Already classified
// errors pass through untouched so services can return FromStore(op, err)
// on every path.
func FromStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &Error{Kind: KindConflict, Message: "duplicate entry", Err: err}
		case pgForeignKeyViolation:
			return &Error{Kind: KindNotFound, Message: "referenced entity not found", Err: err}
		case pgCheckViolation:
			return &Error{Kind: KindValidation, Message: "value out of range", Err: err}
		}
	}
	return Unexpected(op, err)
}

// NoRows reports whether err is the driver's empty-result error.
func NoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// HTTPStatus maps a kind onto the status code the web layer should send.
func HTTPStatus(k Kind) int {
	switch k {
	case "":
		return http.StatusOK
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAccessDenied, KindInactiveAccount:
		return http.StatusForbidden
	case KindInvalidCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
