// Package apperr defines the domain error taxonomy shared by the service
// layer and the HTTP handlers. Services return these errors unchanged; the
// handlers alone translate them into response envelopes.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindDuplicateEmail reports registration with an email that is taken.
	KindDuplicateEmail Kind = iota

	// KindInvalidCredentials reports a failed credential check. Unknown
	// email and wrong password are deliberately indistinguishable.
	KindInvalidCredentials

	// KindAccountDisabled reports authentication against a deactivated account.
	KindAccountDisabled

	// KindNotFound reports a missing user, student, or teacher.
	KindNotFound

	// KindValidation reports malformed or inconsistent input.
	KindValidation

	// KindForbidden reports an authorization predicate denial.
	KindForbidden
)

// Error is a domain error carrying a message and a suggested HTTP status.
type Error struct {
	Kind    Kind
	Message string
	Details any
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus suggests the boundary status code for the error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindDuplicateEmail:
		return http.StatusConflict
	case KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindAccountDisabled, KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// Constructors for the taxonomy.

func DuplicateEmail() *Error {
	return &Error{Kind: KindDuplicateEmail, Message: "user with this email already exists"}
}

func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
}

func AccountDisabled() *Error {
	return &Error{Kind: KindAccountDisabled, Message: "user account is disabled"}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Validation(message string, details any) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
