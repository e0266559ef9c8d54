package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/DiogoBrazil/medimage-api/internal/auth"
)

// DomainError standardizes application errors. Message and HTTPStatus feed the
// wire envelope {"detail": {"message": ..., "status_code": ...}} rendered by
// the error-handling middleware; Message is never rewritten on the way out.
type DomainError struct {
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(message string, status int) *DomainError {
	return &DomainError{Message: message, HTTPStatus: status}
}

func NewValidationError(message string) error {
	return NewDomainError(message, http.StatusBadRequest)
}

func NewUnprocessable(message string) error {
	return NewDomainError(message, http.StatusUnprocessableEntity)
}

func NewNotFound(message string) error {
	return NewDomainError(message, http.StatusNotFound)
}

func NewUnauthorized(message string) error {
	return NewDomainError(message, http.StatusUnauthorized)
}

func NewForbidden(message string) error {
	return NewDomainError(message, http.StatusForbidden)
}

func NewConflict(message string) error {
	return NewDomainError(message, http.StatusConflict)
}

func NewInternalError(err error) error {
	return &DomainError{
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts any error to a DomainError for the response
// boundary. Authentication and authorization errors keep their fixed message
// and mapped status; unknown rows become 404; everything else is a 500.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var authnErr *auth.AuthnError
	if errors.As(err, &authnErr) {
		return &DomainError{Message: authnErr.Message, HTTPStatus: authnErr.HTTPStatus(), Err: authnErr}
	}
	var authzErr *auth.AuthzError
	if errors.As(err, &authzErr) {
		return &DomainError{Message: authzErr.Message, HTTPStatus: authzErr.HTTPStatus(), Err: authzErr}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &DomainError{Message: "resource not found", HTTPStatus: http.StatusNotFound, Err: err}
	}
	return &DomainError{
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
