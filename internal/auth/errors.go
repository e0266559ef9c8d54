package auth

import "net/http"

// AuthnKind distinguishes authentication failures. Callers reject all of them
// the same way, but logs and tests tell them apart by kind.
type AuthnKind int

const (
	MissingAPIKey AuthnKind = iota
	BadAPIKey
	MissingToken
	MalformedToken
	ExpiredToken
	BadSignature
)

// AuthnError is a failure to prove identity. The message is part of the wire
// contract and must not be rewritten at the boundary.
type AuthnError struct {
	Kind    AuthnKind
	Message string
}

func (e *AuthnError) Error() string {
	return e.Message
}

// HTTPStatus maps the kind to its transport status.
func (e *AuthnError) HTTPStatus() int {
	switch e.Kind {
	case MissingAPIKey:
		return http.StatusBadRequest
	case BadAPIKey:
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

// AuthzKind distinguishes authorization failures.
type AuthzKind int

const (
	WrongRole AuthzKind = iota
	WrongScope
	NotOwner
	SelfActionForbidden
)

// AuthzError is a permission denial with its fixed, user-visible reason.
// Downstream UIs branch on the exact message text.
type AuthzError struct {
	Kind    AuthzKind
	Message string
}

func (e *AuthzError) Error() string {
	return e.Message
}

// HTTPStatus is always 403; authorization errors never masquerade as
// authentication ones.
func (e *AuthzError) HTTPStatus() int {
	return http.StatusForbidden
}

func forbidden(kind AuthzKind, message string) *AuthzError {
	return &AuthzError{Kind: kind, Message: message}
}
