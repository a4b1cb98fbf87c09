package auth

import "errors"

var (
	// ErrMissingToken is returned when no bearer token is present on the request
	ErrMissingToken = errors.New("missing Authorization header")

	// ErrInvalidToken is returned when a token fails signature or claim validation
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrBadCredentials is returned when a username/password pair does not match
	ErrBadCredentials = errors.New("invalid username or password")
)
