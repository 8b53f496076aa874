package identity

import "errors"

// Identity verification errors.
var (
	// ErrInvalidToken indicates the token is malformed or has an invalid signature.
	ErrInvalidToken = errors.New("invalid portal token")

	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("portal token expired")

	// ErrSecretTooShort indicates the signing secret is too short.
	ErrSecretTooShort = errors.New("signing secret must be at least 32 bytes")

	// ErrEmailRequired indicates no email was supplied for hashing.
	ErrEmailRequired = errors.New("email is required")

	// ErrHashMismatch indicates a user hash did not match the email.
	ErrHashMismatch = errors.New("identity hash mismatch")
)
