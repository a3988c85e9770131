package authservice

import "errors"

var (
	// ErrInvalidCredentials is returned when the access code is unknown or
	// does not belong to an admin.
	ErrInvalidCredentials = errors.New("invalid access code")

	// ErrGenerateToken is returned when token generation fails.
	ErrGenerateToken = errors.New("failed to generate token")
)
