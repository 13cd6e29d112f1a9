package service

import "errors"

// Failure taxonomy shared by all services. Handlers map these onto HTTP
// status codes; anything unrecognized surfaces as a 5xx.
var (
	ErrInvalid            = errors.New("invalid input")
	ErrEmailTaken         = errors.New("user with given email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCodeNotFound       = errors.New("verification code not found")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCodeMismatch       = errors.New("verification code mismatch")
	ErrNotFound           = errors.New("record not found")
)
