package services

import "errors"

// Error taxonomy surfaced to the handlers. Each failure kind maps to a
// distinct HTTP status; none of these represent transient faults.
var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrNicknameAlreadyExists = errors.New("nickname already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccessDenied          = errors.New("access denied")
	ErrFootprintNotFound     = errors.New("footprint not found")
	ErrRecordNotFound        = errors.New("hiking record not found")
	ErrInvalidRecordCount    = errors.New("exactly one or two record ids are required")
	ErrLoginTokenNotFound    = errors.New("login token expired or already used")
	ErrInvalidToken          = errors.New("invalid token")
)
