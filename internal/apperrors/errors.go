package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrSessionNotFound = errors.New("session not found")

	ErrRecoveryTokenNotFound = errors.New("recovery token not found")

	// Storage failed in a way the caller can't fix (constraint violation, broken reference, etc)
	ErrStorage = errors.New("storage error")
)
