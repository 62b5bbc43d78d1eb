package model

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyMigrated    = errors.New("user already migrated")
	ErrEmailTaken         = errors.New("email already taken")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet strength policy")
	ErrUnknownProvider    = errors.New("unknown provider")
)
