package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrSlugTaken          = errors.New("slug already used for this publish date")
	ErrUsernameTaken      = errors.New("a user with that username already exists")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("forbidden")
)
