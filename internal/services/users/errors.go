package users

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrForbidden    = errors.New("users can only delete themselves")
)
