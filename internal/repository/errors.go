package repository

import "errors"

var (
	// ErrTaskNotFound indicates the task id did not resolve in the store.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound indicates the user was not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser indicates a unique constraint violation on username or email.
	ErrDuplicateUser = errors.New("username or email already exists")
)
