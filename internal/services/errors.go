package services

import "errors"

var (
	// ErrNotFound covers both a missing task and a task owned by
	// someone else; handlers must not distinguish the two.
	ErrNotFound = errors.New("task not found or unauthorized")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownEmail       = errors.New("email does not exist")
	ErrNothingToSave      = errors.New("no todos to save")
)
