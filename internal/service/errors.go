package service

import "errors"

var (
	// ErrTaskNotFound is returned when a command or query addresses a task that does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrNoContent is returned by list queries that find nothing. It is not a failure;
	// transports answer it with an empty 204 response.
	ErrNoContent = errors.New("no tasks have been created")
)

// MsgOwnerNotRegistered is the failure message of a create command naming an unknown owner.
const MsgOwnerNotRegistered = "This user is not registed in the system"
