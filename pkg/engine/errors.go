package engine

import "errors"

// Structural errors. These abort the operation before any state mutation.
var (
	ErrNoStartActivity    = errors.New("workflow has no unique start activity")
	ErrTransitionNotFound = errors.New("transition not found in workflow")
	ErrActivityNotFound   = errors.New("activity not found in workflow")
	ErrProcessCompleted   = errors.New("process is already completed")
)
