package core

import "context"

// Runner is the process execution collaborator every adapter shells out through.
type Runner interface {
	// Find resolves program on the search path.
	Find(program string) (path string, ok bool)

	// Execute runs command to completion and returns its stdout.
	// A non-zero exit yields a *CommandError.
	Execute(ctx context.Context, command string) (string, error)

	// ExecuteAsync launches command and returns once the spawn succeeded,
	// without waiting for the command to finish.
	ExecuteAsync(ctx context.Context, command string) error
}

// ItemsFunc retrieves the current items of one section.
type ItemsFunc func(ctx context.Context) ([]Item, error)

// ActionFunc applies one mutation to the item identified by id.
type ActionFunc func(ctx context.Context, id string) error
