package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoItemsFound indicates an adapter listed nothing. It is never
	// expressed as an empty slice.
	ErrNoItemsFound = errors.New("no items found")

	// ErrDependencyNotRunning indicates a section's backing daemon is inactive.
	ErrDependencyNotRunning = errors.New("dependency not running")
)

// CommandError is returned when an external command exits non-zero or
// cannot be started.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command %q exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("command %q exited with code %d: %v", e.Command, e.ExitCode, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// SpawnError is returned by fire-and-forget execution when the process
// could not be launched at all.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// NoItemsFoundError carries the user-facing message for an empty listing.
type NoItemsFoundError struct {
	Message string
}

// NoItemsFound returns a *NoItemsFoundError with the given message.
func NoItemsFound(message string) error {
	return &NoItemsFoundError{Message: message}
}

func (e *NoItemsFoundError) Error() string {
	return e.Message
}

func (e *NoItemsFoundError) Is(target error) bool {
	return target == ErrNoItemsFound
}

// DependencyNotRunningError reports that a section's daemon is down.
type DependencyNotRunningError struct {
	Name string
}

func (e *DependencyNotRunningError) Error() string {
	return e.Name + " is not running!"
}

func (e *DependencyNotRunningError) Is(target error) bool {
	return target == ErrDependencyNotRunning
}
