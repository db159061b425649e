// Package apperr defines the error taxonomy shared by the tooling binaries.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputFormat is returned for malformed versions, array literals, JSON or missing fields.
	ErrInputFormat = errors.New("invalid input format")
	// ErrPrecondition is returned when the environment does not allow a release to start.
	ErrPrecondition = errors.New("precondition failed")
	// ErrExternalCommand is returned when a subprocess exits with an error.
	ErrExternalCommand = errors.New("external command failed")
	// ErrNetwork is returned when a fetch or a response decode fails.
	ErrNetwork = errors.New("network error")
)

// CommandError describes a failed subprocess invocation.
type CommandError struct {
	Command  []string
	Output   string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", strings.Join(e.Command, " "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Is makes every CommandError match ErrExternalCommand.
func (e *CommandError) Is(target error) bool {
	return target == ErrExternalCommand
}

// InputFormat wraps a formatted message with ErrInputFormat.
func InputFormat(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInputFormat, fmt.Sprintf(format, args...))
}

// Precondition wraps a formatted message with ErrPrecondition.
func Precondition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
