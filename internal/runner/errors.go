package runner

import (
	"errors"
	"fmt"
)

// ErrNoCommand is wrapped in a LaunchError when Run is given an empty argv
// or an empty command name.
var ErrNoCommand = errors.New("no command")

// LaunchError reports that the child process could not be created.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("launching process: %v", e.Err)
	}
	return fmt.Sprintf("launching %s: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitStatusError reports that the child ran and exited with a non-zero code.
type ExitStatusError struct {
	Command string
	Code    int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("%s: invalid status code: %d", e.Command, e.Code)
}

// SignaledError reports that the child was terminated by a signal before
// it could exit on its own.
type SignaledError struct {
	Command string
	Signal  string // e.g. "SIGKILL"
	Number  int
}

func (e *SignaledError) Error() string {
	return fmt.Sprintf("%s: terminated by signal %s", e.Command, e.Signal)
}
