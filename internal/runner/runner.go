// Package runner launches a single child process that shares the caller's
// standard streams and reports how it terminated.
package runner

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
)

// WaitDelay bounds how long Run keeps copying output after the child has
// exited. It applies only when a stream is not an *os.File, where a
// background process that inherited the pipe would otherwise hold Run open.
const WaitDelay = time.Second

// Runner launches commands. The zero value runs in the current directory
// with the parent's environment and standard streams.
type Runner struct {
	Dir string   // working directory; empty inherits the parent's
	Env []string // extra KEY=VALUE entries layered over os.Environ()

	// Streams default to os.Stdin, os.Stdout and os.Stderr. When they are
	// *os.File values the child writes to the descriptors directly and
	// nothing passes through this process.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes argv and blocks until the child has terminated. The first
// element is the command (resolved via PATH when it has no separator) and
// the rest are passed as arguments without shell interpretation.
//
// The returned Result is never nil. The error is nil on exit status 0 and
// otherwise one of *LaunchError, *ExitStatusError or *SignaledError.
func (r *Runner) Run(argv []string) (*Result, error) {
	res := &Result{
		RunID:    uuid.New().String(),
		Dir:      r.Dir,
		ExitCode: -1,
		Started:  time.Now(),
	}
	if len(argv) == 0 || argv[0] == "" {
		return res, &LaunchError{Err: ErrNoCommand}
	}
	res.Command = argv[0]
	res.Args = append([]string(nil), argv[1:]...)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	cmd.Stdin = r.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if !isFile(cmd.Stdin) || !isFile(cmd.Stdout) || !isFile(cmd.Stderr) {
		cmd.WaitDelay = WaitDelay
	}

	runErr := cmd.Run()
	res.Duration = time.Since(res.Started)

	if errors.Is(runErr, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		// Exited 0; only a leftover holder of the output pipe was cut off.
		runErr = nil
	}
	if runErr == nil {
		res.ExitCode = 0
		return res, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		// Binary not found, permission denied, bad working directory.
		return res, &LaunchError{Command: argv[0], Err: runErr}
	}
	if name, num, ok := signaled(exitErr.ProcessState); ok {
		res.Signal = name
		return res, &SignaledError{Command: argv[0], Signal: name, Number: num}
	}
	res.ExitCode = exitErr.ExitCode()
	return res, &ExitStatusError{Command: argv[0], Code: res.ExitCode}
}

func isFile(v any) bool {
	_, ok := v.(*os.File)
	return ok
}
