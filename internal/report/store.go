// Package report persists run records so a finished invocation can be
// looked up again by its run ID.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deixis/actionrun/internal/runner"
)

// Status classifies how an invocation ended.
type Status string

const (
	// Success means the child exited with status 0.
	Success Status = "success"
	// Exit means the child exited with a non-zero status.
	Exit Status = "exit"
	// Signal means the child was terminated by a signal.
	Signal Status = "signal"
	// Launch means the child could not be started.
	Launch Status = "launch"
)

// Store persists and retrieves run records.
type Store interface {
	Save(record *Record) error
	Load(runID string) (*Record, error)
}

// Record is the stored form of one invocation and its outcome.
type Record struct {
	ID        string        `json:"id"`
	Command   string        `json:"command"`
	Args      []string      `json:"args,omitempty"`
	Dir       string        `json:"dir,omitempty"`
	Status    Status        `json:"status"`
	ExitCode  int           `json:"exit_code"`
	Signal    string        `json:"signal,omitempty"`
	Error     string        `json:"error,omitempty"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration"`
	Output    string        `json:"output,omitempty"` // only set when output was captured
	Truncated bool          `json:"truncated,omitempty"`
}

// NewRecord builds a Record from the values returned by runner.Run.
func NewRecord(res *runner.Result, err error) *Record {
	r := &Record{
		ID:       res.RunID,
		Command:  res.Command,
		Args:     res.Args,
		Dir:      res.Dir,
		ExitCode: res.ExitCode,
		Signal:   res.Signal,
		Started:  res.Started,
		Duration: res.Duration,
		Status:   StatusOf(err),
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// StatusOf classifies an error returned by runner.Run. Unknown errors are
// reported as launch failures.
func StatusOf(err error) Status {
	var (
		exitErr *runner.ExitStatusError
		sigErr  *runner.SignaledError
	)
	switch {
	case err == nil:
		return Success
	case errors.As(err, &exitErr):
		return Exit
	case errors.As(err, &sigErr):
		return Signal
	default:
		return Launch
	}
}

// CommandLine returns the command and its arguments joined by spaces.
func (r *Record) CommandLine() string {
	return strings.TrimSpace(r.Command + " " + strings.Join(r.Args, " "))
}

// Summary returns a one-line description of the outcome.
func (r *Record) Summary() string {
	switch r.Status {
	case Success:
		return "exited 0"
	case Exit:
		return fmt.Sprintf("exited %d", r.ExitCode)
	case Signal:
		return "terminated by " + r.Signal
	default:
		if r.Error != "" {
			return "failed to start: " + r.Error
		}
		return "failed to start"
	}
}
