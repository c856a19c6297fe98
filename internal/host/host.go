// Package host translates run outcomes into the conventions of the
// automation host that invoked actionrun: process exit status, workflow
// commands and step summaries.
package host

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/deixis/actionrun/internal/report"
	"github.com/deixis/actionrun/internal/runner"
)

// LaunchFailureCode is the exit status used when no child status exists,
// e.g. the command could not be started. The OS reports it as 255.
const LaunchFailureCode = -1

// ExitCode maps an error returned by runner.Run to the status the parent
// process should exit with.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *runner.ExitStatusError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return exitErr.Code
	}
	var sigErr *runner.SignaledError
	if errors.As(err, &sigErr) && sigErr.Number > 0 {
		return 128 + sigErr.Number
	}
	return LaunchFailureCode
}

// Reporter signals progress and failure to the surrounding host.
type Reporter interface {
	// Started announces the command line about to run.
	Started(argv []string)
	// Failed marks the run as failed.
	Failed(err error)
	// Summary records the finished run, if the host keeps summaries.
	Summary(rec *report.Record) error
}

// Detect picks the reporter for the current environment.
func Detect(getenv func(string) string, out io.Writer) Reporter {
	if getenv == nil {
		getenv = os.Getenv
	}
	if getenv("GITHUB_ACTIONS") == "true" {
		return &GitHub{Out: out, SummaryPath: getenv("GITHUB_STEP_SUMMARY")}
	}
	return Plain{}
}

// Plain reports through the standard logger only.
type Plain struct{}

func (Plain) Started(argv []string) { log.Printf("Started: %s", strings.Join(argv, " ")) }

func (Plain) Failed(err error) { log.Print(err) }

func (Plain) Summary(*report.Record) error { return nil }

// GitHub speaks the GitHub Actions workflow command protocol.
type GitHub struct {
	Out         io.Writer // workflow commands are read from the step's stdout
	SummaryPath string    // $GITHUB_STEP_SUMMARY; empty disables summaries
}

// Started prints the command line the way the step log shows it.
func (g *GitHub) Started(argv []string) {
	fmt.Fprintf(g.Out, "Started: %s\n", strings.Join(argv, " "))
}

// Failed logs err to stderr and emits an ::error:: command, which marks
// the step as failed in the UI. The exit status still decides the step
// result.
func (g *GitHub) Failed(err error) {
	log.Print(err)
	fmt.Fprintf(g.Out, "::error::%s\n", escapeData(err.Error()))
}

// Summary appends a line describing rec to the step summary file.
func (g *GitHub) Summary(rec *report.Record) error {
	if g.SummaryPath == "" {
		return nil
	}
	f, err := os.OpenFile(g.SummaryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening step summary: %w", err)
	}
	mark := ":white_check_mark:"
	if rec.Status != report.Success {
		mark = ":x:"
	}
	_, werr := fmt.Fprintf(f, "%s `%s` %s in %s (run `%s`)\n",
		mark, rec.CommandLine(), rec.Summary(), rec.Duration.Round(time.Millisecond), rec.ID)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("writing step summary: %w", werr)
	}
	return nil
}

// escapeData escapes a workflow command message.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
