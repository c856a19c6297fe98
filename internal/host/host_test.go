package host

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deixis/actionrun/internal/report"
	"github.com/deixis/actionrun/internal/runner"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"exit 7", &runner.ExitStatusError{Code: 7}, 7},
		{"exit 255", &runner.ExitStatusError{Code: 255}, 255},
		{"wrapped exit", fmt.Errorf("run: %w", &runner.ExitStatusError{Code: 3}), 3},
		{"signal", &runner.SignaledError{Signal: "SIGKILL", Number: 9}, 137},
		{"launch", &runner.LaunchError{Err: os.ErrNotExist}, LaunchFailureCode},
		{"other", errors.New("config broken"), LaunchFailureCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCode_FromRunner(t *testing.T) {
	var r runner.Runner
	_, err := r.Run([]string{"sh", "-c", "exit 7"})
	if got := ExitCode(err); got != 7 {
		t.Errorf("ExitCode = %d, want 7", got)
	}
	_, err = r.Run([]string{"/no/such/binary"})
	if got := ExitCode(err); got == 0 {
		t.Error("ExitCode = 0 for launch failure, want non-zero")
	}
}

func TestDetect(t *testing.T) {
	env := map[string]string{"GITHUB_ACTIONS": "true", "GITHUB_STEP_SUMMARY": "/tmp/summary"}
	rep := Detect(func(k string) string { return env[k] }, &bytes.Buffer{})
	gh, ok := rep.(*GitHub)
	if !ok {
		t.Fatalf("Detect = %T, want *GitHub", rep)
	}
	if gh.SummaryPath != "/tmp/summary" {
		t.Errorf("SummaryPath = %q", gh.SummaryPath)
	}

	if _, ok := Detect(func(string) string { return "" }, nil).(Plain); !ok {
		t.Error("Detect without GITHUB_ACTIONS should return Plain")
	}
}

func TestGitHub_Commands(t *testing.T) {
	var out bytes.Buffer
	gh := &GitHub{Out: &out}
	gh.Started([]string{"bash", "/action/entrypoint.sh"})
	gh.Failed(errors.New("100% broken\nsecond line"))

	want := "Started: bash /action/entrypoint.sh\n" +
		"::error::100%25 broken%0Asecond line\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestGitHub_FailedLogsToStderr(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	var out bytes.Buffer
	gh := &GitHub{Out: &out}
	gh.Failed(&runner.ExitStatusError{Command: "bash", Code: 7})

	if !strings.Contains(logs.String(), "bash: invalid status code: 7") {
		t.Errorf("log output = %q, want the error", logs.String())
	}
	if !strings.HasPrefix(out.String(), "::error::") {
		t.Errorf("command output = %q, want ::error:: line", out.String())
	}
}

func TestGitHub_Summary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	gh := &GitHub{Out: &bytes.Buffer{}, SummaryPath: path}

	recs := []*report.Record{
		{ID: "ok-1", Command: "bash", Args: []string{"entrypoint.sh"}, Status: report.Success, Duration: time.Second},
		{ID: "bad-2", Command: "bash", Args: []string{"entrypoint.sh"}, Status: report.Exit, ExitCode: 7},
	}
	for _, rec := range recs {
		if err := gh.Summary(rec); err != nil {
			t.Fatalf("Summary: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("summary has %d lines, want 2:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], ":white_check_mark: `bash entrypoint.sh` exited 0") {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], ":x: `bash entrypoint.sh` exited 7") || !strings.Contains(lines[1], "bad-2") {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestGitHub_SummaryDisabled(t *testing.T) {
	gh := &GitHub{Out: &bytes.Buffer{}}
	if err := gh.Summary(&report.Record{ID: "x"}); err != nil {
		t.Errorf("Summary without path: %v", err)
	}
}
