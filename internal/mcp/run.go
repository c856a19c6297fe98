package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deixis/actionrun/internal/config"
	"github.com/deixis/actionrun/internal/report"
	"github.com/deixis/actionrun/internal/runner"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type runParams struct {
	Args []string `json:"args,omitempty" jsonschema:"extra arguments appended after the configured script arguments"`
}

type execParams struct {
	Argv []string `json:"argv" jsonschema:"command and arguments; argv[0] is resolved via PATH and nothing is interpreted by a shell"`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	loaded := h.current()
	return h.launch(loaded, loaded.Config.Argv(loaded.ActionRoot, params.Args...))
}

func (h *handler) execHandler(ctx context.Context, req *mcp.CallToolRequest, params execParams) (*mcp.CallToolResult, any, error) {
	if len(params.Argv) == 0 {
		return errorResult("argv is required")
	}
	return h.launch(h.current(), params.Argv)
}

// launch runs argv with output captured, since this process's own stdio
// carries the protocol, and stores the record for actionrun_inspect.
func (h *handler) launch(loaded *config.LoadResult, argv []string) (*mcp.CallToolResult, any, error) {
	cfg := loaded.Config

	capture := runner.NewCapture(cfg.MaxOutputBytes())
	r := &runner.Runner{
		Dir:    cfg.WorkDir(loaded.ActionRoot),
		Env:    cfg.Environ(),
		Stdin:  strings.NewReader(""),
		Stdout: capture,
		Stderr: capture,
	}
	res, err := r.Run(argv)

	rec := report.NewRecord(res, err)
	rec.Output = string(capture.Bytes())
	rec.Truncated = capture.Truncated()

	text := formatRecord(rec)
	if serr := h.store.Save(rec); serr != nil {
		text += fmt.Sprintf("\nWarning: run record not saved: %v\n", serr)
	} else {
		text += fmt.Sprintf("\nInspect with actionrun_inspect(run_id=%q).\n", rec.ID)
	}

	if err != nil {
		return errorResult(text)
	}
	return textResult(text)
}

func formatRecord(rec *report.Record) string {
	var b strings.Builder

	if rec.Status == report.Success {
		fmt.Fprintln(&b, "Status: PASS")
	} else {
		fmt.Fprintln(&b, "Status: FAIL")
	}
	fmt.Fprintf(&b, "Run: %s\n", rec.ID)
	fmt.Fprintf(&b, "Command: %s\n", quoteArgv(append([]string{rec.Command}, rec.Args...)))
	fmt.Fprintf(&b, "Result: %s\n", rec.Summary())
	if rec.Status != report.Launch {
		fmt.Fprintf(&b, "Duration: %s\n", rec.Duration.Round(time.Millisecond))
	}

	if rec.Output != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Output:")
		for _, line := range strings.Split(strings.TrimRight(rec.Output, "\n"), "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	if rec.Truncated {
		fmt.Fprintln(&b, "    (output truncated)")
	}
	return b.String()
}
