// Package mcp exposes the action runner as an MCP server so that agent
// hosts can launch the action script and read back run records.
package mcp

import (
	"context"
	_ "embed"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/deixis/actionrun"
	"github.com/deixis/actionrun/internal/config"
	"github.com/deixis/actionrun/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	mu     sync.RWMutex
	loaded *config.LoadResult // replaced when the client reports a root

	store report.Store
}

// NewServer creates an MCP server with all actionrun tools registered.
func NewServer(loaded *config.LoadResult, store report.Store) *mcp.Server {
	h := &handler{loaded: loaded, store: store}

	opts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateRootFromClient(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "actionrun", Version: actionrun.Version}, opts)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "actionrun_config",
		Description: "Show the resolved action root, the command line of the action script, and the effective configuration.",
	}, h.configHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "actionrun_run",
		Description: `Run the action's entrypoint script and wait for it to exit.

Optional args are appended after the configured arguments. Output is captured
(bounded by max_output) and returned with the exit status. A non-zero exit,
a terminating signal, or a launch failure is reported as a tool error.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "actionrun_exec",
		Description: `Run an arbitrary command (argv[0] resolved via PATH, no shell) and wait for it to exit.

Reported the same way as actionrun_run.`,
	}, h.execHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "actionrun_inspect",
		Description: "Show the stored record of an earlier actionrun_run or actionrun_exec call, including its captured output.",
	}, h.inspectHandler)

	return s
}

func (h *handler) current() *config.LoadResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loaded
}

// updateRootFromClient asks the client for its roots and reloads the
// configuration from the first file:// root. Failures keep the current
// configuration.
func (h *handler) updateRootFromClient(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil || len(roots.Roots) == 0 {
		return
	}
	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}
	loaded, err := config.Load(u.Path, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.loaded = loaded
	h.mu.Unlock()
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}

func quoteArgv(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\n'\"") {
			parts[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}
