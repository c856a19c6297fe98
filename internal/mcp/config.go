package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type configParams struct{}

func (h *handler) configHandler(ctx context.Context, req *mcp.CallToolRequest, _ configParams) (*mcp.CallToolResult, any, error) {
	loaded := h.current()
	cfg := loaded.Config

	var b strings.Builder
	fmt.Fprintf(&b, "Action root: %s\n", loaded.ActionRoot)
	fmt.Fprintf(&b, "Command: %s\n", quoteArgv(cfg.Argv(loaded.ActionRoot)))
	if dir := cfg.WorkDir(loaded.ActionRoot); dir != "" {
		fmt.Fprintf(&b, "Directory: %s\n", dir)
	} else {
		fmt.Fprintln(&b, "Directory: (inherited)")
	}
	if env := cfg.Environ(); len(env) > 0 {
		fmt.Fprintf(&b, "Environment (%d):\n", len(env))
		for _, kv := range env {
			fmt.Fprintf(&b, "  %s\n", kv)
		}
	}
	fmt.Fprintf(&b, "Max output: %d bytes\n", cfg.MaxOutputBytes())
	return textResult(b.String())
}
