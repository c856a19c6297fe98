package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type inspectParams struct {
	RunID string `json:"run_id" jsonschema:"the run ID from an actionrun_run or actionrun_exec result"`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}

	rec, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	text := formatRecord(rec)
	if rec.Dir != "" {
		text += fmt.Sprintf("Directory: %s\n", rec.Dir)
	}
	text += fmt.Sprintf("Started: %s\n", rec.Started.Format("2006-01-02T15:04:05Z07:00"))
	return textResult(text)
}
