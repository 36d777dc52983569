package agent

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

type projectListTool struct {
	opener *Opener
}

func (t *projectListTool) Definition() mcp.Tool {
	return mcp.NewTool("project_list",
		mcp.WithDescription("List registered projects with their git settings."),
	)
}

func (t *projectListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := t.opener.Projects(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(projects)
}
