package agent

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

type graphViewTool struct {
	opener *Opener
}

func (t *graphViewTool) Definition() mcp.Tool {
	return mcp.NewTool("graph_view",
		mcp.WithDescription("Return the full node graph: every node plus hard (containment) and soft (metadata link) edges."),
		projectArg(),
	)
}

func (t *graphViewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	g, err := w.Store.Graph(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(g)
}

type historyTool struct {
	opener *Opener
}

func (t *historyTool) Definition() mcp.Tool {
	return mcp.NewTool("history",
		mcp.WithDescription("Show the project's commit history, optionally scoped to one path."),
		projectArg(),
		mcp.WithString("path",
			mcp.Description("Only commits touching this path"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of commits to return"),
		),
	)
}

func (t *historyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	commits, err := w.Manager.History(ctx,
		req.GetString("path", ""),
		req.GetInt("limit", 0),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(commits)
}
