package agent

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

type linkAddTool struct {
	opener *Opener
}

func (t *linkAddTool) Definition() mcp.Tool {
	return mcp.NewTool("link_add",
		mcp.WithDescription("Add a soft link from one node to another; records the target's id in the source metadata."),
		projectArg(),
		mcp.WithString("sourcePath",
			mcp.Required(),
			mcp.Description("Node that carries the link"),
		),
		mcp.WithString("targetPath",
			mcp.Required(),
			mcp.Description("Node the link points at"),
		),
	)
}

func (t *linkAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	source, err := req.RequireString("sourcePath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := req.RequireString("targetPath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := w.Store.AddLink(ctx, source, target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(node)
}

type linkRemoveTool struct {
	opener *Opener
}

func (t *linkRemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("link_remove",
		mcp.WithDescription("Remove a soft link by target node id; absent links are ignored."),
		projectArg(),
		mcp.WithString("sourcePath",
			mcp.Required(),
			mcp.Description("Node that carries the link"),
		),
		mcp.WithString("targetId",
			mcp.Required(),
			mcp.Description("Id of the linked node to unlink"),
		),
	)
}

func (t *linkRemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	source, err := req.RequireString("sourcePath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetID, err := req.RequireString("targetId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := w.Store.RemoveLink(ctx, source, targetID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(node)
}
