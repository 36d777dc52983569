package agent

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/weftworks/weft/internal/store"
)

type nodeReadTool struct {
	opener *Opener
}

func (t *nodeReadTool) Definition() mcp.Tool {
	return mcp.NewTool("node_read",
		mcp.WithDescription("Read one node: metadata, content, hard and soft links."),
		projectArg(),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Node path relative to the project root"),
		),
	)
}

func (t *nodeReadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := w.Store.Read(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if node == nil {
		return mcp.NewToolResultError(fmt.Sprintf("node not found: %s", path)), nil
	}
	return jsonResult(node)
}

type nodeCreateTool struct {
	opener *Opener
}

func (t *nodeCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("node_create",
		mcp.WithDescription("Create a markdown node under a parent directory and commit it."),
		projectArg(),
		mcp.WithString("parentPath",
			mcp.Description("Parent directory path; empty for the project root"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Node name; becomes the file name after sanitization"),
		),
		mcp.WithString("type",
			mcp.Description("Node type recorded in metadata, e.g. file or task (default file)"),
		),
		mcp.WithObject("metadata",
			mcp.Description("Initial metadata fields, e.g. tags, description, task"),
		),
		mcp.WithString("content",
			mcp.Description("Initial body; defaults to a heading with the node title"),
		),
	)
}

func (t *nodeCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meta, err := metadataArg(req, "metadata")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := stringPtrArg(req, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := w.Store.Create(ctx,
		req.GetString("parentPath", ""),
		name,
		req.GetString("type", "file"),
		meta,
		content,
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(node)
}

type nodeUpdateTool struct {
	opener *Opener
}

func (t *nodeUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("node_update",
		mcp.WithDescription("Update a node's metadata and/or content and commit the change."),
		projectArg(),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Node path relative to the project root"),
		),
		mcp.WithObject("metadata",
			mcp.Description("Metadata fields to merge; null values delete keys"),
		),
		mcp.WithString("content",
			mcp.Description("Replacement body; omit to keep the current one"),
		),
	)
}

func (t *nodeUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meta, err := metadataArg(req, "metadata")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := stringPtrArg(req, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := w.Store.Update(ctx, path, meta, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(node)
}

type nodeDeleteTool struct {
	opener *Opener
}

func (t *nodeDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("node_delete",
		mcp.WithDescription("Delete a node (directories recursively) and commit the removal."),
		projectArg(),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Node path relative to the project root"),
		),
	)
}

func (t *nodeDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := w.Store.Delete(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"deleted": path})
}

type folderCreateTool struct {
	opener *Opener
}

func (t *folderCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("folder_create",
		mcp.WithDescription("Create a directory node with its metadata sidecar and commit it."),
		projectArg(),
		mcp.WithString("parentPath",
			mcp.Description("Parent directory path; empty for the project root"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Directory name; sanitized like node names"),
		),
	)
}

func (t *folderCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := w.Store.CreateFolder(ctx, req.GetString("parentPath", ""), name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(node)
}

type nodeListTool struct {
	opener *Opener
}

func (t *nodeListTool) Definition() mcp.Tool {
	return mcp.NewTool("node_list",
		mcp.WithDescription("List nodes in path order, optionally scoped to one directory."),
		projectArg(),
		mcp.WithString("directory",
			mcp.Description("Directory to scope the listing to; empty for the whole tree"),
		),
		mcp.WithBoolean("includeTemplates",
			mcp.Description("Include nodes under templates/ (excluded by default)"),
		),
	)
}

func (t *nodeListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	nodes, err := w.Store.List(ctx, store.ListOptions{
		Dir:              req.GetString("directory", ""),
		IncludeTemplates: req.GetBool("includeTemplates", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(nodes)
}

type nodeSearchTool struct {
	opener *Opener
}

func (t *nodeSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("node_search",
		mcp.WithDescription("Search nodes by title/content substring, type, task presence, or JSONPath selector."),
		projectArg(),
		mcp.WithString("query",
			mcp.Description("Case-insensitive substring matched against title and content"),
		),
		mcp.WithString("type",
			mcp.Description("Restrict to nodes whose metadata type equals this value"),
		),
		mcp.WithBoolean("hasTask",
			mcp.Description("Restrict to nodes with (true) or without (false) task metadata"),
		),
		mcp.WithString("selector",
			mcp.Description("JSONPath over the node document, e.g. $.metadata.tags[?(@ == 'urgent')]"),
		),
	)
}

func (t *nodeSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	opts := store.SearchOptions{
		Query:    req.GetString("query", ""),
		Type:     req.GetString("type", ""),
		Selector: req.GetString("selector", ""),
	}
	if raw, ok := req.GetArguments()["hasTask"]; ok && raw != nil {
		b, ok := raw.(bool)
		if !ok {
			return mcp.NewToolResultError("hasTask must be a boolean"), nil
		}
		opts.HasTask = &b
	}
	nodes, err := w.Store.Search(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(nodes)
}

// stringPtrArg distinguishes an absent optional string from an empty one.
func stringPtrArg(req mcp.CallToolRequest, key string) (*string, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string", key)
	}
	return &s, nil
}
