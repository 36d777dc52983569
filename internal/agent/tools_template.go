package agent

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/weftworks/weft/api"
)

type templateListTool struct {
	opener *Opener
}

func (t *templateListTool) Definition() mcp.Tool {
	return mcp.NewTool("template_list",
		mcp.WithDescription("List the project's templates."),
		projectArg(),
	)
}

func (t *templateListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	tpls, err := w.Engine.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tpls)
}

type templateSaveTool struct {
	opener *Opener
}

func (t *templateSaveTool) Definition() mcp.Tool {
	return mcp.NewTool("template_save",
		mcp.WithDescription("Save an existing node as a reusable template, stripping its identity and link state."),
		projectArg(),
		mcp.WithString("sourcePath",
			mcp.Required(),
			mcp.Description("Structured node to capture"),
		),
		mcp.WithString("templateName",
			mcp.Required(),
			mcp.Description("Name the template is stored under"),
		),
	)
}

func (t *templateSaveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	source, err := req.RequireString("sourcePath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("templateName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tpl, err := w.Engine.SaveFrom(ctx, source, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tpl)
}

type templateInstantiateTool struct {
	opener *Opener
}

func (t *templateInstantiateTool) Definition() mcp.Tool {
	return mcp.NewTool("template_instantiate",
		mcp.WithDescription("Create a node from a template, substituting {{title}} and {{description}} placeholders."),
		projectArg(),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Title of the new node"),
		),
		mcp.WithString("templateName",
			mcp.Description("Template to instantiate (default empty)"),
		),
		mcp.WithString("parentPath",
			mcp.Description("Parent directory; defaults to nodes/"),
		),
		mcp.WithObject("overrides",
			mcp.Description("Metadata fields layered over the template's, e.g. description"),
		),
	)
}

func (t *templateInstantiateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	overrides, err := metadataArg(req, "overrides")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := w.Engine.Instantiate(ctx,
		req.GetString("parentPath", ""),
		name,
		req.GetString("templateName", api.DefaultTemplateName),
		overrides,
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(node)
}
