package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ohler55/ojg/oj"

	"github.com/weftworks/weft/internal/workspace"
)

// tool is one MCP tool: its wire definition and its handler.
type tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// NewServer assembles the MCP server with every project, node, template,
// task, graph, and history tool registered. The recovery middleware turns
// handler panics into tool errors instead of killing the stdio session.
func NewServer(opener *Opener, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"weft",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	for _, t := range allTools(opener) {
		s.AddTool(t.Definition(), t.Handle)
	}
	return s
}

// ServeStdio runs the server over stdin/stdout until the client hangs up.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func allTools(o *Opener) []tool {
	return []tool{
		&projectListTool{opener: o},
		&nodeReadTool{opener: o},
		&nodeCreateTool{opener: o},
		&nodeUpdateTool{opener: o},
		&nodeDeleteTool{opener: o},
		&folderCreateTool{opener: o},
		&linkAddTool{opener: o},
		&linkRemoveTool{opener: o},
		&nodeListTool{opener: o},
		&nodeSearchTool{opener: o},
		&templateListTool{opener: o},
		&templateSaveTool{opener: o},
		&templateInstantiateTool{opener: o},
		&taskListTool{opener: o},
		&graphViewTool{opener: o},
		&historyTool{opener: o},
	}
}

const instructions = `Weft manages projects of markdown nodes stored in
git-backed directory trees. Every file and directory is a node; markdown
files carry YAML front matter, other files keep their metadata in a
".metadata.md" sidecar. Paths are relative to the project root and use
forward slashes ("nodes/Ideas.md").

Every tool takes a "project" argument: the registered project name or id.
Use project_list to discover projects.

Directories form hard links (containment). Metadata "links" entries form
soft links between nodes by node id; use node_read to find a node's id
and link_add / link_remove to manage references. graph_view returns both
edge kinds at once.

Nodes with task metadata act as todo items. task_list flattens them;
create one by passing task fields in node_create metadata or by
instantiating a task-typed template.

Templates live under "templates/" and never show up in listings or
searches. template_instantiate fills {{title}} and {{description}}
placeholders. Every mutation is committed to the project's git history;
inspect it with the history tool.`

// projectArg is shared by every tool definition.
func projectArg() mcp.ToolOption {
	return mcp.WithString("project",
		mcp.Required(),
		mcp.Description("Project name or id from the registry"),
	)
}

// openProject resolves the mandatory project argument. A non-nil result
// is the error result to hand back unchanged.
func openProject(ctx context.Context, o *Opener, req mcp.CallToolRequest) (*workspace.Workspace, *mcp.CallToolResult) {
	ref, err := req.RequireString("project")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	w, err := o.Workspace(ctx, ref)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return w, nil
}

// jsonResult renders v as JSON with sorted keys so agents see stable
// shapes across calls.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := encodeResult(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

var resultOptions = func() oj.Options {
	o := oj.DefaultOptions
	o.Sort = true
	return o
}()

func encodeResult(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	doc, err := oj.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return oj.JSON(doc, &resultOptions), nil
}

// metadataArg reads an optional object argument as a map. Missing or
// null arguments yield nil.
func metadataArg(req mcp.CallToolRequest, key string) (map[string]any, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object", key)
	}
	return m, nil
}
