package agent

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weftworks/weft/api"
	"github.com/weftworks/weft/internal/config"
	"github.com/weftworks/weft/internal/registry"
)

// The opener logs through a nop logger; watcher goroutines may outlive
// individual assertions and must not write through testing.T.
func newTestOpener(t *testing.T) (*Opener, api.Project) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.ProjectsRoot = filepath.Join(root, "projects")
	cfg.Registry = filepath.Join(root, "registry.db")

	reg, err := registry.Open(cfg.Registry)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	proj := api.NewProject("demo", "agent test project", api.GitConfig{})
	require.NoError(t, reg.Create(context.Background(), proj))

	o := NewOpener(cfg, reg, zap.NewNop())
	t.Cleanup(o.Close)
	return o, proj
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.False(t, res.IsError, "unexpected tool error: %+v", res.Content)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func resultDoc(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &doc))
	return doc
}

func resultList(t *testing.T, res *mcp.CallToolResult) []any {
	t.Helper()
	var list []any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &list))
	return list
}

func errorText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.True(t, res.IsError, "expected a tool error")
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestAllTools_NamesAndProjectArg(t *testing.T) {
	o, _ := newTestOpener(t)

	want := []string{
		"project_list", "node_read", "node_create", "node_update",
		"node_delete", "folder_create", "link_add", "link_remove",
		"node_list", "node_search", "template_list", "template_save",
		"template_instantiate", "task_list", "graph_view", "history",
	}
	tools := allTools(o)
	require.Len(t, tools, len(want))

	var got []string
	for _, tl := range tools {
		def := tl.Definition()
		got = append(got, def.Name)
		if def.Name == "project_list" {
			continue
		}
		_, ok := def.InputSchema.Properties["project"]
		assert.True(t, ok, "%s must take a project argument", def.Name)
	}
	assert.ElementsMatch(t, want, got)
}

func TestProjectList_ReturnsRegistryEntries(t *testing.T) {
	o, proj := newTestOpener(t)
	tl := &projectListTool{opener: o}

	res, err := tl.Handle(context.Background(), callReq(nil))
	require.NoError(t, err)

	list := resultList(t, res)
	require.Len(t, list, 1)
	entry := list[0].(map[string]any)
	assert.Equal(t, proj.ID, entry["id"])
	assert.Equal(t, "demo", entry["name"])
}

func TestNodeTools_Lifecycle(t *testing.T) {
	o, _ := newTestOpener(t)
	ctx := context.Background()

	create := &nodeCreateTool{opener: o}
	res, err := create.Handle(ctx, callReq(map[string]any{
		"project":    "demo",
		"parentPath": "nodes",
		"name":       "Agent Notes",
		"metadata":   map[string]any{"tags": []any{"agent"}},
	}))
	require.NoError(t, err)
	doc := resultDoc(t, res)
	assert.Equal(t, "nodes/Agent Notes.md", doc["path"])

	read := &nodeReadTool{opener: o}
	res, err = read.Handle(ctx, callReq(map[string]any{
		"project": "demo",
		"path":    "nodes/Agent Notes.md",
	}))
	require.NoError(t, err)
	doc = resultDoc(t, res)
	meta := doc["metadata"].(map[string]any)
	assert.Equal(t, "Agent Notes", meta["title"])
	assert.Contains(t, doc["content"], "# Agent Notes")

	update := &nodeUpdateTool{opener: o}
	res, err = update.Handle(ctx, callReq(map[string]any{
		"project":  "demo",
		"path":     "nodes/Agent Notes.md",
		"metadata": map[string]any{"title": "Agent Notes v2"},
		"content":  "# Agent Notes v2\n\nRewritten.\n",
	}))
	require.NoError(t, err)
	doc = resultDoc(t, res)
	meta = doc["metadata"].(map[string]any)
	assert.Equal(t, "Agent Notes v2", meta["title"])

	del := &nodeDeleteTool{opener: o}
	res, err = del.Handle(ctx, callReq(map[string]any{
		"project": "demo",
		"path":    "nodes/Agent Notes.md",
	}))
	require.NoError(t, err)
	assert.Equal(t, "nodes/Agent Notes.md", resultDoc(t, res)["deleted"])

	res, err = read.Handle(ctx, callReq(map[string]any{
		"project": "demo",
		"path":    "nodes/Agent Notes.md",
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, res), "not found")
}

func TestNodeTools_ArgumentErrors(t *testing.T) {
	o, _ := newTestOpener(t)
	ctx := context.Background()

	create := &nodeCreateTool{opener: o}

	res, err := create.Handle(ctx, callReq(map[string]any{"name": "X"}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "missing project must fail")

	res, err = create.Handle(ctx, callReq(map[string]any{"project": "demo"}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "missing name must fail")

	res, err = create.Handle(ctx, callReq(map[string]any{
		"project":  "demo",
		"name":     "X",
		"metadata": "not-an-object",
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, res), "metadata must be an object")
}

func TestOpenProject_UnknownRef(t *testing.T) {
	o, _ := newTestOpener(t)

	read := &nodeReadTool{opener: o}
	res, err := read.Handle(context.Background(), callReq(map[string]any{
		"project": "no-such-project",
		"path":    "nodes",
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, res), "project not found")
}

func TestLinkTools_AddAndRemove(t *testing.T) {
	o, _ := newTestOpener(t)
	ctx := context.Background()

	create := &nodeCreateTool{opener: o}
	for _, name := range []string{"Source", "Target"} {
		res, err := create.Handle(ctx, callReq(map[string]any{
			"project":    "demo",
			"parentPath": "nodes",
			"name":       name,
		}))
		require.NoError(t, err)
		resultDoc(t, res)
	}

	add := &linkAddTool{opener: o}
	res, err := add.Handle(ctx, callReq(map[string]any{
		"project":    "demo",
		"sourcePath": "nodes/Source.md",
		"targetPath": "nodes/Target.md",
	}))
	require.NoError(t, err)
	doc := resultDoc(t, res)
	links := doc["softLinks"].([]any)
	require.Len(t, links, 1)
	targetID := links[0].(string)

	remove := &linkRemoveTool{opener: o}
	res, err = remove.Handle(ctx, callReq(map[string]any{
		"project":    "demo",
		"sourcePath": "nodes/Source.md",
		"targetId":   targetID,
	}))
	require.NoError(t, err)
	doc = resultDoc(t, res)
	assert.Empty(t, doc["softLinks"])
}

func TestListAndSearchTools(t *testing.T) {
	o, _ := newTestOpener(t)
	ctx := context.Background()

	create := &nodeCreateTool{opener: o}
	_, err := create.Handle(ctx, callReq(map[string]any{
		"project":    "demo",
		"parentPath": "nodes",
		"name":       "Roadmap",
		"content":    "# Roadmap\n\nShip the beta.\n",
	}))
	require.NoError(t, err)

	list := &nodeListTool{opener: o}
	res, err := list.Handle(ctx, callReq(map[string]any{
		"project":   "demo",
		"directory": "nodes",
	}))
	require.NoError(t, err)
	entries := resultList(t, res)
	require.Len(t, entries, 1)
	assert.Equal(t, "nodes/Roadmap.md", entries[0].(map[string]any)["path"])

	search := &nodeSearchTool{opener: o}
	res, err = search.Handle(ctx, callReq(map[string]any{
		"project": "demo",
		"query":   "beta",
	}))
	require.NoError(t, err)
	hits := resultList(t, res)
	require.Len(t, hits, 1)
	assert.Equal(t, "nodes/Roadmap.md", hits[0].(map[string]any)["path"])

	res, err = search.Handle(ctx, callReq(map[string]any{
		"project":  "demo",
		"selector": "$[?(",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "bad selector must fail")
}

func TestTemplateTools_SaveListInstantiate(t *testing.T) {
	o, _ := newTestOpener(t)
	ctx := context.Background()

	create := &nodeCreateTool{opener: o}
	_, err := create.Handle(ctx, callReq(map[string]any{
		"project":    "demo",
		"parentPath": "nodes",
		"name":       "Meeting",
		"content":    "# {{title}}\n\nAgenda: {{description}}\n",
	}))
	require.NoError(t, err)

	save := &templateSaveTool{opener: o}
	res, err := save.Handle(ctx, callReq(map[string]any{
		"project":      "demo",
		"sourcePath":   "nodes/Meeting.md",
		"templateName": "meeting",
	}))
	require.NoError(t, err)
	doc := resultDoc(t, res)
	assert.Equal(t, "templates/meeting.md", doc["path"])

	list := &templateListTool{opener: o}
	res, err = list.Handle(ctx, callReq(map[string]any{"project": "demo"}))
	require.NoError(t, err)
	names := map[string]bool{}
	for _, e := range resultList(t, res) {
		names[e.(map[string]any)["name"].(string)] = true
	}
	assert.True(t, names["meeting.md"])
	assert.True(t, names["empty.md"], "default template is seeded on open")

	inst := &templateInstantiateTool{opener: o}
	res, err = inst.Handle(ctx, callReq(map[string]any{
		"project":      "demo",
		"name":         "Standup",
		"templateName": "meeting",
		"overrides":    map[string]any{"description": "daily sync"},
	}))
	require.NoError(t, err)
	doc = resultDoc(t, res)
	assert.Equal(t, "nodes/Standup.md", doc["path"])
	assert.Contains(t, doc["content"], "# Standup")
	assert.Contains(t, doc["content"], "Agenda: daily sync")
}

func TestTaskListTool_FiltersByStatus(t *testing.T) {
	o, _ := newTestOpener(t)
	ctx := context.Background()

	create := &nodeCreateTool{opener: o}
	for name, status := range map[string]string{"Open": "todo", "Closed": "done"} {
		_, err := create.Handle(ctx, callReq(map[string]any{
			"project":    "demo",
			"parentPath": "nodes",
			"name":       name,
			"type":       "task",
			"metadata": map[string]any{
				"task": map[string]any{"status": status, "priority": "high"},
			},
		}))
		require.NoError(t, err)
	}

	tasks := &taskListTool{opener: o}
	res, err := tasks.Handle(ctx, callReq(map[string]any{
		"project": "demo",
		"status":  "todo",
	}))
	require.NoError(t, err)
	list := resultList(t, res)
	require.Len(t, list, 1)
	entry := list[0].(map[string]any)
	assert.Equal(t, "nodes/Open.md", entry["path"])
	assert.Equal(t, "high", entry["priority"])
}

func TestGraphViewTool_ReturnsEdges(t *testing.T) {
	o, _ := newTestOpener(t)
	ctx := context.Background()

	folder := &folderCreateTool{opener: o}
	_, err := folder.Handle(ctx, callReq(map[string]any{
		"project": "demo",
		"name":    "area",
	}))
	require.NoError(t, err)

	create := &nodeCreateTool{opener: o}
	_, err = create.Handle(ctx, callReq(map[string]any{
		"project":    "demo",
		"parentPath": "area",
		"name":       "Leaf",
	}))
	require.NoError(t, err)

	graph := &graphViewTool{opener: o}
	res, err := graph.Handle(ctx, callReq(map[string]any{"project": "demo"}))
	require.NoError(t, err)
	doc := resultDoc(t, res)

	var found bool
	for _, e := range doc["edges"].([]any) {
		edge := e.(map[string]any)
		if edge["source"] == "area" && edge["target"] == "area/Leaf.md" {
			found = true
			assert.Equal(t, "hard", edge["type"])
		}
	}
	assert.True(t, found, "containment edge missing from graph view")
}

func TestEncodeResult_SortsKeys(t *testing.T) {
	out, err := encodeResult(map[string]any{"zeta": 1, "alpha": 2, "mid": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, out)
}

func TestServer_EndToEndOverInProcessTransport(t *testing.T) {
	o, _ := newTestOpener(t)
	srv := NewServer(o, "test")

	c, err := client.NewInProcessClient(srv)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "weft-test", Version: "0.0.1"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	assert.Len(t, tools.Tools, 16)

	call := mcp.CallToolRequest{}
	call.Params.Name = "node_create"
	call.Params.Arguments = map[string]any{
		"project":    "demo",
		"parentPath": "nodes",
		"name":       "Wire Check",
	}
	res, err := c.CallTool(ctx, call)
	require.NoError(t, err)
	doc := resultDoc(t, res)
	assert.Equal(t, "nodes/Wire Check.md", doc["path"])
}
