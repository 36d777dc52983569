package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/weftworks/weft/api"
	"github.com/weftworks/weft/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.ProjectsRoot = t.TempDir()
	cfg.Registry = filepath.Join(cfg.ProjectsRoot, "registry.db")
	return cfg
}

func openTestWorkspace(t *testing.T, cfg *config.Config, proj api.Project) *Workspace {
	t.Helper()
	w, err := Open(cfg, proj, zaptest.NewLogger(t))
	require.NoError(t, err)
	return w
}

func TestOpen_RootFromProjectID(t *testing.T) {
	cfg := testConfig(t)
	proj := api.NewProject("research", "", api.GitConfig{})

	w := openTestWorkspace(t, cfg, proj)

	assert.Equal(t, filepath.Join(cfg.ProjectsRoot, proj.ID), w.Root())
	assert.Equal(t, proj.ID, w.Project.ID)
}

func TestOpen_ExplicitPathWins(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	proj := api.NewProject("pinned", "", api.GitConfig{Path: dir})

	w := openTestWorkspace(t, cfg, proj)

	assert.Equal(t, filepath.Clean(dir), w.Root())
}

func TestOpen_RelativePathUnderProjectsRoot(t *testing.T) {
	cfg := testConfig(t)
	proj := api.NewProject("nested", "", api.GitConfig{Path: "trees/nested"})

	w := openTestWorkspace(t, cfg, proj)

	assert.Equal(t, filepath.Join(cfg.ProjectsRoot, "trees", "nested"), w.Root())
}

func TestOpen_RejectsUnrootedProject(t *testing.T) {
	cfg := testConfig(t)

	_, err := Open(cfg, api.Project{Name: "ghost"}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestProvision_SeedsSkeleton(t *testing.T) {
	cfg := testConfig(t)
	proj := api.NewProject("fresh", "", api.GitConfig{})
	w := openTestWorkspace(t, cfg, proj)
	ctx := context.Background()

	require.NoError(t, w.Provision(ctx))

	for _, name := range []string{
		".gitignore",
		filepath.Join(api.NodesDir, api.MarkerName),
		filepath.Join(api.TemplatesDir, api.MarkerName),
		filepath.Join(api.TemplatesDir, "empty.md"),
	} {
		_, err := os.Stat(filepath.Join(w.Root(), name))
		assert.NoError(t, err, name)
	}

	// The seeded skeleton is visible through the store.
	nodes, err := w.Store.Read(ctx, api.NodesDir)
	require.NoError(t, err)
	require.NotNil(t, nodes)
	assert.True(t, nodes.IsDirectory)

	tpl, err := w.Store.Read(ctx, "templates/empty.md")
	require.NoError(t, err)
	require.NotNil(t, tpl)
	assert.Equal(t, "Empty Node", tpl.Metadata.Title)
	assert.Equal(t, "template", tpl.Metadata.Type)
}

func TestProvision_Idempotent(t *testing.T) {
	cfg := testConfig(t)
	proj := api.NewProject("twice", "", api.GitConfig{})
	w := openTestWorkspace(t, cfg, proj)
	ctx := context.Background()

	require.NoError(t, w.Provision(ctx))
	first, err := w.Store.Read(ctx, "templates/empty.md")
	require.NoError(t, err)
	require.NotNil(t, first)

	require.NoError(t, w.Provision(ctx))
	second, err := w.Store.Read(ctx, "templates/empty.md")
	require.NoError(t, err)
	require.NotNil(t, second)

	// Re-provisioning never replaces the existing default template.
	assert.Equal(t, first.Metadata.ID, second.Metadata.ID)
	assert.Equal(t, first.Metadata.Created, second.Metadata.Created)
}

func TestWorkspace_StoreWritesLandOnDisk(t *testing.T) {
	cfg := testConfig(t)
	proj := api.NewProject("writer", "", api.GitConfig{})
	w := openTestWorkspace(t, cfg, proj)
	ctx := context.Background()

	require.NoError(t, w.Provision(ctx))
	node, err := w.Store.Create(ctx, api.NodesDir, "Field Notes", "file", nil, nil)
	require.NoError(t, err)
	require.NotNil(t, node)

	raw, err := os.ReadFile(filepath.Join(w.Root(), "nodes", "Field Notes.md"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# Field Notes")
	assert.Contains(t, string(raw), "title: Field Notes")
}

func TestWorkspace_EngineSharesTree(t *testing.T) {
	cfg := testConfig(t)
	proj := api.NewProject("shared", "", api.GitConfig{})
	w := openTestWorkspace(t, cfg, proj)
	ctx := context.Background()

	require.NoError(t, w.Provision(ctx))

	node, err := w.Engine.Instantiate(ctx, "nodes", "From Default", api.DefaultTemplateName, nil)
	require.NoError(t, err)
	require.Equal(t, "nodes/From Default.md", node.Path)

	// The instantiated node is a plain file on disk under the same root.
	_, err = os.Stat(filepath.Join(w.Root(), "nodes", "From Default.md"))
	assert.NoError(t, err)
}
