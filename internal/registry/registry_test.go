package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/api"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.db")

	r, err := Open(path)
	require.NoError(t, err)
	p := api.NewProject("alpha", "", api.GitConfig{})
	require.NoError(t, r.Create(context.Background(), p))
	require.NoError(t, r.Close())

	r, err = Open(path)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)
}

func TestCreate_AndGet(t *testing.T) {
	r := openTestRegistry(t)
	p := api.NewProject("research", "notes and findings", api.GitConfig{
		URL:      "git@example.com:kim/research.git",
		Type:     "remote",
		AutoPush: true,
	})
	require.NoError(t, r.Create(context.Background(), p))

	got, err := r.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "research", got.Name)
	assert.Equal(t, "notes and findings", got.Description)
	assert.Equal(t, "remote", got.Git.Type)
	assert.Equal(t, "git@example.com:kim/research.git", got.Git.URL)
	assert.Equal(t, "main", got.Git.Branch)
	assert.True(t, got.Git.AutoPush)
	assert.Equal(t, p.CreatedAt, got.CreatedAt)

	byName, err := r.GetByName(context.Background(), "research")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)
}

func TestCreate_DuplicateName(t *testing.T) {
	r := openTestRegistry(t)
	require.NoError(t, r.Create(context.Background(), api.NewProject("dup", "", api.GitConfig{})))

	err := r.Create(context.Background(), api.NewProject("dup", "", api.GitConfig{}))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGet_Missing(t *testing.T) {
	r := openTestRegistry(t)
	_, err := r.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetByName(context.Background(), "no-such-name")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_NameOrID(t *testing.T) {
	r := openTestRegistry(t)
	p := api.NewProject("resolved", "", api.GitConfig{})
	require.NoError(t, r.Create(context.Background(), p))

	byName, err := r.Resolve(context.Background(), "resolved")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)

	byID, err := r.Resolve(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "resolved", byID.Name)

	_, err = r.Resolve(context.Background(), "neither")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_OrderedByName(t *testing.T) {
	r := openTestRegistry(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Create(context.Background(), api.NewProject(name, "", api.GitConfig{})))
	}

	projects, err := r.List(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestUpdateGitPath(t *testing.T) {
	r := openTestRegistry(t)
	p := api.NewProject("movable", "", api.GitConfig{})
	require.NoError(t, r.Create(context.Background(), p))

	require.NoError(t, r.UpdateGitPath(context.Background(), p.ID, "/srv/weft/movable"))

	got, err := r.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "/srv/weft/movable", got.Git.Path)

	err = r.UpdateGitPath(context.Background(), "ghost", "/tmp/x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	r := openTestRegistry(t)
	p := api.NewProject("doomed", "", api.GitConfig{})
	require.NoError(t, r.Create(context.Background(), p))

	require.NoError(t, r.Delete(context.Background(), p.ID))

	_, err := r.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = r.Delete(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
