package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/api"
)

func TestGraph_HardAndSoftEdges(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateFolder(context.Background(), "", "a")
	require.NoError(t, err)
	mustCreate(t, s, "a", "x", "note")
	mustCreate(t, s, "", "b", "note")
	_, err = s.AddLink(context.Background(), "b.md", "a/x.md")
	require.NoError(t, err)

	g, err := s.Graph(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a/x.md", "b.md"}, nodePaths(g.Nodes))

	require.Len(t, g.Edges, 2)
	hard := g.Edges[0]
	assert.Equal(t, "hard-a-a/x.md", hard.ID)
	assert.Equal(t, "a", hard.Source)
	assert.Equal(t, "a/x.md", hard.Target)
	assert.Equal(t, api.EdgeHard, hard.Type)
	assert.Equal(t, "contains", hard.Label)

	soft := g.Edges[1]
	assert.Equal(t, "soft-b.md-a/x.md", soft.ID)
	assert.Equal(t, "b.md", soft.Source)
	assert.Equal(t, "a/x.md", soft.Target)
	assert.Equal(t, api.EdgeSoft, soft.Type)
	assert.Empty(t, soft.Label)
}

func TestGraph_SkipsUnresolvableLinks(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreate(t, s, "", "b", "note")
	mustCreate(t, s, "", "x", "note")
	_, err := s.AddLink(context.Background(), "b.md", "x.md")
	require.NoError(t, err)
	require.NoError(t, s.Delete(context.Background(), "x.md"))

	g, err := s.Graph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b.md"}, nodePaths(g.Nodes))
	assert.Empty(t, g.Edges, "dangling link must not become an edge")
}

func TestGraph_ExcludesTemplates(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreate(t, s, "", "b", "note")
	mustCreate(t, s, "templates", "tpl", "template")

	g, err := s.Graph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b.md"}, nodePaths(g.Nodes))
}

func TestBacklinks_ListsLinkingNodes(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreate(t, s, "", "target", "note")
	mustCreate(t, s, "", "one", "note")
	mustCreate(t, s, "", "two", "note")
	_, err := s.AddLink(context.Background(), "two.md", "target.md")
	require.NoError(t, err)
	_, err = s.AddLink(context.Background(), "one.md", "target.md")
	require.NoError(t, err)

	back, err := s.Backlinks(context.Background(), "target.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"one.md", "two.md"}, back)
}

func TestBacklinks_EmptyWithoutLinks(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreate(t, s, "", "lonely", "note")

	back, err := s.Backlinks(context.Background(), "lonely.md")
	require.NoError(t, err)
	assert.Empty(t, back)
}

func TestBacklinks_MissingNode(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Backlinks(context.Background(), "ghost.md")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestBacklinks_DropAfterRemoveLink(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreate(t, s, "", "target", "note")
	target, err := s.Read(context.Background(), "target.md")
	require.NoError(t, err)
	mustCreate(t, s, "", "src", "note")
	_, err = s.AddLink(context.Background(), "src.md", "target.md")
	require.NoError(t, err)

	back, err := s.Backlinks(context.Background(), "target.md")
	require.NoError(t, err)
	require.Equal(t, []string{"src.md"}, back)

	_, err = s.RemoveLink(context.Background(), "src.md", target.Metadata.ID)
	require.NoError(t, err)

	back, err = s.Backlinks(context.Background(), "target.md")
	require.NoError(t, err)
	assert.Empty(t, back)
}

func TestResolveID_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	n := mustCreate(t, s, "nodes", "findme", "note")

	p, err := s.ResolveID(context.Background(), n.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, "nodes/findme.md", p)
}

func TestResolveID_Unknown(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.ResolveID(context.Background(), "node-0-000000000")
	assert.ErrorIs(t, err, api.ErrNotFound)

	_, err = s.ResolveID(context.Background(), "")
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}
