package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/weftworks/weft/api"
)

// Graph assembles the relation view over the whole tree: every
// non-template node, a hard edge for each containment pair, and a soft
// edge for each metadata link whose target id resolves to a listed
// node. Links pointing at unknown ids are dropped rather than rendered
// as dangling edges.
func (s *Store) Graph(ctx context.Context) (*api.Graph, error) {
	nodes, err := s.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}

	idToPath := make(map[string]string, len(nodes))
	for _, n := range nodes {
		if n.Metadata.ID != "" {
			idToPath[n.Metadata.ID] = n.Path
		}
	}

	g := &api.Graph{
		Nodes: nodes,
		Edges: []*api.Edge{},
	}
	for _, n := range nodes {
		if parent := n.HardLinks.Parent; parent != nil {
			g.Edges = append(g.Edges, &api.Edge{
				ID:     fmt.Sprintf("hard-%s-%s", *parent, n.Path),
				Source: *parent,
				Target: n.Path,
				Type:   api.EdgeHard,
				Label:  "contains",
			})
		}
		for _, targetID := range n.SoftLinks {
			targetPath, ok := idToPath[targetID]
			if !ok {
				continue
			}
			g.Edges = append(g.Edges, &api.Edge{
				ID:     fmt.Sprintf("soft-%s-%s", n.Path, targetPath),
				Source: n.Path,
				Target: targetPath,
				Type:   api.EdgeSoft,
			})
		}
	}
	return g, nil
}

// Backlinks returns the paths of every node whose links name the node
// at path, sorted.
func (s *Store) Backlinks(ctx context.Context, rawPath string) ([]string, error) {
	p, err := CleanPath(rawPath)
	if err != nil {
		return nil, err
	}
	node, err := s.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("backlinks %q: %w", p, api.ErrNotFound)
	}
	if err := s.ensureIndex(); err != nil {
		return nil, err
	}
	paths := s.index.backlinks(node.Metadata.ID)
	sort.Strings(paths)
	return paths, nil
}

// ResolveID maps a node id to its current path.
func (s *Store) ResolveID(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("resolve id: empty id: %w", api.ErrInvalidArgument)
	}
	if err := s.ensureIndex(); err != nil {
		return "", err
	}
	p, ok := s.index.pathForID(id)
	if !ok {
		return "", fmt.Errorf("resolve id %q: %w", id, api.ErrNotFound)
	}
	return p, nil
}
