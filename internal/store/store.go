package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"

	"github.com/weftworks/weft/api"
	"github.com/weftworks/weft/internal/codec"
)

// Recorder is the store's view of the repository manager: best-effort
// mutation recording, never an error.
type Recorder interface {
	StageAndCommit(ctx context.Context, message string, paths ...string)
	RemoveAndCommit(ctx context.Context, message string, paths ...string)
}

// noopRecorder drops every record; used when no manager is wired.
type noopRecorder struct{}

func (noopRecorder) StageAndCommit(context.Context, string, ...string)  {}
func (noopRecorder) RemoveAndCommit(context.Context, string, ...string) {}

// Store is path-addressed CRUD over one project tree.
type Store struct {
	fs    billy.Filesystem
	rec   Recorder
	log   *zap.Logger
	index *pathIndex
}

// New builds a store over fs, recording mutations through rec. A nil rec
// disables recording, a nil log disables logging.
func New(fs billy.Filesystem, rec Recorder, log *zap.Logger) *Store {
	if rec == nil {
		rec = noopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{fs: fs, rec: rec, log: log, index: newPathIndex()}
}

// MarkStale invalidates the path index; the next listing rebuilds it
// from disk.
func (s *Store) MarkStale() { s.index.markStale() }

// Read returns the node at path, or (nil, nil) when nothing is there.
// Single-path reads are always disk-authoritative.
func (s *Store) Read(ctx context.Context, rawPath string) (*api.Node, error) {
	p, err := CleanPath(rawPath)
	if err != nil {
		return nil, err
	}
	fi, err := s.fs.Stat(fsPath(p))
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	return s.readNode(p, fi)
}

// Create writes a new structured node under parentPath and records it.
// An existing file at the target path is overwritten (last write wins).
func (s *Store) Create(ctx context.Context, parentPath, name, nodeType string, initialMeta map[string]any, initialContent *string) (*api.Node, error) {
	parent, err := CleanPath(parentPath)
	if err != nil {
		return nil, err
	}
	fileName, title, err := structuredFileName(name)
	if err != nil {
		return nil, err
	}
	full := joinPath(parent, fileName)

	now := api.Now()
	meta := api.Metadata{
		ID:       api.NewNodeID(),
		Title:    title,
		Type:     nodeType,
		Created:  now,
		Modified: now,
	}
	meta.ApplyUpdates(initialMeta)

	body := "# " + meta.Title + "\n\n"
	if initialContent != nil {
		body = *initialContent
	}

	if err := s.ensureDir(parent); err != nil {
		return nil, err
	}
	if err := s.writeFileAtomic(full, codec.Encode(meta, body)); err != nil {
		return nil, err
	}

	node, err := s.Read(ctx, full)
	if err != nil {
		return nil, err
	}
	s.indexAfterWrite(node)
	s.rec.StageAndCommit(ctx, "Created node: "+meta.Title, full)
	return node, nil
}

// Update merges metadata updates onto the node at path and optionally
// replaces the body. Structured files are re-encoded in place; opaque
// files and directories persist metadata through their sidecar.
func (s *Store) Update(ctx context.Context, rawPath string, updates map[string]any, content *string) (*api.Node, error) {
	p, err := CleanPath(rawPath)
	if err != nil {
		return nil, err
	}
	node, err := s.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %s", api.ErrNotFound, p)
	}

	meta := node.Metadata.Clone()
	meta.ApplyUpdates(updates)
	meta.Modified = api.Now()

	if node.IsStructured {
		body := ""
		if node.Content != nil {
			body = *node.Content
		}
		if content != nil {
			body = *content
		}
		if err := s.writeFileAtomic(p, codec.Encode(meta, body)); err != nil {
			return nil, err
		}
		updated, err := s.Read(ctx, p)
		if err != nil {
			return nil, err
		}
		s.indexAfterWrite(updated)
		s.rec.StageAndCommit(ctx, "Updated node: "+meta.Title, p)
		return updated, nil
	}

	sidecar := sidecarFor(p)
	if err := s.writeFileAtomic(sidecar, codec.EncodeSidecar(meta)); err != nil {
		return nil, err
	}
	updated, err := s.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	s.indexAfterWrite(updated)
	s.rec.StageAndCommit(ctx, "Updated metadata for: "+meta.Title, sidecar)
	return updated, nil
}

// Delete removes the node at path (recursively for directories) plus
// its sidecar, and records the removal.
func (s *Store) Delete(ctx context.Context, rawPath string) error {
	p, err := CleanPath(rawPath)
	if err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("%w: refusing to delete the project root", api.ErrInvalidArgument)
	}
	fi, err := s.fs.Stat(p)
	if err != nil {
		if isNotExist(err) {
			return fmt.Errorf("%w: %s", api.ErrNotFound, p)
		}
		return fmt.Errorf("stat %s: %w", p, err)
	}

	removed := []string{p}
	if fi.IsDir() {
		if err := util.RemoveAll(s.fs, p); err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	} else {
		if err := s.fs.Remove(p); err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}

	sidecar := sidecarFor(p)
	if _, err := s.fs.Stat(sidecar); err == nil {
		if err := s.fs.Remove(sidecar); err != nil {
			return fmt.Errorf("remove sidecar %s: %w", sidecar, err)
		}
		removed = append(removed, sidecar)
	}

	s.index.remove(p)
	s.refreshParent(p)
	s.rec.RemoveAndCommit(ctx, "Deleted node: "+baseOf(p), removed...)
	return nil
}

// CreateFolder creates a directory node: the directory itself, a hidden
// marker so the empty directory stays trackable, and a sidecar holding
// its persisted identity.
func (s *Store) CreateFolder(ctx context.Context, parentPath, name string) (*api.Node, error) {
	parent, err := CleanPath(parentPath)
	if err != nil {
		return nil, err
	}
	folderName, err := sanitizedName(name)
	if err != nil {
		return nil, err
	}
	full := joinPath(parent, folderName)

	if err := s.fs.MkdirAll(full, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", full, err)
	}
	marker := joinPath(full, api.MarkerName)
	if err := util.WriteFile(s.fs, marker, nil, 0o644); err != nil {
		return nil, fmt.Errorf("write marker: %w", err)
	}

	now := api.Now()
	meta := api.Metadata{
		ID:       api.NewNodeID(),
		Title:    folderName,
		Type:     "folder",
		Created:  now,
		Modified: now,
	}
	sidecar := sidecarFor(full)
	if err := s.writeFileAtomic(sidecar, codec.EncodeSidecar(meta)); err != nil {
		return nil, err
	}

	node, err := s.Read(ctx, full)
	if err != nil {
		return nil, err
	}
	s.indexAfterWrite(node)
	s.rec.StageAndCommit(ctx, "Created folder: "+folderName, full, sidecar)
	return node, nil
}

// AddLink appends the target node's id to the source node's links.
// Adding a link that is already present changes nothing and records
// nothing.
func (s *Store) AddLink(ctx context.Context, sourcePath, targetPath string) (*api.Node, error) {
	src, err := s.Read(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %s", api.ErrNotFound, sourcePath)
	}
	target, err := s.Read(ctx, targetPath)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", api.ErrNotFound, targetPath)
	}

	id := target.Metadata.ID
	for _, existing := range src.SoftLinks {
		if existing == id {
			return src, nil
		}
	}
	links := append(append([]string{}, src.SoftLinks...), id)
	return s.Update(ctx, src.Path, map[string]any{"links": links}, nil)
}

// RemoveLink drops targetID from the source node's links; removing an
// absent id is a no-op without a write or a commit.
func (s *Store) RemoveLink(ctx context.Context, sourcePath, targetID string) (*api.Node, error) {
	src, err := s.Read(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %s", api.ErrNotFound, sourcePath)
	}

	links := make([]string, 0, len(src.SoftLinks))
	for _, existing := range src.SoftLinks {
		if existing != targetID {
			links = append(links, existing)
		}
	}
	if len(links) == len(src.SoftLinks) {
		return src, nil
	}
	return s.Update(ctx, src.Path, map[string]any{"links": links}, nil)
}

// ListOptions narrows a listing.
type ListOptions struct {
	// Dir restricts the listing to that subtree, exclusive of the
	// directory itself.
	Dir string
	// IncludeTemplates restores nodes under the reserved templates
	// directory, excluded by default.
	IncludeTemplates bool
}

// List returns a flat slice of every visible node, sorted by path.
// Hidden entries and sidecars never appear.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*api.Node, error) {
	dir, err := CleanPath(opts.Dir)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		fi, err := s.fs.Stat(dir)
		if err != nil {
			if isNotExist(err) {
				return nil, fmt.Errorf("%w: %s", api.ErrNotFound, dir)
			}
			return nil, fmt.Errorf("stat %s: %w", dir, err)
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", api.ErrInvalidArgument, dir)
		}
	}

	if err := s.ensureIndex(); err != nil {
		return nil, err
	}

	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}
	nodes := []*api.Node{}
	for _, n := range s.index.nodes() {
		if prefix != "" && !strings.HasPrefix(n.Path, prefix) {
			continue
		}
		if !opts.IncludeTemplates && hasTemplatesSegment(n.Path) {
			continue
		}
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Path < nodes[j].Path })
	return nodes, nil
}

// SearchOptions narrows a search; zero values are "match everything".
type SearchOptions struct {
	// Query is a case-insensitive substring matched against title and body.
	Query string
	// Type matches the metadata type exactly.
	Type string
	// HasTask filters on task presence when non-nil.
	HasTask *bool
	// Selector is a JSONPath expression evaluated against the node; a
	// selector that yields at least one value keeps the node.
	Selector string
}

// Search filters the full listing by the given options.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]*api.Node, error) {
	var sel jp.Expr
	if opts.Selector != "" {
		parsed, err := jp.ParseString(opts.Selector)
		if err != nil {
			return nil, fmt.Errorf("%w: selector %q: %v", api.ErrInvalidArgument, opts.Selector, err)
		}
		sel = parsed
	}

	nodes, err := s.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(opts.Query)
	out := []*api.Node{}
	for _, n := range nodes {
		if opts.Type != "" && n.Metadata.Type != opts.Type {
			continue
		}
		if opts.HasTask != nil && n.HasTask != *opts.HasTask {
			continue
		}
		if query != "" && !matchesQuery(n, query) {
			continue
		}
		if sel != nil && !matchesSelector(sel, n) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func matchesQuery(n *api.Node, lowered string) bool {
	if strings.Contains(strings.ToLower(n.Metadata.Title), lowered) {
		return true
	}
	return n.Content != nil && strings.Contains(strings.ToLower(*n.Content), lowered)
}

// matchesSelector evaluates the JSONPath expression against the node's
// decomposed (generic JSON) form.
func matchesSelector(sel jp.Expr, n *api.Node) bool {
	data, err := json.Marshal(n)
	if err != nil {
		return false
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return false
	}
	return len(sel.Get(doc)) > 0
}

// readNode assembles the unified node view for a stat'ed path.
func (s *Store) readNode(p string, fi os.FileInfo) (*api.Node, error) {
	name := baseOf(p)
	title := strings.TrimSuffix(name, api.StructuredSuffix)
	mtime := api.FormatTime(fi.ModTime())
	meta := api.Metadata{
		ID:       api.DerivedNodeID(p),
		Title:    title,
		Type:     "file",
		Created:  mtime,
		Modified: mtime,
	}

	node := &api.Node{
		Path:        p,
		Name:        name,
		IsDirectory: fi.IsDir(),
		HardLinks:   api.HardLinks{Parent: parentOf(p)},
	}

	switch {
	case fi.IsDir():
		meta.Type = "folder"
		if side, ok := s.readSidecar(p); ok {
			meta = overlayMetadata(meta, side)
		}
		children, err := s.readChildren(p)
		if err != nil {
			return nil, err
		}
		node.HardLinks.Children = children

	case isStructuredPath(p):
		raw, err := util.ReadFile(s.fs, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		decoded, body := codec.Decode(raw)
		meta = overlayMetadata(meta, decoded)
		node.IsStructured = true
		node.Content = api.String(body)

	default:
		if side, ok := s.readSidecar(p); ok {
			meta = overlayMetadata(meta, side)
		}
	}

	node.Metadata = meta
	node.SoftLinks = append([]string{}, meta.Links...)
	if meta.Task != nil {
		node.HasTask = true
		node.TaskStatus = api.String(meta.Task.Status)
	}
	return node, nil
}

// readSidecar decodes the sidecar companion of p, if one exists.
func (s *Store) readSidecar(p string) (api.Metadata, bool) {
	raw, err := util.ReadFile(s.fs, sidecarFor(p))
	if err != nil {
		return api.Metadata{}, false
	}
	meta, _ := codec.Decode(raw)
	return meta, true
}

// readChildren lists the immediate visible children of a directory.
func (s *Store) readChildren(dir string) ([]string, error) {
	entries, err := s.fs.ReadDir(fsPath(dir))
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", dir, err)
	}
	children := []string{}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || isSidecarPath(name) {
			continue
		}
		children = append(children, joinPath(dir, name))
	}
	sort.Strings(children)
	return children, nil
}

// overlayMetadata lays decoded fields over defaults; zero-valued decoded
// fields keep the default.
func overlayMetadata(base, over api.Metadata) api.Metadata {
	if over.ID != "" {
		base.ID = over.ID
	}
	if over.Title != "" {
		base.Title = over.Title
	}
	if over.Type != "" {
		base.Type = over.Type
	}
	if over.Created != "" {
		base.Created = over.Created
	}
	if over.Modified != "" {
		base.Modified = over.Modified
	}
	if over.Tags != nil {
		base.Tags = over.Tags
	}
	if over.Links != nil {
		base.Links = over.Links
	}
	if over.Task != nil {
		base.Task = over.Task
	}
	if over.Position != nil {
		base.Position = over.Position
	}
	if len(over.Extras) > 0 {
		base.Extras = over.Extras
	}
	return base
}

// structuredFileName sanitizes a node name and appends the structured
// suffix when missing; returns the file name and the derived title.
func structuredFileName(name string) (fileName, title string, err error) {
	sanitized, err := sanitizedName(name)
	if err != nil {
		return "", "", err
	}
	fileName = sanitized
	if !strings.HasSuffix(fileName, api.StructuredSuffix) {
		fileName += api.StructuredSuffix
	}
	return fileName, strings.TrimSuffix(sanitized, api.StructuredSuffix), nil
}

// sanitizedName rejects names that sanitize to nothing.
func sanitizedName(name string) (string, error) {
	sanitized := api.SanitizeName(strings.TrimSpace(name))
	if strings.Trim(sanitized, "-. ") == "" {
		return "", fmt.Errorf("%w: name %q sanitizes to empty", api.ErrInvalidArgument, name)
	}
	return sanitized, nil
}

// ensureDir creates the directory chain for a root-relative path.
func (s *Store) ensureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// AtomicWrite writes data through a temp file in the target directory
// and renames it into place, so readers never observe a partial node.
func AtomicWrite(fs billy.Filesystem, p string, data []byte) error {
	dir := dirOf(p)
	tmp, err := util.TempFile(fs, fsPath(dir), ".weft-")
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", p, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("close %s: %w", p, err)
	}
	if err := fs.Rename(tmpName, p); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", p, err)
	}
	return nil
}

func (s *Store) writeFileAtomic(p string, data []byte) error {
	return AtomicWrite(s.fs, p, data)
}

// indexAfterWrite refreshes the mutated node and its parent directory in
// the index.
func (s *Store) indexAfterWrite(n *api.Node) {
	if n == nil {
		return
	}
	s.index.put(n.Clone())
	s.refreshParent(n.Path)
}

// refreshParent re-reads the containing directory so its child list in
// the index stays current.
func (s *Store) refreshParent(p string) {
	if s.index.stale() {
		return
	}
	dir := dirOf(p)
	if dir == "" {
		return
	}
	fi, err := s.fs.Stat(dir)
	if err != nil {
		return
	}
	parent, err := s.readNode(dir, fi)
	if err != nil {
		return
	}
	s.index.put(parent)
}

// ensureIndex builds the path index with one walk when it is stale.
func (s *Store) ensureIndex() error {
	if !s.index.stale() {
		return nil
	}
	return s.index.build(func(visit func(*api.Node)) error {
		return s.walk("", visit)
	})
}

// walk visits every visible node under dir, depth first.
func (s *Store) walk(dir string, visit func(*api.Node)) error {
	entries, err := s.fs.ReadDir(fsPath(dir))
	if err != nil {
		return fmt.Errorf("readdir %s: %w", dir, err)
	}
	for _, fi := range entries {
		name := fi.Name()
		if strings.HasPrefix(name, ".") || isSidecarPath(name) {
			continue
		}
		full := joinPath(dir, name)
		n, err := s.readNode(full, fi)
		if err != nil {
			s.log.Warn("skipping unreadable node", zap.String("path", full), zap.Error(err))
			continue
		}
		visit(n)
		if fi.IsDir() {
			if err := s.walk(full, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
