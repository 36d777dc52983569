// Package templates treats the reserved templates directory as a
// library of reusable node skeletons: save a node as a template,
// stamp new nodes out of one, and keep a canonical empty template
// provisioned.
package templates

import (
	"context"
	"fmt"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"github.com/weftworks/weft/api"
	"github.com/weftworks/weft/internal/codec"
	"github.com/weftworks/weft/internal/store"
)

// Engine manages template files. It writes them through its own
// Recorder so template mutations carry their own commit messages;
// instantiation goes through the Store like any other node creation.
type Engine struct {
	fs  billy.Filesystem
	st  *store.Store
	rec store.Recorder
	log *zap.Logger
}

// NewEngine builds an engine over the same filesystem the store uses.
func NewEngine(fs billy.Filesystem, st *store.Store, rec store.Recorder, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{fs: fs, st: st, rec: rec, log: log}
}

// EnsureDefault provisions the canonical empty template once. An
// existing file is never touched, so its identity and timestamps
// survive repeated initialization.
func (e *Engine) EnsureDefault(ctx context.Context) error {
	path, err := templatePath(api.DefaultTemplateName)
	if err != nil {
		return err
	}
	if _, err := e.fs.Stat(path); err == nil {
		return nil
	}

	meta, body := api.DefaultTemplate()
	if err := e.fs.MkdirAll(api.TemplatesDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", api.TemplatesDir, err)
	}
	if err := store.AtomicWrite(e.fs, path, codec.Encode(meta, body)); err != nil {
		return err
	}
	e.st.MarkStale()
	e.rec.StageAndCommit(ctx, "Add default template", path)
	return nil
}

// List returns the structured files directly inside the templates
// directory, sorted by path. A project without a templates directory
// simply has no templates.
func (e *Engine) List(ctx context.Context) ([]*api.Node, error) {
	entries, err := e.fs.ReadDir(api.TemplatesDir)
	if err != nil {
		return []*api.Node{}, nil
	}

	nodes := []*api.Node{}
	for _, fi := range entries {
		name := fi.Name()
		if fi.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.HasSuffix(name, api.StructuredSuffix) || strings.HasSuffix(name, api.SidecarSuffix) {
			continue
		}
		n, err := e.st.Read(ctx, api.TemplatesDir+"/"+name)
		if err != nil {
			return nil, err
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Path < nodes[j].Path })
	return nodes, nil
}

// SaveFrom copies the structured node at sourcePath into the template
// library under templateName, stripping everything that binds the copy
// to the source's identity: fresh id, fresh timestamps, no links, no
// layout position, and a task block reduced to its reusable skeleton.
func (e *Engine) SaveFrom(ctx context.Context, sourcePath, templateName string) (*api.Node, error) {
	src, err := e.st.Read(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %s", api.ErrNotFound, sourcePath)
	}
	if src.IsDirectory {
		return nil, fmt.Errorf("%w: %s is a directory", api.ErrInvalidArgument, sourcePath)
	}
	if !src.IsStructured {
		return nil, fmt.Errorf("%w: %s is not a structured node", api.ErrInvalidArgument, sourcePath)
	}

	name, err := cleanTemplateName(templateName)
	if err != nil {
		return nil, err
	}
	path, err := templatePath(name)
	if err != nil {
		return nil, err
	}

	now := api.Now()
	meta := src.Metadata.Clone()
	meta.ID = api.NewNodeID()
	meta.Title = name
	meta.Type = "template"
	meta.Created = now
	meta.Modified = now
	meta.Links = nil
	meta.Position = nil
	if meta.Task != nil {
		meta.Task = &api.Task{
			Status:      api.TaskStatusTodo,
			Priority:    meta.Task.Priority,
			Description: meta.Task.Description,
		}
	}

	body := ""
	if src.Content != nil {
		body = *src.Content
	}

	if err := e.fs.MkdirAll(api.TemplatesDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", api.TemplatesDir, err)
	}
	if err := store.AtomicWrite(e.fs, path, codec.Encode(meta, body)); err != nil {
		return nil, err
	}
	e.st.MarkStale()
	e.rec.StageAndCommit(ctx, "Saved template: "+name, path)
	return e.st.Read(ctx, path)
}

// Instantiate creates a new node from the named template. The node
// gets a fresh identity and the caller's name; the template supplies
// the rest of the metadata and a body with {{title}} and
// {{description}} substituted.
func (e *Engine) Instantiate(ctx context.Context, parentPath, name, templateName string, overrides map[string]any) (*api.Node, error) {
	tplName, err := cleanTemplateName(templateName)
	if err != nil {
		return nil, err
	}
	path, err := templatePath(tplName)
	if err != nil {
		return nil, err
	}
	tpl, err := e.st.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: template %q", api.ErrNotFound, tplName)
	}

	parent, err := store.CleanPath(parentPath)
	if err != nil {
		return nil, err
	}
	if parent == "" {
		parent = api.NodesDir
	}

	nodeType := "file"
	if t := tpl.Metadata.Type; t != "" && t != "template" {
		nodeType = t
	}

	initialMeta := map[string]any{}
	if tpl.Metadata.Tags != nil {
		initialMeta["tags"] = tpl.Metadata.Tags
	}
	if tpl.Metadata.Task != nil {
		initialMeta["task"] = tpl.Metadata.Task
	}
	for k, v := range tpl.Metadata.Extras {
		initialMeta[k] = v
	}
	for k, v := range overrides {
		initialMeta[k] = v
	}

	body := ""
	if tpl.Content != nil {
		body = *tpl.Content
	}
	body = strings.ReplaceAll(body, api.PlaceholderTitle, name)
	body = strings.ReplaceAll(body, api.PlaceholderDescription, descriptionOf(initialMeta))

	return e.st.Create(ctx, parent, name, nodeType, initialMeta, &body)
}

// Delete removes the named template.
func (e *Engine) Delete(ctx context.Context, templateName string) error {
	name, err := cleanTemplateName(templateName)
	if err != nil {
		return err
	}
	path, err := templatePath(name)
	if err != nil {
		return err
	}
	if _, err := e.fs.Stat(path); err != nil {
		return fmt.Errorf("%w: template %q", api.ErrNotFound, name)
	}
	if err := e.fs.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	e.st.MarkStale()
	e.rec.RemoveAndCommit(ctx, "Deleted template: "+name, path)
	return nil
}

// cleanTemplateName normalizes a caller-supplied template name to its
// bare form: no structured suffix, filesystem-safe characters.
func cleanTemplateName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), api.StructuredSuffix)
	sanitized := api.SanitizeName(name)
	if strings.Trim(sanitized, "-. ") == "" {
		return "", fmt.Errorf("%w: template name %q sanitizes to empty", api.ErrInvalidArgument, name)
	}
	return sanitized, nil
}

// templatePath maps a clean template name to its file path.
func templatePath(name string) (string, error) {
	p, err := store.CleanPath(api.TemplatesDir + "/" + name + api.StructuredSuffix)
	if err != nil {
		return "", err
	}
	return p, nil
}

// descriptionOf extracts a string description from instantiation
// metadata, for placeholder substitution.
func descriptionOf(meta map[string]any) string {
	if v, ok := meta["description"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
