// Package workspace assembles the per-project object graph: one
// repository manager, one node store, and one template engine, all
// rooted at the project's resolved repository path. The CLI and the
// agent server both open projects through it.
package workspace

import (
	"context"
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/weftworks/weft/api"
	"github.com/weftworks/weft/internal/config"
	"github.com/weftworks/weft/internal/repo"
	"github.com/weftworks/weft/internal/store"
	"github.com/weftworks/weft/internal/templates"
)

// Workspace is the wired component set for one open project.
type Workspace struct {
	Project api.Project
	Manager *repo.Manager
	Store   *store.Store
	Engine  *templates.Engine
}

// Open resolves the project's repository root and wires the components
// over it. It touches no disk; Provision does that.
func Open(cfg *config.Config, proj api.Project, log *zap.Logger) (*Workspace, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if proj.ID == "" && proj.Git.Path == "" {
		return nil, fmt.Errorf("project %q has neither an id nor a repository path", proj.Name)
	}

	root := repo.ResolvePath(cfg.ProjectsRoot, proj)
	vcs := repo.NewGitCLI(root, repo.Author{Name: cfg.Author.Name, Email: cfg.Author.Email})
	mgr := repo.NewManager(root, cfg.ProjectsRoot, proj.Git, vcs, log)

	fs := osfs.New(root)
	st := store.New(fs, mgr, log)
	eng := templates.NewEngine(fs, st, mgr, log)

	return &Workspace{
		Project: proj,
		Manager: mgr,
		Store:   st,
		Engine:  eng,
	}, nil
}

// Provision creates the repository skeleton: root directory, git
// metadata, ignore rules, the reserved directories, and the default
// template. Safe to call on an already provisioned project.
func (w *Workspace) Provision(ctx context.Context) error {
	return w.Manager.Initialize(ctx)
}

// Watch invalidates the store's index when the tree changes on disk
// outside this process. Stops when ctx is cancelled.
func (w *Workspace) Watch(ctx context.Context) error {
	return w.Store.Watch(ctx)
}

// Root is the absolute repository path of the open project.
func (w *Workspace) Root() string {
	return w.Manager.Root()
}
