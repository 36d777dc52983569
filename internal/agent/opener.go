// Package agent exposes a project's node store over MCP so that LLM
// agents can read, write, link, and query nodes through stdio tools.
package agent

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/weftworks/weft/api"
	"github.com/weftworks/weft/internal/config"
	"github.com/weftworks/weft/internal/registry"
	"github.com/weftworks/weft/internal/workspace"
)

// Opener resolves project references against the registry and hands out
// workspaces, one per project for the life of the process. First open
// provisions the tree and starts a filesystem watcher so edits made
// outside the server stay visible.
type Opener struct {
	cfg *config.Config
	reg *registry.Registry
	log *zap.Logger

	mu      sync.Mutex
	open    map[string]*workspace.Workspace
	cancels []context.CancelFunc
}

// NewOpener wires the registry-backed opener. A nil logger disables logging.
func NewOpener(cfg *config.Config, reg *registry.Registry, log *zap.Logger) *Opener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Opener{
		cfg:  cfg,
		reg:  reg,
		log:  log,
		open: make(map[string]*workspace.Workspace),
	}
}

// Projects lists the registered projects.
func (o *Opener) Projects(ctx context.Context) ([]api.Project, error) {
	return o.reg.List(ctx)
}

// Workspace resolves ref as a project name or id and returns the
// project's workspace, opening and provisioning it on first use.
func (o *Opener) Workspace(ctx context.Context, ref string) (*workspace.Workspace, error) {
	proj, err := o.reg.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if w, ok := o.open[proj.ID]; ok {
		return w, nil
	}

	w, err := workspace.Open(o.cfg, proj, o.log)
	if err != nil {
		return nil, err
	}
	if err := w.Provision(ctx); err != nil {
		return nil, err
	}

	// The watcher must outlive this call, so it gets its own context,
	// cancelled by Close rather than by the request.
	wctx, cancel := context.WithCancel(context.Background())
	if err := w.Watch(wctx); err != nil {
		cancel()
		o.log.Warn("filesystem watch unavailable",
			zap.String("project", proj.Name),
			zap.Error(err),
		)
	} else {
		o.cancels = append(o.cancels, cancel)
	}

	o.open[proj.ID] = w
	return w, nil
}

// Close stops the filesystem watchers of every opened workspace.
func (o *Opener) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, cancel := range o.cancels {
		cancel()
	}
	o.cancels = nil
}
