package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/weftworks/weft/api"
	"github.com/weftworks/weft/internal/codec"
)

// defaultRemote is the remote name used for configured URLs.
const defaultRemote = "origin"

// ignoreSeed is written as .gitignore on first init. It excludes editor
// and OS droppings plus the store's temporary write artifacts; content
// directories stay tracked.
const ignoreSeed = `.DS_Store
Thumbs.db
Desktop.ini
*.swp
*.swo
*~
.weft-*
`

// Manager owns one project's work tree: it provisions the directory
// skeleton, records mutations as commits, and exposes the explicit
// history and sync operations.
type Manager struct {
	root         string
	projectsRoot string
	explicitPath bool
	git          api.GitConfig
	vcs          Versioner
	log          *zap.Logger

	// mu serializes stage+commit sequences so interleaved mutations
	// cannot fold each other's changes into one commit.
	mu sync.Mutex
}

// ResolvePath computes the work tree location for a project: an explicit
// GitConfig.Path (resolved under projectsRoot when relative), otherwise
// projectsRoot/<project id>.
func ResolvePath(projectsRoot string, proj api.Project) string {
	if proj.Git.Path != "" {
		p := filepath.Clean(proj.Git.Path)
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(projectsRoot, p)
	}
	return filepath.Join(projectsRoot, proj.ID)
}

// NewManager wraps the work tree at root. The projects root drives the
// DeleteRepository containment check. A nil logger disables logging.
func NewManager(root, projectsRoot string, git api.GitConfig, vcs Versioner, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		root:         root,
		projectsRoot: projectsRoot,
		explicitPath: git.Path != "",
		git:          git,
		vcs:          vcs,
		log:          log,
	}
}

// Root returns the resolved work tree path.
func (m *Manager) Root() string { return m.root }

// Initialize provisions the work tree: root directory, git repository on
// the configured branch, ignore file, the nodes/ and templates/ skeleton,
// and the default template, all recorded as one initial commit. Git
// failures are logged and swallowed; the directory skeleton exists
// afterward regardless.
func (m *Manager) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return fmt.Errorf("create repository root: %w", err)
	}

	if err := m.vcs.Init(ctx, m.git.WorkBranch()); err != nil {
		m.warn("git init", err)
	} else if m.git.URL != "" {
		if err := m.vcs.AddRemote(ctx, defaultRemote, m.git.URL); err != nil {
			// Re-adding an existing remote fails; harmless on re-init.
			m.log.Debug("git remote add", zap.Error(err))
		}
	}

	if err := m.seedIgnoreFile(); err != nil {
		return err
	}
	for _, dir := range []string{api.NodesDir, api.TemplatesDir} {
		if err := m.seedDir(dir); err != nil {
			return err
		}
	}
	if err := m.seedDefaultTemplate(); err != nil {
		return err
	}

	m.StageAndCommit(ctx, "Initialize project")
	return nil
}

// StageAndCommit records a content mutation as one commit. Recording is
// best-effort: every failure, including a clean tree, is logged and
// swallowed so the caller's write always survives.
func (m *Manager) StageAndCommit(ctx context.Context, message string, paths ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(ctx, message, paths)
}

// RemoveAndCommit records a deletion. Staging with -A folds removals of
// tracked paths in, so it shares the StageAndCommit path.
func (m *Manager) RemoveAndCommit(ctx context.Context, message string, paths ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(ctx, message, paths)
}

// record stages the given paths (the whole tree when empty), commits, and
// pushes when auto-push is configured. Callers hold mu.
func (m *Manager) record(ctx context.Context, message string, paths []string) {
	if err := m.vcs.Stage(ctx, paths...); err != nil {
		m.warn("git add", err, paths...)
		return
	}
	if err := m.vcs.Commit(ctx, message); err != nil {
		if errors.Is(err, ErrNothingToCommit) {
			m.log.Debug("nothing to commit", zap.String("message", message))
			return
		}
		m.warn("git commit", err, paths...)
		return
	}
	if m.git.AutoPush && m.git.URL != "" {
		if err := m.vcs.Push(ctx, defaultRemote, m.git.WorkBranch()); err != nil {
			m.warn("git push", err)
		}
	}
}

// DeleteRepository removes the work tree. Roots that resolve outside the
// projects root are refused unless the project pinned that exact path
// explicitly. Removing a directory that is already gone succeeds.
func (m *Manager) DeleteRepository(ctx context.Context) error {
	if !m.deletable() {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, m.root)
	}
	if err := os.RemoveAll(m.root); err != nil {
		return fmt.Errorf("delete repository: %w", err)
	}
	return nil
}

// History returns commits touching path (the whole tree when empty),
// newest first, capped at limit when positive.
func (m *Manager) History(ctx context.Context, path string, limit int) ([]api.Commit, error) {
	return m.vcs.Log(ctx, path, limit)
}

// RepoStatus reports the work tree state.
func (m *Manager) RepoStatus(ctx context.Context) (api.RepoStatus, error) {
	return m.vcs.Status(ctx)
}

// Branches lists local branches.
func (m *Manager) Branches(ctx context.Context) ([]api.Branch, error) {
	return m.vcs.Branches(ctx)
}

// CreateBranch creates a branch without switching to it.
func (m *Manager) CreateBranch(ctx context.Context, name string) error {
	return m.vcs.CreateBranch(ctx, name)
}

// Checkout switches the work tree to the named branch.
func (m *Manager) Checkout(ctx context.Context, name string) error {
	return m.vcs.Checkout(ctx, name)
}

// Push sends the work branch to the configured remote.
func (m *Manager) Push(ctx context.Context) error {
	return m.vcs.Push(ctx, defaultRemote, m.git.WorkBranch())
}

// Pull fetches and merges the work branch from the configured remote.
func (m *Manager) Pull(ctx context.Context) error {
	return m.vcs.Pull(ctx, defaultRemote, m.git.WorkBranch())
}

func (m *Manager) deletable() bool {
	if m.root == "" {
		return false
	}
	if m.explicitPath {
		return true
	}
	rel, err := filepath.Rel(filepath.Clean(m.projectsRoot), m.root)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (m *Manager) seedIgnoreFile() error {
	path := filepath.Join(m.root, ".gitignore")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(ignoreSeed), 0o644); err != nil {
		return fmt.Errorf("seed ignore file: %w", err)
	}
	return nil
}

func (m *Manager) seedDir(name string) error {
	dir := filepath.Join(m.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	marker := filepath.Join(dir, api.MarkerName)
	if _, err := os.Stat(marker); err == nil {
		return nil
	}
	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		return fmt.Errorf("seed %s marker: %w", name, err)
	}
	return nil
}

// seedDefaultTemplate writes templates/empty.md unless one already exists;
// an existing template is never overwritten.
func (m *Manager) seedDefaultTemplate() error {
	path := filepath.Join(m.root, api.TemplatesDir, api.DefaultTemplateName+api.StructuredSuffix)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	meta, body := api.DefaultTemplate()
	if err := os.WriteFile(path, codec.Encode(meta, body), 0o644); err != nil {
		return fmt.Errorf("seed default template: %w", err)
	}
	return nil
}

func (m *Manager) warn(op string, err error, paths ...string) {
	m.log.Warn("versioning failure",
		zap.String("op", op),
		zap.Strings("paths", paths),
		zap.Error(err),
	)
}
