// Package repo manages per-project git work trees: provisioning the
// directory skeleton, recording every content mutation as a commit, and
// exposing the explicit history/sync surface.
//
// Mutation recording is best-effort by contract: a content write must
// succeed even when the history layer misbehaves, so StageAndCommit and
// RemoveAndCommit log failures and swallow them. Explicit git operations
// (status, log, push, ...) return their errors normally.
package repo

import (
	"context"
	"errors"

	"github.com/weftworks/weft/api"
)

// Versioner is the narrow seam between the manager and the underlying
// version control tool. GitCLI is the production implementation; tests
// substitute fakes.
type Versioner interface {
	Init(ctx context.Context, branch string) error
	AddRemote(ctx context.Context, name, url string) error
	Stage(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context, remote, branch string) error
	Pull(ctx context.Context, remote, branch string) error
	Status(ctx context.Context) (api.RepoStatus, error)
	Log(ctx context.Context, path string, limit int) ([]api.Commit, error)
	Branches(ctx context.Context) ([]api.Branch, error)
	CreateBranch(ctx context.Context, name string) error
	Checkout(ctx context.Context, name string) error
	IsRepo(ctx context.Context) bool
}

// Author is the commit identity recorded on every commit.
type Author struct {
	Name  string
	Email string
}

var (
	// ErrNothingToCommit reports a commit attempt against a clean tree.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrOutsideRoot reports a repository delete refused by the
	// containment check.
	ErrOutsideRoot = errors.New("repository path outside the projects root")
)
