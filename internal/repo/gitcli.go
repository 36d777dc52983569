package repo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/weftworks/weft/api"
)

const defaultGitTimeout = 30 * time.Second

// GitCLI implements Versioner by shelling out to the git binary. Every call
// runs with a timeout and reports captured stderr in its error.
type GitCLI struct {
	dir     string
	author  Author
	timeout time.Duration
}

// NewGitCLI returns a client operating on the repository at dir.
func NewGitCLI(dir string, author Author) *GitCLI {
	if author.Name == "" {
		author.Name = "weft"
	}
	if author.Email == "" {
		author.Email = "weft@localhost"
	}
	return &GitCLI{dir: dir, author: author, timeout: defaultGitTimeout}
}

// exec runs git with the given arguments, returning stdout and stderr.
func (g *GitCLI) exec(ctx context.Context, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// run wraps exec, folding stderr into the returned error.
func (g *GitCLI) run(ctx context.Context, args ...string) (string, error) {
	stdout, stderr, err := g.exec(ctx, args...)
	if err != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return stdout, nil
}

func (g *GitCLI) Init(ctx context.Context, branch string) error {
	if _, err := g.run(ctx, "init"); err != nil {
		return err
	}
	if branch == "" {
		return nil
	}
	// Point HEAD at the requested branch name, but only while the repo has
	// no commits; re-initializing an existing repository must not move HEAD.
	if _, _, err := g.exec(ctx, "rev-parse", "--verify", "HEAD"); err == nil {
		return nil
	}
	_, err := g.run(ctx, "symbolic-ref", "HEAD", "refs/heads/"+branch)
	return err
}

func (g *GitCLI) AddRemote(ctx context.Context, name, url string) error {
	_, err := g.run(ctx, "remote", "add", name, url)
	return err
}

// Stage stages the given paths, including deletions. With no paths it
// stages the entire work tree.
func (g *GitCLI) Stage(ctx context.Context, paths ...string) error {
	args := []string{"add", "-A"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	_, err := g.run(ctx, args...)
	return err
}

func (g *GitCLI) Commit(ctx context.Context, message string) error {
	args := []string{
		"-c", "user.name=" + g.author.Name,
		"-c", "user.email=" + g.author.Email,
		"commit", "-m", message,
	}
	stdout, stderr, err := g.exec(ctx, args...)
	if err == nil {
		return nil
	}
	combined := stdout + stderr
	if strings.Contains(combined, "nothing to commit") ||
		strings.Contains(combined, "nothing added to commit") ||
		strings.Contains(combined, "no changes added to commit") {
		return ErrNothingToCommit
	}
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = strings.TrimSpace(stdout)
	}
	if msg == "" {
		msg = err.Error()
	}
	return fmt.Errorf("git commit: %s", msg)
}

func (g *GitCLI) Push(ctx context.Context, remote, branch string) error {
	_, err := g.run(ctx, "push", "-u", remote, branch)
	return err
}

func (g *GitCLI) Pull(ctx context.Context, remote, branch string) error {
	_, err := g.run(ctx, "pull", remote, branch)
	return err
}

func (g *GitCLI) Status(ctx context.Context) (api.RepoStatus, error) {
	out, err := g.run(ctx, "status", "--porcelain", "-b")
	if err != nil {
		return api.RepoStatus{}, err
	}
	return parseStatus(out), nil
}

// logSep separates commits in log output; it is unlikely to appear in a
// commit message.
const logSep = "|||WEFT_SEP|||"

func (g *GitCLI) Log(ctx context.Context, path string, limit int) ([]api.Commit, error) {
	// %H hash, %an author, %aI author date (ISO 8601), %B raw message.
	args := []string{"log", "--date=iso", "--pretty=format:%H%n%an%n%aI%n%B" + logSep}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}
	if path != "" {
		args = append(args, "--", path)
	}
	stdout, stderr, err := g.exec(ctx, args...)
	if err != nil {
		// A freshly initialized repository has no commits; that is an
		// empty history, not a failure.
		if strings.Contains(stderr, "does not have any commits yet") {
			return []api.Commit{}, nil
		}
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("git log: %s", msg)
	}
	return parseLog(stdout), nil
}

func (g *GitCLI) Branches(ctx context.Context) ([]api.Branch, error) {
	out, err := g.run(ctx, "branch", "--list", "--format=%(refname:short)\t%(HEAD)")
	if err != nil {
		return nil, err
	}
	return parseBranches(out), nil
}

func (g *GitCLI) CreateBranch(ctx context.Context, name string) error {
	_, err := g.run(ctx, "branch", name)
	return err
}

func (g *GitCLI) Checkout(ctx context.Context, name string) error {
	_, err := g.run(ctx, "checkout", name)
	return err
}

func (g *GitCLI) IsRepo(ctx context.Context) bool {
	_, _, err := g.exec(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// Compile-time interface check.
var _ Versioner = (*GitCLI)(nil)
