// Package registry is the project catalog: a small SQLite database
// mapping project names and ids to their git configuration. The node
// trees themselves live on disk; the registry only records where.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/weftworks/weft/api"
)

// Registry error sentinels.
var (
	// ErrNotFound reports a lookup that matched no project.
	ErrNotFound = errors.New("project not found")
	// ErrDuplicate reports a create colliding with an existing name.
	ErrDuplicate = errors.New("project name already registered")
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	description   TEXT NOT NULL DEFAULT '',
	git_type      TEXT NOT NULL DEFAULT 'local',
	git_path      TEXT NOT NULL DEFAULT '',
	git_url       TEXT NOT NULL DEFAULT '',
	git_branch    TEXT NOT NULL DEFAULT 'main',
	git_auto_push INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);
`

// Registry is the SQLite-backed project catalog.
type Registry struct {
	db *sql.DB
}

// Open opens (and creates if needed) the catalog at dbPath.
func Open(dbPath string) (*Registry, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Registry{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Create inserts a new project record.
func (r *Registry) Create(ctx context.Context, p api.Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, git_type, git_path, git_url, git_branch, git_auto_push, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description,
		p.Git.Type, p.Git.Path, p.Git.URL, p.Git.WorkBranch(), boolInt(p.Git.AutoPush),
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicate, p.Name)
		}
		return fmt.Errorf("insert project %s: %w", p.Name, err)
	}
	return nil
}

// Get returns the project with the given id.
func (r *Registry) Get(ctx context.Context, id string) (api.Project, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByName returns the project with the given name.
func (r *Registry) GetByName(ctx context.Context, name string) (api.Project, error) {
	return r.getWhere(ctx, "name = ?", name)
}

// Resolve accepts either a project name or an id.
func (r *Registry) Resolve(ctx context.Context, ref string) (api.Project, error) {
	p, err := r.GetByName(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return api.Project{}, err
	}
	return r.Get(ctx, ref)
}

// List returns every project ordered by name.
func (r *Registry) List(ctx context.Context) ([]api.Project, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+" FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []api.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// UpdateGitPath persists the resolved repository path after
// initialization corrected it.
func (r *Registry) UpdateGitPath(ctx context.Context, id, path string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE projects SET git_path = ?, updated_at = ? WHERE id = ?",
		path, api.Now(), id)
	if err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	return requireRow(res, id)
}

// Delete removes the project record. The repository on disk is the
// manager's to remove, not the registry's.
func (r *Registry) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return requireRow(res, id)
}

const selectColumns = `SELECT id, name, description, git_type, git_path, git_url, git_branch, git_auto_push, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Registry) getWhere(ctx context.Context, where string, arg any) (api.Project, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+" FROM projects WHERE "+where, arg)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Project{}, fmt.Errorf("%w: %v", ErrNotFound, arg)
	}
	if err != nil {
		return api.Project{}, err
	}
	return p, nil
}

func scanProject(row rowScanner) (api.Project, error) {
	var p api.Project
	var autoPush int
	err := row.Scan(
		&p.ID, &p.Name, &p.Description,
		&p.Git.Type, &p.Git.Path, &p.Git.URL, &p.Git.Branch, &autoPush,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return api.Project{}, err
	}
	p.Git.AutoPush = autoPush != 0
	return p, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation matches the driver's constraint error without
// depending on its error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
