package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/weftworks/weft/api"
)

// TasksDir is the default home of task nodes created without an
// explicit parent.
const TasksDir = "tasks"

// TaskFilter narrows a task listing. Empty fields match everything.
type TaskFilter struct {
	Status   string
	Assignee string
}

// TaskSpec describes a task node to create. Title is required; Status
// and Priority default to todo/medium; Parent defaults to the tasks
// directory, which is created on demand.
type TaskSpec struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Assignee    string
	DueDate     string
	Parent      string
}

// Tasks projects every node carrying task metadata into a flat view,
// optionally filtered by status and assignee, sorted by path.
func (s *Store) Tasks(ctx context.Context, filter TaskFilter) ([]api.TaskView, error) {
	nodes, err := s.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}

	views := []api.TaskView{}
	for _, n := range nodes {
		if n.Metadata.Task == nil {
			continue
		}
		view := taskView(n)
		if filter.Status != "" && view.Status != filter.Status {
			continue
		}
		if filter.Assignee != "" && view.Assignee != filter.Assignee {
			continue
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Path < views[j].Path })
	return views, nil
}

// CreateTask creates a node of type task. When spec.Parent is empty
// the node lands in the tasks directory, created first if missing.
func (s *Store) CreateTask(ctx context.Context, spec TaskSpec) (*api.Node, error) {
	if strings.TrimSpace(spec.Title) == "" {
		return nil, fmt.Errorf("create task: empty title: %w", api.ErrInvalidArgument)
	}
	if spec.Status == "" {
		spec.Status = api.TaskStatusTodo
	}
	if spec.Priority == "" {
		spec.Priority = api.TaskPriorityMedium
	}

	parent := spec.Parent
	if parent == "" {
		parent = TasksDir
		if err := s.ensureTasksDir(ctx); err != nil {
			return nil, err
		}
	}

	body := renderTaskBody(spec)
	meta := map[string]any{
		"type": "task",
		"task": &api.Task{
			Status:      spec.Status,
			Priority:    spec.Priority,
			Assignee:    spec.Assignee,
			DueDate:     spec.DueDate,
			CreatedDate: api.Now(),
			Description: spec.Description,
		},
	}
	return s.Create(ctx, parent, spec.Title, "task", meta, &body)
}

// UpdateTask applies field updates to the task metadata of the node at
// path. Recognized keys: title, description, status, priority,
// assignee, dueDate, completedDate. A transition to done stamps
// completedDate unless one is already set or supplied.
func (s *Store) UpdateTask(ctx context.Context, rawPath string, updates map[string]any) (*api.Node, error) {
	p, err := CleanPath(rawPath)
	if err != nil {
		return nil, err
	}
	node, err := s.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	if node == nil || node.Metadata.Task == nil {
		return nil, fmt.Errorf("task %q: %w", p, api.ErrNotFound)
	}

	task := *node.Metadata.Task
	metaUpdates := map[string]any{}
	for key, val := range updates {
		switch key {
		case "title":
			metaUpdates["title"] = val
		case "description":
			task.Description = taskString(val)
		case "status":
			status := taskString(val)
			task.Status = status
			if status == api.TaskStatusDone && task.CompletedDate == "" {
				task.CompletedDate = api.Now()
			}
		case "priority":
			task.Priority = taskString(val)
		case "assignee":
			task.Assignee = taskString(val)
		case "dueDate":
			task.DueDate = taskString(val)
		case "completedDate":
			task.CompletedDate = taskString(val)
		}
	}
	metaUpdates["task"] = &task

	return s.Update(ctx, p, metaUpdates, nil)
}

// CompleteTask marks the task at path done.
func (s *Store) CompleteTask(ctx context.Context, rawPath string) (*api.Node, error) {
	return s.UpdateTask(ctx, rawPath, map[string]any{"status": api.TaskStatusDone})
}

// ensureTasksDir creates the default tasks folder once.
func (s *Store) ensureTasksDir(ctx context.Context) error {
	existing, err := s.Read(ctx, TasksDir)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = s.CreateFolder(ctx, "", TasksDir)
	return err
}

func taskView(n *api.Node) api.TaskView {
	task := n.Metadata.Task
	view := api.TaskView{
		ID:            n.Metadata.ID,
		Path:          n.Path,
		Title:         n.Metadata.Title,
		Description:   task.Description,
		Status:        task.Status,
		Priority:      task.Priority,
		Assignee:      task.Assignee,
		DueDate:       task.DueDate,
		CreatedDate:   task.CreatedDate,
		CompletedDate: task.CompletedDate,
	}
	if view.Status == "" {
		view.Status = api.TaskStatusTodo
	}
	if view.Priority == "" {
		view.Priority = api.TaskPriorityMedium
	}
	if view.CreatedDate == "" {
		view.CreatedDate = n.Metadata.Created
	}
	return view
}

func renderTaskBody(spec TaskSpec) string {
	assignee := spec.Assignee
	if assignee == "" {
		assignee = "Unassigned"
	}
	due := spec.DueDate
	if due == "" {
		due = "No due date"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", spec.Title)
	fmt.Fprintf(&b, "%s\n\n", spec.Description)
	b.WriteString("## Task Details\n\n")
	fmt.Fprintf(&b, "- Status: %s\n", spec.Status)
	fmt.Fprintf(&b, "- Priority: %s\n", spec.Priority)
	fmt.Fprintf(&b, "- Assignee: %s\n", assignee)
	fmt.Fprintf(&b, "- Due Date: %s\n", due)
	return b.String()
}

func taskString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprint(v)
}
