// Package api defines the wire-level data model shared by the store,
// the template engine, the CLI, and the agent server: nodes, metadata,
// projects, and the git-facing value types.
package api

import "encoding/json"

// Reserved names inside a project root.
const (
	// NodesDir is the default directory for regular content nodes.
	NodesDir = "nodes"
	// TemplatesDir holds template nodes, excluded from normal listings.
	TemplatesDir = "templates"
	// StructuredSuffix marks files that carry a front-matter block.
	StructuredSuffix = ".md"
	// SidecarSuffix names the metadata companion of a non-structured node:
	// for node path p the sidecar lives at p + SidecarSuffix.
	SidecarSuffix = ".metadata.md"
	// MarkerName is the hidden file placed inside store-created directories
	// so empty directories remain representable under version control.
	MarkerName = ".gitkeep"
)

// Node is the unified view of one addressable item in a project tree:
// a structured text file, an opaque file, or a directory.
type Node struct {
	// Path is the node's address relative to the project root, "/"-separated.
	Path string `json:"path"`
	// Name is the base name of the file or directory.
	Name string `json:"name"`
	// IsDirectory reports whether the node is a hard-link container.
	IsDirectory bool `json:"isDirectory"`
	// IsStructured reports whether the node is a file with a structured suffix.
	IsStructured bool `json:"isStructured"`
	// Metadata is the decoded front-matter (or sidecar) mapping.
	Metadata Metadata `json:"metadata"`
	// Content is the body text; nil for directories and opaque files.
	Content *string `json:"content,omitempty"`
	// HardLinks describes the containment relations of the node.
	HardLinks HardLinks `json:"hardLinks"`
	// SoftLinks mirrors Metadata.Links; never nil.
	SoftLinks []string `json:"softLinks"`
	// HasTask reports whether task metadata is present.
	HasTask bool `json:"hasTask"`
	// TaskStatus is the task status when HasTask is true.
	TaskStatus *string `json:"taskStatus,omitempty"`
}

// HardLinks captures the containment relations of a node.
type HardLinks struct {
	// Parent is the containing directory path, nil at the project root.
	Parent *string `json:"parent"`
	// Children lists immediate child node paths; only set for directories.
	Children []string `json:"children"`
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Metadata = n.Metadata.Clone()
	if n.Content != nil {
		c := *n.Content
		out.Content = &c
	}
	if n.HardLinks.Parent != nil {
		p := *n.HardLinks.Parent
		out.HardLinks.Parent = &p
	}
	out.HardLinks.Children = cloneStrings(n.HardLinks.Children)
	out.SoftLinks = cloneStrings(n.SoftLinks)
	if n.TaskStatus != nil {
		s := *n.TaskStatus
		out.TaskStatus = &s
	}
	return &out
}

// Metadata is the typed front-matter mapping. Well-known keys are struct
// fields; anything else round-trips through Extras, which is inlined at the
// top level of the serialized block.
type Metadata struct {
	ID       string         `yaml:"id,omitempty" json:"id,omitempty"`
	Title    string         `yaml:"title,omitempty" json:"title,omitempty"`
	Type     string         `yaml:"type,omitempty" json:"type,omitempty"`
	Created  string         `yaml:"created,omitempty" json:"created,omitempty"`
	Modified string         `yaml:"modified,omitempty" json:"modified,omitempty"`
	Tags     []string       `yaml:"tags,omitempty" json:"tags,omitempty"`
	Links    []string       `yaml:"links,omitempty" json:"links,omitempty"`
	Task     *Task          `yaml:"task,omitempty" json:"task,omitempty"`
	Position *Position      `yaml:"position,omitempty" json:"position,omitempty"`
	Extras   map[string]any `yaml:",inline" json:"-"`
}

// Task is the embedded work-item mapping of a node.
type Task struct {
	Status        string `yaml:"status,omitempty" json:"status,omitempty"`
	Priority      string `yaml:"priority,omitempty" json:"priority,omitempty"`
	Assignee      string `yaml:"assignee,omitempty" json:"assignee,omitempty"`
	DueDate       string `yaml:"dueDate,omitempty" json:"dueDate,omitempty"`
	CreatedDate   string `yaml:"createdDate,omitempty" json:"createdDate,omitempty"`
	CompletedDate string `yaml:"completedDate,omitempty" json:"completedDate,omitempty"`
	Description   string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Task status and priority defaults.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusReview     = "review"
	TaskStatusDone       = "done"
	TaskStatusBlocked    = "blocked"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// Position is a 2D layout hint used by graph views.
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	out := m
	out.Tags = cloneStrings(m.Tags)
	out.Links = cloneStrings(m.Links)
	if m.Task != nil {
		t := *m.Task
		out.Task = &t
	}
	if m.Position != nil {
		p := *m.Position
		out.Position = &p
	}
	if m.Extras != nil {
		out.Extras = make(map[string]any, len(m.Extras))
		for k, v := range m.Extras {
			out.Extras[k] = v
		}
	}
	return out
}

// ApplyUpdates performs a shallow merge of updates onto the metadata.
// Well-known keys set their typed fields; task and position are replaced
// wholesale, a nil value clears them. Unknown keys land in Extras, where a
// nil value deletes the entry.
func (m *Metadata) ApplyUpdates(updates map[string]any) {
	for key, val := range updates {
		switch key {
		case "id":
			m.ID = stringValue(val)
		case "title":
			m.Title = stringValue(val)
		case "type":
			m.Type = stringValue(val)
		case "created":
			m.Created = stringValue(val)
		case "modified":
			m.Modified = stringValue(val)
		case "tags":
			m.Tags = stringSliceValue(val)
		case "links":
			m.Links = stringSliceValue(val)
		case "task":
			m.Task = taskValue(val)
		case "position":
			m.Position = positionValue(val)
		default:
			if val == nil {
				delete(m.Extras, key)
				continue
			}
			if m.Extras == nil {
				m.Extras = make(map[string]any)
			}
			m.Extras[key] = val
		}
	}
}

// metadataJSON mirrors Metadata for (un)marshaling without recursion.
type metadataJSON struct {
	ID       string    `json:"id,omitempty"`
	Title    string    `json:"title,omitempty"`
	Type     string    `json:"type,omitempty"`
	Created  string    `json:"created,omitempty"`
	Modified string    `json:"modified,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Links    []string  `json:"links,omitempty"`
	Task     *Task     `json:"task,omitempty"`
	Position *Position `json:"position,omitempty"`
}

var knownMetadataKeys = []string{
	"id", "title", "type", "created", "modified",
	"tags", "links", "task", "position",
}

// MarshalJSON inlines Extras at the top level, matching the yaml layout.
func (m Metadata) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(metadataJSON{
		ID: m.ID, Title: m.Title, Type: m.Type,
		Created: m.Created, Modified: m.Modified,
		Tags: m.Tags, Links: m.Links,
		Task: m.Task, Position: m.Position,
	})
	if err != nil || len(m.Extras) == 0 {
		return base, err
	}
	merged := make(map[string]any, len(m.Extras)+8)
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range m.Extras {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON splits unknown top-level keys into Extras.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var base metadataJSON
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range knownMetadataKeys {
		delete(raw, k)
	}
	out := Metadata{
		ID: base.ID, Title: base.Title, Type: base.Type,
		Created: base.Created, Modified: base.Modified,
		Tags: base.Tags, Links: base.Links,
		Task: base.Task, Position: base.Position,
	}
	if len(raw) > 0 {
		out.Extras = raw
	}
	*m = out
	return nil
}

// String returns a pointer to s; convenience for optional string fields.
func String(s string) *string { return &s }

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func stringSliceValue(v any) []string {
	switch vals := v.(type) {
	case nil:
		return nil
	case []string:
		return cloneStrings(vals)
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func taskValue(v any) *Task {
	switch t := v.(type) {
	case nil:
		return nil
	case *Task:
		if t == nil {
			return nil
		}
		c := *t
		return &c
	case Task:
		return &t
	case map[string]any:
		return &Task{
			Status:        stringValue(t["status"]),
			Priority:      stringValue(t["priority"]),
			Assignee:      stringValue(t["assignee"]),
			DueDate:       stringValue(t["dueDate"]),
			CreatedDate:   stringValue(t["createdDate"]),
			CompletedDate: stringValue(t["completedDate"]),
			Description:   stringValue(t["description"]),
		}
	}
	return nil
}

func positionValue(v any) *Position {
	switch p := v.(type) {
	case nil:
		return nil
	case *Position:
		if p == nil {
			return nil
		}
		c := *p
		return &c
	case Position:
		return &p
	case map[string]any:
		x, okX := floatValue(p["x"])
		y, okY := floatValue(p["y"])
		if !okX && !okY {
			return nil
		}
		return &Position{X: x, Y: y}
	}
	return nil
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
