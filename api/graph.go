package api

// Graph is the relation view over a project: every node plus its hard
// (containment) and soft (metadata link) edges.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Edge kinds.
const (
	EdgeHard = "hard"
	EdgeSoft = "soft"
)

// Edge is one relation in the graph view.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Label  string `json:"label,omitempty"`
}

// TaskView is the flattened projection of a node carrying task metadata.
type TaskView struct {
	ID            string `json:"id"`
	Path          string `json:"path"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	Assignee      string `json:"assignee,omitempty"`
	DueDate       string `json:"dueDate,omitempty"`
	CreatedDate   string `json:"createdDate,omitempty"`
	CompletedDate string `json:"completedDate,omitempty"`
}
