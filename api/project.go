package api

// Project is one registry entry: a named node tree with git settings.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Git         GitConfig `json:"git"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// NewProject fills in id, defaults, and timestamps for a new entry.
func NewProject(name, description string, git GitConfig) Project {
	if git.Type == "" {
		git.Type = "local"
	}
	git.Branch = git.WorkBranch()
	now := Now()
	return Project{
		ID:          NewProjectID(),
		Name:        name,
		Description: description,
		Git:         git,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
