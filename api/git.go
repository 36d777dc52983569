package api

// GitConfig describes how a project's repository is provisioned and synced.
type GitConfig struct {
	// Type is "local" for a plain work tree or "remote" when a URL is set.
	Type string `json:"type"`
	// Path overrides the default repository location. Relative paths are
	// resolved under the configured projects root.
	Path string `json:"path,omitempty"`
	// URL is the remote to push to and pull from, when Type is "remote".
	URL string `json:"url,omitempty"`
	// Branch is the work branch; defaults to "main".
	Branch string `json:"branch,omitempty"`
	// AutoPush pushes after every recorded mutation when a remote is set.
	AutoPush bool `json:"autoPush,omitempty"`
}

// WorkBranch returns the configured branch or the default.
func (g GitConfig) WorkBranch() string {
	if g.Branch == "" {
		return "main"
	}
	return g.Branch
}

// RepoStatus is a snapshot of the work tree state.
type RepoStatus struct {
	Branch  string   `json:"branch"`
	Ahead   int      `json:"ahead"`
	Behind  int      `json:"behind"`
	Clean   bool     `json:"clean"`
	Changes []Change `json:"changes"`
}

// Change is one modified path in the work tree.
type Change struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

// Commit is one history entry.
type Commit struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

// Branch is one repository branch.
type Branch struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
}
