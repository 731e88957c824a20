package github

// APIClient defines the interface for GitHub API operations
type APIClient interface {
	// Label operations
	ListLabels(owner, repo string) ([]Label, error)
	CreateLabel(owner, repo string, label Label) error
	UpdateLabel(owner, repo, name string, label Label) error
	DeleteLabel(owner, repo, name string) error

	// Pull request operations
	ListPullRequests(owner, repo, state string) ([]PullRequest, error)
	AddLabels(owner, repo string, number int, labels []string) error

	// Release operations
	ListReleases(owner, repo string) ([]Release, error)
	CreateRelease(owner, repo string, release Release) error
	UpdateRelease(owner, repo string, release Release) error

	// Tag and commit operations
	ListTags(owner, repo string) ([]RepoTag, error)
	GetCommit(owner, repo, sha string) (*Commit, error)
	CompareCommits(owner, repo, base, head string) ([]Commit, error)
}

// Reconciler defines the interface for label reconciliation operations
type Reconciler interface {
	Plan(set LabelSet) (*ReconciliationPlan, error)
	Apply(plan *ReconciliationPlan) error
	Validate(set LabelSet) error
}

// ChangeType represents the type of change in a reconciliation plan
type ChangeType string

const (
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeUpdate ChangeType = "update"
	ChangeTypeDelete ChangeType = "delete"
)

// LabelChange represents a change to a single repository label
type LabelChange struct {
	Type   ChangeType `json:"type"`
	Before *Label     `json:"before,omitempty"`
	After  *Label     `json:"after,omitempty"`
}

// Name returns the label name the change applies to
func (c LabelChange) Name() string {
	if c.After != nil {
		return c.After.Name
	}
	if c.Before != nil {
		return c.Before.Name
	}
	return ""
}

// ReconciliationPlan represents a plan of label changes for one repository
type ReconciliationPlan struct {
	Repo    string        `json:"repo"`
	Changes []LabelChange `json:"changes,omitempty"`

	// Unknown lists remote labels that are not defined in the configuration.
	// They are reported but never deleted unless prune mode is enabled.
	Unknown []Label `json:"unknown,omitempty"`
}

// HasChanges reports whether the plan contains any changes
func (p *ReconciliationPlan) HasChanges() bool {
	return len(p.Changes) > 0
}
