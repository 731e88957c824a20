package github

import "time"

// Label represents a GitHub issue/pull request label
type Label struct {
	Name        string `json:"name" yaml:"name"`
	Color       string `json:"color" yaml:"color"`
	Description string `json:"description" yaml:"description"`
}

// PullRequest represents the subset of pull request metadata tender works with
type PullRequest struct {
	Number         int       `json:"number"`
	Title          string    `json:"title"`
	State          string    `json:"state"` // open, closed
	Merged         bool      `json:"merged"`
	MergeCommitSHA string    `json:"merge_commit_sha,omitempty"`
	HTMLURL        string    `json:"html_url"`
	Author         string    `json:"author"`
	Labels         []string  `json:"labels"`
	MergedAt       time.Time `json:"merged_at,omitempty"`
	ClosedAt       time.Time `json:"closed_at,omitempty"`
}

// HasLabel reports whether the pull request carries the given label
func (p *PullRequest) HasLabel(name string) bool {
	for _, l := range p.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// Release represents a GitHub release
type Release struct {
	ID         int64  `json:"id,omitempty"`
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Body       string `json:"body"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// RepoTag represents a git tag as reported by the GitHub API
type RepoTag struct {
	Name      string `json:"name"`
	CommitSHA string `json:"commit_sha"`
}

// Commit represents a commit reachable from the repository head
type Commit struct {
	SHA         string    `json:"sha"`
	Message     string    `json:"message"`
	HTMLURL     string    `json:"html_url"`
	CommittedAt time.Time `json:"committed_at"`
}

// Summary returns the first line of the commit message
func (c *Commit) Summary() string {
	for i := 0; i < len(c.Message); i++ {
		if c.Message[i] == '\n' {
			return c.Message[:i]
		}
	}
	return c.Message
}
