package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// Client implements the APIClient interface using the GitHub REST API
type Client struct {
	client  *github.Client
	ctx     context.Context
	limiter RateLimiter
}

// NewClient creates a new GitHub API client with the provided token
func NewClient(token string) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client:  github.NewClient(tc),
		ctx:     ctx,
		limiter: NewRateLimiter(DefaultRateLimiterConfig()),
	}
}

// RateLimiter returns the limiter fed by this client's response headers.
// Multi-repository workers share it so throttling reacts to real quota.
func (c *Client) RateLimiter() RateLimiter {
	return c.limiter
}

// trackRateLimit feeds quota headers from an API response into the limiter
func (c *Client) trackRateLimit(resp *github.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	c.limiter.UpdateLimits(resp.Rate.Remaining, resp.Rate.Reset.Time)
}

// ListLabels retrieves all labels defined on a repository
func (c *Client) ListLabels(owner, repo string) ([]Label, error) {
	opts := &github.ListOptions{PerPage: 100}

	var allLabels []Label

	err := WithRetry(func() error {
		allLabels = nil // Reset on retry
		opts.Page = 0   // Reset pagination on retry

		for {
			labels, resp, err := c.client.Issues.ListLabels(c.ctx, owner, repo, opts)
			c.trackRateLimit(resp)
			if err != nil {
				return WrapGitHubError(err, fmt.Sprintf("labels for %s/%s", owner, repo))
			}

			for _, label := range labels {
				allLabels = append(allLabels, Label{
					Name:        label.GetName(),
					Color:       label.GetColor(),
					Description: label.GetDescription(),
				})
			}

			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())

	return allLabels, err
}

// CreateLabel creates a new label on a repository
func (c *Client) CreateLabel(owner, repo string, label Label) error {
	ghLabel := &github.Label{
		Name:        github.String(label.Name),
		Color:       github.String(label.Color),
		Description: github.String(label.Description),
	}

	return WithRetry(func() error {
		_, resp, err := c.client.Issues.CreateLabel(c.ctx, owner, repo, ghLabel)
		c.trackRateLimit(resp)
		if err != nil {
			return WrapGitHubError(err, fmt.Sprintf("label %s for %s/%s", label.Name, owner, repo))
		}
		return nil
	}, DefaultRetryConfig())
}

// UpdateLabel updates an existing label, including renames when label.Name differs from name
func (c *Client) UpdateLabel(owner, repo, name string, label Label) error {
	ghLabel := &github.Label{
		Name:        github.String(label.Name),
		Color:       github.String(label.Color),
		Description: github.String(label.Description),
	}

	return WithRetry(func() error {
		_, resp, err := c.client.Issues.EditLabel(c.ctx, owner, repo, name, ghLabel)
		c.trackRateLimit(resp)
		if err != nil {
			return WrapGitHubError(err, fmt.Sprintf("label %s for %s/%s", name, owner, repo))
		}
		return nil
	}, DefaultRetryConfig())
}

// DeleteLabel removes a label from a repository
func (c *Client) DeleteLabel(owner, repo, name string) error {
	return WithRetry(func() error {
		resp, err := c.client.Issues.DeleteLabel(c.ctx, owner, repo, name)
		c.trackRateLimit(resp)
		if err != nil {
			return WrapGitHubError(err, fmt.Sprintf("label %s for %s/%s", name, owner, repo))
		}
		return nil
	}, DefaultRetryConfig())
}

// ListPullRequests lists pull requests in the given state, newest first
func (c *Client) ListPullRequests(owner, repo, state string) ([]PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       state,
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allPulls []PullRequest

	err := WithRetry(func() error {
		allPulls = nil // Reset on retry
		opts.Page = 0  // Reset pagination on retry

		for {
			pulls, resp, err := c.client.PullRequests.List(c.ctx, owner, repo, opts)
			c.trackRateLimit(resp)
			if err != nil {
				return WrapGitHubError(err, fmt.Sprintf("pull requests for %s/%s", owner, repo))
			}

			for _, pull := range pulls {
				allPulls = append(allPulls, convertGitHubPullRequest(pull))
			}

			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())

	return allPulls, err
}

// AddLabels adds labels to an issue or pull request. GitHub shares the label
// namespace between the two, so the issues endpoint covers both.
func (c *Client) AddLabels(owner, repo string, number int, labels []string) error {
	return WithRetry(func() error {
		_, resp, err := c.client.Issues.AddLabelsToIssue(c.ctx, owner, repo, number, labels)
		c.trackRateLimit(resp)
		if err != nil {
			return WrapGitHubError(err, fmt.Sprintf("labels for %s/%s#%d", owner, repo, number))
		}
		return nil
	}, DefaultRetryConfig())
}

// ListReleases lists all releases for a repository, including drafts
func (c *Client) ListReleases(owner, repo string) ([]Release, error) {
	opts := &github.ListOptions{PerPage: 100}

	var allReleases []Release

	err := WithRetry(func() error {
		allReleases = nil // Reset on retry
		opts.Page = 0     // Reset pagination on retry

		for {
			releases, resp, err := c.client.Repositories.ListReleases(c.ctx, owner, repo, opts)
			c.trackRateLimit(resp)
			if err != nil {
				return WrapGitHubError(err, fmt.Sprintf("releases for %s/%s", owner, repo))
			}

			for _, release := range releases {
				allReleases = append(allReleases, Release{
					ID:         release.GetID(),
					TagName:    release.GetTagName(),
					Name:       release.GetName(),
					Body:       release.GetBody(),
					Draft:      release.GetDraft(),
					Prerelease: release.GetPrerelease(),
				})
			}

			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())

	return allReleases, err
}

// CreateRelease creates a new release
func (c *Client) CreateRelease(owner, repo string, release Release) error {
	ghRelease := &github.RepositoryRelease{
		TagName:    github.String(release.TagName),
		Name:       github.String(release.Name),
		Body:       github.String(release.Body),
		Draft:      github.Bool(release.Draft),
		Prerelease: github.Bool(release.Prerelease),
	}

	return WithRetry(func() error {
		_, resp, err := c.client.Repositories.CreateRelease(c.ctx, owner, repo, ghRelease)
		c.trackRateLimit(resp)
		if err != nil {
			return WrapGitHubError(err, fmt.Sprintf("release for %s/%s", owner, repo))
		}
		return nil
	}, DefaultRetryConfig())
}

// UpdateRelease updates an existing release identified by release.ID
func (c *Client) UpdateRelease(owner, repo string, release Release) error {
	ghRelease := &github.RepositoryRelease{
		TagName:    github.String(release.TagName),
		Name:       github.String(release.Name),
		Body:       github.String(release.Body),
		Draft:      github.Bool(release.Draft),
		Prerelease: github.Bool(release.Prerelease),
	}

	return WithRetry(func() error {
		_, resp, err := c.client.Repositories.EditRelease(c.ctx, owner, repo, release.ID, ghRelease)
		c.trackRateLimit(resp)
		if err != nil {
			return WrapGitHubError(err, fmt.Sprintf("release %d for %s/%s", release.ID, owner, repo))
		}
		return nil
	}, DefaultRetryConfig())
}

// ListTags lists all git tags for a repository
func (c *Client) ListTags(owner, repo string) ([]RepoTag, error) {
	opts := &github.ListOptions{PerPage: 100}

	var allTags []RepoTag

	err := WithRetry(func() error {
		allTags = nil // Reset on retry
		opts.Page = 0 // Reset pagination on retry

		for {
			tags, resp, err := c.client.Repositories.ListTags(c.ctx, owner, repo, opts)
			c.trackRateLimit(resp)
			if err != nil {
				return WrapGitHubError(err, fmt.Sprintf("tags for %s/%s", owner, repo))
			}

			for _, tag := range tags {
				allTags = append(allTags, RepoTag{
					Name:      tag.GetName(),
					CommitSHA: tag.GetCommit().GetSHA(),
				})
			}

			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())

	return allTags, err
}

// GetCommit retrieves a single commit by SHA
func (c *Client) GetCommit(owner, repo, sha string) (*Commit, error) {
	var commit *github.RepositoryCommit

	err := WithRetry(func() error {
		var resp *github.Response
		var err error
		commit, resp, err = c.client.Repositories.GetCommit(c.ctx, owner, repo, sha, nil)
		c.trackRateLimit(resp)
		if err != nil {
			return WrapGitHubError(err, fmt.Sprintf("commit %s for %s/%s", sha, owner, repo))
		}
		return nil
	}, DefaultRetryConfig())

	if err != nil {
		return nil, err
	}

	return convertGitHubCommit(commit), nil
}

// CompareCommits returns the commits contained in head but not in base
func (c *Client) CompareCommits(owner, repo, base, head string) ([]Commit, error) {
	opts := &github.ListOptions{PerPage: 100}

	var allCommits []Commit

	err := WithRetry(func() error {
		allCommits = nil // Reset on retry
		opts.Page = 0    // Reset pagination on retry

		for {
			comparison, resp, err := c.client.Repositories.CompareCommits(c.ctx, owner, repo, base, head, opts)
			c.trackRateLimit(resp)
			if err != nil {
				return WrapGitHubError(err, fmt.Sprintf("comparison %s...%s for %s/%s", base, head, owner, repo))
			}

			for _, commit := range comparison.Commits {
				allCommits = append(allCommits, *convertGitHubCommit(commit))
			}

			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())

	return allCommits, err
}

// convertGitHubPullRequest converts a GitHub API pull request to our internal type
func convertGitHubPullRequest(pull *github.PullRequest) PullRequest {
	pr := PullRequest{
		Number:         pull.GetNumber(),
		Title:          pull.GetTitle(),
		State:          pull.GetState(),
		Merged:         pull.MergedAt != nil,
		MergeCommitSHA: pull.GetMergeCommitSHA(),
		HTMLURL:        pull.GetHTMLURL(),
		Author:         pull.GetUser().GetLogin(),
		MergedAt:       pull.GetMergedAt().Time,
		ClosedAt:       pull.GetClosedAt().Time,
	}

	for _, label := range pull.Labels {
		pr.Labels = append(pr.Labels, label.GetName())
	}

	return pr
}

// convertGitHubCommit converts a GitHub API commit to our internal type
func convertGitHubCommit(commit *github.RepositoryCommit) *Commit {
	return &Commit{
		SHA:         commit.GetSHA(),
		Message:     commit.GetCommit().GetMessage(),
		HTMLURL:     commit.GetHTMLURL(),
		CommittedAt: commit.GetCommit().GetCommitter().GetDate().Time,
	}
}
