package github

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DraftReleaseName is the name given to generated draft releases
const DraftReleaseName = "Draft"

// ReleaseNotes is the result of building release notes for the commits
// merged since the last release tag
type ReleaseNotes struct {
	// Body is the rendered markdown release notes
	Body string `json:"body"`

	// Cutoff is the last non-prerelease tag; only commits after it are included
	Cutoff RepoTag `json:"cutoff"`

	// CutoffTime is the commit time of the cutoff tag
	CutoffTime time.Time `json:"cutoff_time"`

	// Errors lists merged pull requests whose labels map to no category
	Errors []string `json:"errors,omitempty"`

	// Orphans lists unreleased commits with no matching pull request,
	// usually direct pushes
	Orphans []Commit `json:"orphans,omitempty"`

	// Skipped lists pull requests ignored because their merge commit was not
	// found among the unreleased commits
	Skipped []PullRequest `json:"skipped,omitempty"`
}

// NotesBuilder generates release notes from merged pull requests
type NotesBuilder struct {
	client  APIClient
	owner   string
	repo    string
	drafter *DrafterConfig
}

// NewNotesBuilder creates a release notes builder
func NewNotesBuilder(client APIClient, owner, repo string, drafter *DrafterConfig) *NotesBuilder {
	return &NotesBuilder{
		client:  client,
		owner:   owner,
		repo:    repo,
		drafter: drafter,
	}
}

var (
	prereleasePattern = regexp.MustCompile(`(?i)(?:[-._])(?:alpha|beta|rc|pre|preview|dev)[.0-9]*`)
	pep440Pattern     = regexp.MustCompile(`(?i)\d(?:a|b|c|rc|dev)\d*$`)
)

// IsPrereleaseTag reports whether a tag name denotes a prerelease version.
// Both PEP 440 style suffixes (1.0rc1) and semver prerelease identifiers
// (v1.0.0-rc.1) are recognized.
func IsPrereleaseTag(tag string) bool {
	if prereleasePattern.MatchString(tag) {
		return true
	}
	trimmed := strings.TrimPrefix(tag, "v")
	if i := strings.IndexByte(trimmed, '-'); i >= 0 {
		return true
	}
	// PEP 440 without separator, e.g. 1.0rc1, 2.0a3, 3.0.0b2
	return pep440Pattern.MatchString(trimmed)
}

// LastReleaseTag returns the most recent non-prerelease tag together with
// its commit time. Tags are ordered by commit date, newest first.
func (b *NotesBuilder) LastReleaseTag() (*RepoTag, time.Time, error) {
	tags, err := b.client.ListTags(b.owner, b.repo)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to list tags for %s/%s: %w", b.owner, b.repo, err)
	}
	if len(tags) == 0 {
		return nil, time.Time{}, fmt.Errorf("no tags found in %s/%s: cannot determine release cutoff", b.owner, b.repo)
	}

	type datedTag struct {
		tag  RepoTag
		date time.Time
	}

	var dated []datedTag
	for _, tag := range tags {
		if IsPrereleaseTag(tag.Name) {
			continue
		}
		commit, err := b.client.GetCommit(b.owner, b.repo, tag.CommitSHA)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to resolve tag %s: %w", tag.Name, err)
		}
		dated = append(dated, datedTag{tag: tag, date: commit.CommittedAt})
	}

	if len(dated) == 0 {
		return nil, time.Time{}, fmt.Errorf("no release tags found in %s/%s, only prereleases", b.owner, b.repo)
	}

	sort.Slice(dated, func(i, j int) bool {
		return dated[i].date.After(dated[j].date)
	})

	return &dated[0].tag, dated[0].date, nil
}

// Build assembles release notes for everything merged since the last
// release tag
func (b *NotesBuilder) Build() (*ReleaseNotes, error) {
	cutoff, cutoffTime, err := b.LastReleaseTag()
	if err != nil {
		return nil, err
	}

	unreleased, err := b.client.CompareCommits(b.owner, b.repo, cutoff.Name, "HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s...HEAD: %w", cutoff.Name, err)
	}

	commits := make(map[string]Commit, len(unreleased))
	for _, commit := range unreleased {
		commits[commit.SHA] = commit
	}

	notes := &ReleaseNotes{
		Cutoff:     *cutoff,
		CutoffTime: cutoffTime,
	}

	sections := make(map[string][]string)
	excluded := b.drafter.Excluded()
	required := b.drafter.RequiredLabels()
	sectionMap := b.drafter.SectionMap()

	pulls, err := b.client.ListPullRequests(b.owner, b.repo, "closed")
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests for %s/%s: %w", b.owner, b.repo, err)
	}

	// Pull requests arrive newest first; stop at the first one merged
	// before the cutoff tag.
	for i := range pulls {
		pull := &pulls[i]
		if !pull.Merged {
			continue
		}

		if hasAnyLabel(pull, excluded) {
			continue
		}

		if _, ok := commits[pull.MergeCommitSHA]; ok {
			matched := ""
			for _, label := range required {
				if pull.HasLabel(label) {
					matched = label
					break
				}
			}

			if matched != "" {
				section := sectionMap[matched]
				sections[section] = append(sections[section],
					fmt.Sprintf("* %s (#%d) @%s", pull.Title, pull.Number, pull.Author))
			} else {
				notes.Errors = append(notes.Errors,
					fmt.Sprintf("PR #%d (%s) contains unknown labels %v, add one of the required labels %v",
						pull.Number, pull.HTMLURL, pull.Labels, required))
			}

			delete(commits, pull.MergeCommitSHA)
		} else if pull.ClosedAt.After(cutoffTime) {
			// Merged after the cutoff but its merge commit is not reachable
			// from HEAD, e.g. merged to a different branch
			notes.Skipped = append(notes.Skipped, *pull)
		} else {
			break
		}
	}

	// Whatever is left had no matching pull request
	for _, commit := range commits {
		notes.Orphans = append(notes.Orphans, commit)
	}
	sort.Slice(notes.Orphans, func(i, j int) bool {
		return notes.Orphans[i].CommittedAt.Before(notes.Orphans[j].CommittedAt)
	})

	notes.Body = b.render(sections)

	return notes, nil
}

// render produces the markdown body, sections in category declaration order
func (b *NotesBuilder) render(sections map[string][]string) string {
	var sb strings.Builder
	sb.WriteString("## Changes\n\n")

	for _, category := range b.drafter.Categories {
		entries := sections[category.Title]
		if len(entries) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", category.Title))
		for _, entry := range entries {
			sb.WriteString(entry)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Publish creates or updates the draft release with the generated body.
// It returns false when the existing draft already matches and nothing
// was changed.
func (b *NotesBuilder) Publish(notes *ReleaseNotes) (bool, error) {
	releases, err := b.client.ListReleases(b.owner, b.repo)
	if err != nil {
		return false, fmt.Errorf("failed to list releases for %s/%s: %w", b.owner, b.repo, err)
	}

	var draft *Release
	for i := range releases {
		if releases[i].Draft {
			draft = &releases[i]
			break
		}
	}

	if draft != nil {
		if draft.Body == notes.Body {
			return false, nil
		}
		updated := *draft
		updated.Name = DraftReleaseName
		updated.Body = notes.Body
		updated.Draft = true
		if err := b.client.UpdateRelease(b.owner, b.repo, updated); err != nil {
			return false, fmt.Errorf("failed to update draft release: %w", err)
		}
		return true, nil
	}

	release := Release{
		Name:       DraftReleaseName,
		Body:       notes.Body,
		Draft:      true,
		Prerelease: true,
	}
	if err := b.client.CreateRelease(b.owner, b.repo, release); err != nil {
		return false, fmt.Errorf("failed to create draft release: %w", err)
	}
	return true, nil
}

func hasAnyLabel(pull *PullRequest, labels map[string]bool) bool {
	for _, label := range pull.Labels {
		if labels[label] {
			return true
		}
	}
	return false
}
