package github

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPrereleaseTag(t *testing.T) {
	tests := []struct {
		tag        string
		prerelease bool
	}{
		{tag: "v1.0.0", prerelease: false},
		{tag: "1.2.3", prerelease: false},
		{tag: "v1.0.0-rc.1", prerelease: true},
		{tag: "v2.0.0-alpha", prerelease: true},
		{tag: "1.0rc1", prerelease: true},
		{tag: "2.0a3", prerelease: true},
		{tag: "3.0.0b2", prerelease: true},
		{tag: "1.0.dev1", prerelease: true},
		{tag: "v10.20.30", prerelease: false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.prerelease, IsPrereleaseTag(tt.tag))
		})
	}
}

func TestNotesBuilder_LastReleaseTag(t *testing.T) {
	client := &MockAPIClient{}
	builder := NewNotesBuilder(client, "test-owner", "test-repo", testDrafterConfig())

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	client.On("ListTags", "test-owner", "test-repo").Return([]RepoTag{
		{Name: "v1.1.0-rc.1", CommitSHA: "sha-rc"},
		{Name: "v1.0.0", CommitSHA: "sha-old"},
		{Name: "v1.1.0", CommitSHA: "sha-new"},
	}, nil)
	client.On("GetCommit", "test-owner", "test-repo", "sha-old").Return(&Commit{SHA: "sha-old", CommittedAt: older}, nil)
	client.On("GetCommit", "test-owner", "test-repo", "sha-new").Return(&Commit{SHA: "sha-new", CommittedAt: newer}, nil)

	tag, cutoffTime, err := builder.LastReleaseTag()

	require.NoError(t, err)
	assert.Equal(t, "v1.1.0", tag.Name)
	assert.Equal(t, newer, cutoffTime)

	// The prerelease tag must never be resolved
	client.AssertNotCalled(t, "GetCommit", "test-owner", "test-repo", "sha-rc")
	client.AssertExpectations(t)
}

func TestNotesBuilder_LastReleaseTag_NoTags(t *testing.T) {
	client := &MockAPIClient{}
	builder := NewNotesBuilder(client, "test-owner", "test-repo", testDrafterConfig())

	client.On("ListTags", "test-owner", "test-repo").Return([]RepoTag{}, nil)

	_, _, err := builder.LastReleaseTag()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tags found")
}

func TestNotesBuilder_LastReleaseTag_OnlyPrereleases(t *testing.T) {
	client := &MockAPIClient{}
	builder := NewNotesBuilder(client, "test-owner", "test-repo", testDrafterConfig())

	client.On("ListTags", "test-owner", "test-repo").Return([]RepoTag{
		{Name: "v1.0.0-rc.1", CommitSHA: "sha-rc"},
	}, nil)

	_, _, err := builder.LastReleaseTag()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "only prereleases")
}

func TestNotesBuilder_Build(t *testing.T) {
	client := &MockAPIClient{}
	builder := NewNotesBuilder(client, "test-owner", "test-repo", testDrafterConfig())

	cutoffTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	client.On("ListTags", "test-owner", "test-repo").Return([]RepoTag{
		{Name: "v1.0.0", CommitSHA: "sha-tag"},
	}, nil)
	client.On("GetCommit", "test-owner", "test-repo", "sha-tag").Return(&Commit{SHA: "sha-tag", CommittedAt: cutoffTime}, nil)
	client.On("CompareCommits", "test-owner", "test-repo", "v1.0.0", "HEAD").Return([]Commit{
		{SHA: "sha-1", Message: "Add shiny thing", CommittedAt: cutoffTime.Add(24 * time.Hour)},
		{SHA: "sha-2", Message: "Fix the thing", CommittedAt: cutoffTime.Add(48 * time.Hour)},
		{SHA: "sha-3", Message: "Direct push", CommittedAt: cutoffTime.Add(72 * time.Hour)},
		{SHA: "sha-4", Message: "Unlabeled work", CommittedAt: cutoffTime.Add(96 * time.Hour)},
	}, nil)
	client.On("ListPullRequests", "test-owner", "test-repo", "closed").Return([]PullRequest{
		// Newest first, as the API delivers them
		{Number: 14, Title: "Unlabeled work", Merged: true, MergeCommitSHA: "sha-4", Author: "carol", Labels: []string{"docs"}, HTMLURL: "https://github.com/test-owner/test-repo/pull/14"},
		{Number: 13, Title: "Internal cleanup", Merged: true, MergeCommitSHA: "sha-x", Author: "bob", Labels: []string{"skip-changelog"}},
		{Number: 12, Title: "Fix the thing", Merged: true, MergeCommitSHA: "sha-2", Author: "bob", Labels: []string{"bug"}},
		{Number: 11, Title: "Not merged", Merged: false, Labels: []string{"bug"}},
		{Number: 10, Title: "Add shiny thing", Merged: true, MergeCommitSHA: "sha-1", Author: "alice", Labels: []string{"feature"}},
		// Older than the cutoff, iteration stops here
		{Number: 9, Title: "Old release work", Merged: true, MergeCommitSHA: "sha-old", Author: "alice", Labels: []string{"bug"}, ClosedAt: cutoffTime.Add(-time.Hour)},
	}, nil)

	notes, err := builder.Build()

	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", notes.Cutoff.Name)
	assert.Equal(t, cutoffTime, notes.CutoffTime)

	assert.Contains(t, notes.Body, "## Changes\n")
	assert.Contains(t, notes.Body, "### Features\n\n* Add shiny thing (#10) @alice\n")
	assert.Contains(t, notes.Body, "### Bugfixes\n\n* Fix the thing (#12) @bob\n")
	// Sections come in category declaration order
	assert.Less(t, strings.Index(notes.Body, "### Features"), strings.Index(notes.Body, "### Bugfixes"))

	// PR #14 is merged but carries no category label
	require.Len(t, notes.Errors, 1)
	assert.Contains(t, notes.Errors[0], "PR #14")

	// sha-3 had no pull request at all
	require.Len(t, notes.Orphans, 1)
	assert.Equal(t, "sha-3", notes.Orphans[0].SHA)

	client.AssertExpectations(t)
}

func TestNotesBuilder_Build_SkipsPRsMergedElsewhere(t *testing.T) {
	client := &MockAPIClient{}
	builder := NewNotesBuilder(client, "test-owner", "test-repo", testDrafterConfig())

	cutoffTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	client.On("ListTags", "test-owner", "test-repo").Return([]RepoTag{
		{Name: "v1.0.0", CommitSHA: "sha-tag"},
	}, nil)
	client.On("GetCommit", "test-owner", "test-repo", "sha-tag").Return(&Commit{SHA: "sha-tag", CommittedAt: cutoffTime}, nil)
	client.On("CompareCommits", "test-owner", "test-repo", "v1.0.0", "HEAD").Return([]Commit{}, nil)
	client.On("ListPullRequests", "test-owner", "test-repo", "closed").Return([]PullRequest{
		// Merged to a release branch: not in the compare range but newer
		// than the cutoff
		{Number: 20, Title: "Backport fix", Merged: true, MergeCommitSHA: "sha-elsewhere", Labels: []string{"bug"}, ClosedAt: cutoffTime.Add(time.Hour)},
	}, nil)

	notes, err := builder.Build()

	require.NoError(t, err)
	require.Len(t, notes.Skipped, 1)
	assert.Equal(t, 20, notes.Skipped[0].Number)
	assert.Empty(t, notes.Errors)

	client.AssertExpectations(t)
}

func TestNotesBuilder_Publish_CreatesDraft(t *testing.T) {
	client := &MockAPIClient{}
	builder := NewNotesBuilder(client, "test-owner", "test-repo", testDrafterConfig())

	notes := &ReleaseNotes{Body: "## Changes\n"}

	client.On("ListReleases", "test-owner", "test-repo").Return([]Release{
		{ID: 1, TagName: "v1.0.0", Name: "v1.0.0", Draft: false},
	}, nil)
	client.On("CreateRelease", "test-owner", "test-repo", Release{
		Name:       DraftReleaseName,
		Body:       "## Changes\n",
		Draft:      true,
		Prerelease: true,
	}).Return(nil)

	changed, err := builder.Publish(notes)

	require.NoError(t, err)
	assert.True(t, changed)
	client.AssertExpectations(t)
}

func TestNotesBuilder_Publish_UpdatesExistingDraft(t *testing.T) {
	client := &MockAPIClient{}
	builder := NewNotesBuilder(client, "test-owner", "test-repo", testDrafterConfig())

	notes := &ReleaseNotes{Body: "## Changes\n\n### Bugfixes\n\n* Fix (#1) @alice\n"}

	client.On("ListReleases", "test-owner", "test-repo").Return([]Release{
		{ID: 7, Name: "Draft", Body: "## Changes\n", Draft: true, Prerelease: true},
	}, nil)
	client.On("UpdateRelease", "test-owner", "test-repo", Release{
		ID:         7,
		Name:       DraftReleaseName,
		Body:       notes.Body,
		Draft:      true,
		Prerelease: true,
	}).Return(nil)

	changed, err := builder.Publish(notes)

	require.NoError(t, err)
	assert.True(t, changed)
	client.AssertExpectations(t)
}

func TestNotesBuilder_Publish_NoOpWhenBodyUnchanged(t *testing.T) {
	client := &MockAPIClient{}
	builder := NewNotesBuilder(client, "test-owner", "test-repo", testDrafterConfig())

	notes := &ReleaseNotes{Body: "## Changes\n"}

	client.On("ListReleases", "test-owner", "test-repo").Return([]Release{
		{ID: 7, Name: "Draft", Body: "## Changes\n", Draft: true, Prerelease: true},
	}, nil)

	changed, err := builder.Publish(notes)

	require.NoError(t, err)
	assert.False(t, changed)
	client.AssertNotCalled(t, "UpdateRelease")
	client.AssertNotCalled(t, "CreateRelease")
	client.AssertExpectations(t)
}

func TestNotesBuilder_Publish_ListError(t *testing.T) {
	client := &MockAPIClient{}
	builder := NewNotesBuilder(client, "test-owner", "test-repo", testDrafterConfig())

	client.On("ListReleases", "test-owner", "test-repo").Return(nil, errors.New("api error"))

	_, err := builder.Publish(&ReleaseNotes{Body: "## Changes\n"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list releases")
}
