package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pycontribs/tender/pkg/github"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Generate release notes for everything merged since the last release",
	Long: `Build release notes from the pull requests merged since the last
non-prerelease tag, grouped into sections by the categories in
.github/release-drafter.yml. This is also what a bare tender invocation runs.

Without --fix the notes are only printed. With --fix they are saved as the
repository's draft release, creating it if needed. An existing draft whose
body already matches is left untouched.

Examples:
  # Print the release notes that would be drafted
  tender draft

  # Create or update the draft release
  tender draft --fix`,
	RunE: runDraft,
}

func runDraft(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}

	drafter, err := app.loadDrafterConfig()
	if err != nil {
		return err
	}
	debugf("Categories: %s", drafter.DescribeCategories())

	builder := github.NewNotesBuilder(app.client, app.owner, app.repo, drafter)

	notes, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build release notes: %w", err)
	}

	fmt.Printf("📋 Release notes for %s/%s since %s (%s):\n\n",
		app.owner, app.repo, notes.Cutoff.Name, notes.CutoffTime.Format("2006-01-02"))
	fmt.Print(notes.Body)

	displayNotesIssues(notes)

	if fixFlag {
		changed, err := builder.Publish(notes)
		if err != nil {
			return err
		}
		if changed {
			fmt.Printf("\n✅ Draft release updated\n")
		} else {
			fmt.Printf("\n✓ Draft release already up to date\n")
		}
	}

	if len(notes.Errors) > 0 {
		return fmt.Errorf("%d pull requests could not be placed in a section", len(notes.Errors))
	}

	return nil
}

// displayNotesIssues reports the pull requests and commits that did not make
// it into a section
func displayNotesIssues(notes *github.ReleaseNotes) {
	if len(notes.Errors) > 0 {
		fmt.Printf("\n❌ Uncategorized pull requests:\n")
		for _, msg := range notes.Errors {
			fmt.Printf("  • %s\n", msg)
		}
	}

	if len(notes.Orphans) > 0 {
		fmt.Printf("\n⚠️  Unreleased commits with no pull request (direct pushes?):\n")
		for _, commit := range notes.Orphans {
			link := hyperlink(commit.HTMLURL, shortSHA(commit.SHA))
			fmt.Printf("  • %s %s\n", link, commit.Summary())
		}
	}

	if len(notes.Skipped) > 0 {
		fmt.Printf("\n⏭️  Pull requests merged outside this branch:\n")
		for _, pull := range notes.Skipped {
			link := hyperlink(pull.HTMLURL, fmt.Sprintf("#%d", pull.Number))
			fmt.Printf("  • %s %s\n", link, pull.Title)
		}
	}
}
