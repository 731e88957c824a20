package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pycontribs/tender/pkg/fuzzy"
	"github.com/pycontribs/tender/pkg/github"
)

var pullsCmd = &cobra.Command{
	Use:   "pulls",
	Short: "Audit pull requests for missing category labels",
	Long: `Check that every open or merged pull request carries at least one of the
category labels defined in .github/release-drafter.yml. Unlabeled pull
requests cannot be placed in a release notes section.

With --fix and an interactive terminal, tender prompts for a label to apply
to each unlabeled pull request.

Examples:
  # Report unlabeled pull requests
  tender pulls

  # Interactively label them
  tender pulls --fix`,
	RunE: runPulls,
}

func runPulls(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}

	drafter, err := app.loadDrafterConfig()
	if err != nil {
		return err
	}
	debugf("Categories: %s", drafter.DescribeCategories())

	auditor := github.NewAuditor(app.client, app.owner, app.repo, drafter)

	report, err := auditor.Audit()
	if err != nil {
		return fmt.Errorf("failed to audit pull requests: %w", err)
	}

	if !report.HasViolations() {
		fmt.Printf("✓ Checked %d pull requests, all carry a category label\n", report.Checked)
		return nil
	}

	fmt.Printf("\n⚠️  %d pull request(s) are missing a category label:\n", len(report.Violations))
	for _, v := range report.Violations {
		link := hyperlink(v.PR.HTMLURL, fmt.Sprintf("#%d", v.PR.Number))
		fmt.Printf("  • %s %s: %s\n", link, v.PR.Title, v.Message)
	}
	if report.Truncated {
		fmt.Printf("  … report truncated at %d violations\n", len(report.Violations))
	}

	if !fixFlag {
		return fmt.Errorf("%d pull requests are missing a category label (re-run with --fix to label them)",
			len(report.Violations))
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("--fix requires an interactive terminal to pick labels")
	}

	return fixViolations(auditor, drafter, report)
}

// fixViolations walks the violations and lets the user pick a category label
// for each pull request
func fixViolations(auditor *github.Auditor, drafter *github.DrafterConfig, report *github.AuditReport) error {
	sections := drafter.SectionMap()
	remaining := 0

	for _, v := range report.Violations {
		finder := fuzzy.NewFzf(fmt.Sprintf("Label for PR #%d (%s):", v.PR.Number, v.PR.Title))

		var options []fuzzy.Option
		for _, label := range drafter.RequiredLabels() {
			options = append(options, fuzzy.Option{
				Value:       label,
				Description: sections[label],
			})
		}
		if err := finder.SetOptions(options); err != nil {
			return err
		}

		label, err := finder.Select()
		if err != nil {
			fmt.Printf("  ⏭️  Skipping PR #%d: %v\n", v.PR.Number, err)
			remaining++
			continue
		}

		if err := auditor.FixViolation(v, label); err != nil {
			fmt.Printf("  ❌ Failed to label PR #%d: %v\n", v.PR.Number, err)
			remaining++
			continue
		}

		fmt.Printf("  ✓ Labeled PR #%d with %s\n", v.PR.Number, label)
	}

	if remaining > 0 {
		return fmt.Errorf("%d pull requests are still missing a category label", remaining)
	}

	fmt.Printf("\n✅ All pull requests labeled\n")
	return nil
}
