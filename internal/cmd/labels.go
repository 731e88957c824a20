package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pycontribs/tender/pkg/github"
)

var (
	labelsPrune bool
	labelsRepos []string
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Sync repository labels with .github/labels.yml",
	Long: `Reconcile the repository's labels with the declarative definition in
.github/labels.yml. When the file is missing locally it is fetched from the
organization's meta repository.

Without --fix the planned changes are only displayed. Labels present on the
repository but absent from the configuration are reported but left alone
unless --prune is given.

Examples:
  # Preview label changes for the current repository
  tender labels

  # Apply them, deleting labels not in the configuration
  tender labels --fix --prune

  # Sync the same label set across several repositories of one owner
  tender labels --fix --org pycontribs --repos ansible-lint,molecule,tender`,
	RunE: runLabels,
}

func init() {
	labelsCmd.Flags().BoolVar(&labelsPrune, "prune", false, "Delete labels that are not in the configuration")
	labelsCmd.Flags().StringSliceVar(&labelsRepos, "repos", nil, "Comma-separated list of repositories to sync instead of the current one")
}

func runLabels(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}

	set, err := app.loadLabelSet()
	if err != nil {
		return err
	}

	fmt.Printf("✓ Loaded %d label definitions\n", len(set.Labels))

	if len(labelsRepos) > 0 {
		return runMultiRepoLabels(cmd, app, set)
	}

	return runSingleRepoLabels(app, set)
}

// runSingleRepoLabels syncs the label set to the target repository
func runSingleRepoLabels(app *appContext, set *github.LabelSet) error {
	reconciler := github.NewReconciler(app.client, app.owner, app.repo, labelsPrune)

	if err := reconciler.Validate(*set); err != nil {
		return fmt.Errorf("label configuration validation failed: %w", err)
	}

	plan, err := reconciler.Plan(*set)
	if err != nil {
		return fmt.Errorf("failed to plan label changes: %w", err)
	}

	displayLabelPlan(os.Stdout, plan, app.owner, app.repo)

	if !plan.HasChanges() {
		fmt.Printf("\n✓ Labels are already up to date. No changes needed.\n")
		return nil
	}

	if !fixFlag {
		fmt.Printf("\n✓ Preview completed. Re-run with --fix to apply.\n")
		return nil
	}

	fmt.Printf("\nApplying changes...\n")
	if err := reconciler.Apply(plan); err != nil {
		return fmt.Errorf("failed to apply label changes: %w", err)
	}

	fmt.Printf("\n✅ Successfully applied %d change(s) to %s/%s\n", len(plan.Changes), app.owner, app.repo)
	return nil
}

// runMultiRepoLabels syncs the label set across every repository named by
// --repos, processing them independently
func runMultiRepoLabels(cmd *cobra.Command, app *appContext, set *github.LabelSet) error {
	multi := github.NewMultiReconciler(app.client, app.owner, labelsPrune)

	plans, planErr := multi.PlanAll(cmd.Context(), *set, labelsRepos)
	if planErr != nil && !fixFlag {
		// Keep going in preview mode so the successful plans are still shown
		fmt.Printf("\n⚠️  Planning errors encountered:\n   %v\n", planErr)
	} else if planErr != nil {
		return fmt.Errorf("failed to plan label changes: %w", planErr)
	}

	totalChanges := 0
	for _, repo := range labelsRepos {
		plan := plans[repo]
		if plan == nil {
			fmt.Printf("\n📦 %s/%s: ❌ Planning failed\n", app.owner, repo)
			continue
		}
		displayLabelPlan(os.Stdout, plan, app.owner, repo)
		totalChanges += len(plan.Changes)
	}

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("  • Total repositories: %d\n", len(labelsRepos))
	fmt.Printf("  • Total changes: %d\n", totalChanges)

	if totalChanges == 0 {
		fmt.Printf("\n✓ All repositories are already up to date. No changes needed.\n")
		return nil
	}

	if !fixFlag {
		fmt.Printf("\n✓ Preview completed. Re-run with --fix to apply.\n")
		return nil
	}

	fmt.Printf("\nApplying changes to %d repositories...\n", len(plans))
	result, err := multi.ApplyAll(cmd.Context(), plans)
	if err != nil {
		displayMultiSyncResult(result, app.owner)
		if multiErr, ok := err.(*github.MultiRepoError); ok && multiErr.IsPartialFailure() {
			return fmt.Errorf("partial failure: %d repositories succeeded, %d failed",
				result.Summary.SuccessCount, result.Summary.FailureCount)
		}
		return fmt.Errorf("failed to apply label changes: %w", err)
	}

	displayMultiSyncResult(result, app.owner)
	return nil
}

// displayLabelPlan shows the planned changes for one repository. Colors are
// normalized the same way the reconciler compares them, so a "#FF0000" in the
// configuration never shows up as a change against a remote "ff0000".
func displayLabelPlan(w io.Writer, plan *github.ReconciliationPlan, owner, repo string) {
	fmt.Fprintf(w, "\n📦 %s/%s:\n", owner, repo)

	if !plan.HasChanges() && len(plan.Unknown) == 0 {
		fmt.Fprintf(w, "  No changes needed\n")
		return
	}

	for _, change := range plan.Changes {
		switch change.Type {
		case github.ChangeTypeCreate:
			fmt.Fprintf(w, "  + Label: CREATE %s (#%s)\n", change.After.Name, github.NormalizeColor(change.After.Color))
		case github.ChangeTypeUpdate:
			fmt.Fprintf(w, "  ~ Label: UPDATE %s\n", change.Name())
			if change.Before.Name != change.After.Name {
				fmt.Fprintf(w, "    ~ Name: %q → %q\n", change.Before.Name, change.After.Name)
			}
			beforeColor := github.NormalizeColor(change.Before.Color)
			afterColor := github.NormalizeColor(change.After.Color)
			if beforeColor != afterColor {
				fmt.Fprintf(w, "    ~ Color: #%s → #%s\n", beforeColor, afterColor)
			}
			if change.Before.Description != change.After.Description {
				fmt.Fprintf(w, "    ~ Description: %q → %q\n", change.Before.Description, change.After.Description)
			}
		case github.ChangeTypeDelete:
			fmt.Fprintf(w, "  ⚠️  Label: DELETE %s (REMOVING LABEL)\n", change.Before.Name)
		}
	}

	for _, label := range plan.Unknown {
		fmt.Fprintf(w, "  ? Label: %s is not in the configuration (use --prune to delete)\n", label.Name)
	}
}

// displayMultiSyncResult shows the outcome of a multi-repository sync
func displayMultiSyncResult(result *github.MultiSyncResult, owner string) {
	if result == nil {
		return
	}

	if len(result.Succeeded) > 0 {
		fmt.Printf("\n✅ Successful repositories:\n")
		for _, repo := range result.Succeeded {
			fmt.Printf("  • %s/%s\n", owner, repo)
		}
	}

	if len(result.Failed) > 0 {
		fmt.Printf("\n❌ Failed repositories:\n")
		for repo, err := range result.Failed {
			fmt.Printf("  • %s/%s: %v\n", owner, repo, err)
		}
	}

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("  • Total repositories: %d\n", result.Summary.TotalRepositories)
	fmt.Printf("  • Successful: %d\n", result.Summary.SuccessCount)
	fmt.Printf("  • Failed: %d\n", result.Summary.FailureCount)
	fmt.Printf("  • Total changes applied: %d\n", result.Summary.TotalChanges)
}
