package github

import (
	"fmt"
	"strings"
)

// reconciler implements the Reconciler interface for repository labels
type reconciler struct {
	client APIClient
	owner  string
	repo   string
	prune  bool
}

// NewReconciler creates a new label reconciler. When prune is true, remote
// labels not present in the configuration are planned for deletion instead
// of being reported only.
func NewReconciler(client APIClient, owner, repo string, prune bool) Reconciler {
	return &reconciler{
		client: client,
		owner:  owner,
		repo:   repo,
		prune:  prune,
	}
}

// Plan creates a reconciliation plan by comparing the desired label set with
// the labels currently defined on the repository
func (r *reconciler) Plan(set LabelSet) (*ReconciliationPlan, error) {
	plan := &ReconciliationPlan{Repo: r.repo}

	current, err := r.client.ListLabels(r.owner, r.repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels for %s/%s: %w", r.owner, r.repo, err)
	}

	// GitHub label names are case-insensitive, index accordingly
	currentMap := make(map[string]*Label)
	for i := range current {
		currentMap[strings.ToLower(current[i].Name)] = &current[i]
	}

	// Labels to create or update
	for i := range set.Labels {
		desired := &set.Labels[i]
		existing, exists := currentMap[strings.ToLower(desired.Name)]
		if !exists {
			plan.Changes = append(plan.Changes, LabelChange{
				Type:  ChangeTypeCreate,
				After: desired,
			})
			continue
		}

		if !labelsEqual(existing, desired) {
			plan.Changes = append(plan.Changes, LabelChange{
				Type:   ChangeTypeUpdate,
				Before: existing,
				After:  desired,
			})
		}
	}

	// Remote labels absent from the configuration
	for i := range current {
		if set.Find(current[i].Name) != nil {
			continue
		}
		if r.prune {
			plan.Changes = append(plan.Changes, LabelChange{
				Type:   ChangeTypeDelete,
				Before: &current[i],
			})
		} else {
			plan.Unknown = append(plan.Unknown, current[i])
		}
	}

	return plan, nil
}

// Apply executes the reconciliation plan
func (r *reconciler) Apply(plan *ReconciliationPlan) error {
	var succeeded []string
	failed := make(map[string]error)

	for _, change := range plan.Changes {
		operation := fmt.Sprintf("label %s", change.Name())
		if err := r.applyLabelChange(change); err != nil {
			failed[operation] = err
		} else {
			succeeded = append(succeeded, operation)
		}
	}

	if len(failed) > 0 {
		return NewPartialFailureError(succeeded, failed)
	}

	return nil
}

// Validate validates the label set against GitHub constraints
func (r *reconciler) Validate(set LabelSet) error {
	return set.Validate()
}

func (r *reconciler) applyLabelChange(change LabelChange) error {
	switch change.Type {
	case ChangeTypeCreate:
		label := *change.After
		label.Color = NormalizeColor(label.Color)
		return r.client.CreateLabel(r.owner, r.repo, label)
	case ChangeTypeUpdate:
		label := *change.After
		label.Color = NormalizeColor(label.Color)
		return r.client.UpdateLabel(r.owner, r.repo, change.Before.Name, label)
	case ChangeTypeDelete:
		return r.client.DeleteLabel(r.owner, r.repo, change.Before.Name)
	default:
		return fmt.Errorf("unsupported label change type: %s", change.Type)
	}
}

// labelsEqual compares a remote label with a configured one. Colors are
// normalized before comparison, names are matched case-insensitively.
func labelsEqual(current, desired *Label) bool {
	return current.Name == desired.Name &&
		NormalizeColor(current.Color) == NormalizeColor(desired.Color) &&
		current.Description == desired.Description
}
