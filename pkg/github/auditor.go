package github

import (
	"fmt"
	"strings"
)

// DefaultMaxViolations caps the number of reported audit violations
const DefaultMaxViolations = 20

// Violation describes a pull request that fails the label audit
type Violation struct {
	PR      PullRequest `json:"pr"`
	Message string      `json:"message"`
}

// AuditReport summarizes a pull request label audit
type AuditReport struct {
	Checked    int         `json:"checked"`
	Violations []Violation `json:"violations"`

	// Truncated is set when the violation cap was reached before all pull
	// requests were inspected
	Truncated bool `json:"truncated"`
}

// HasViolations reports whether the audit found any problems
func (r *AuditReport) HasViolations() bool {
	return len(r.Violations) > 0
}

// Auditor checks that every open or merged pull request carries at least one
// of the required category labels from the release drafter configuration
type Auditor struct {
	client        APIClient
	owner         string
	repo          string
	drafter       *DrafterConfig
	maxViolations int
}

// NewAuditor creates a pull request label auditor
func NewAuditor(client APIClient, owner, repo string, drafter *DrafterConfig) *Auditor {
	return &Auditor{
		client:        client,
		owner:         owner,
		repo:          repo,
		drafter:       drafter,
		maxViolations: DefaultMaxViolations,
	}
}

// Audit inspects pull requests and reports the ones missing required labels.
// Closed but unmerged pull requests are skipped.
func (a *Auditor) Audit() (*AuditReport, error) {
	pulls, err := a.client.ListPullRequests(a.owner, a.repo, "all")
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests for %s/%s: %w", a.owner, a.repo, err)
	}

	required := a.drafter.RequiredLabels()
	report := &AuditReport{}

	for i := range pulls {
		pull := &pulls[i]

		// Abandoned pull requests don't need labels
		if !pull.Merged && pull.State == "closed" {
			continue
		}

		report.Checked++

		if _, ok := a.drafter.HasRequiredLabel(pull); ok {
			continue
		}

		report.Violations = append(report.Violations, Violation{
			PR: *pull,
			Message: fmt.Sprintf("should have at least one label out of %s but found: %s",
				strings.Join(required, ", "), strings.Join(pull.Labels, ", ")),
		})

		if len(report.Violations) >= a.maxViolations {
			report.Truncated = true
			break
		}
	}

	return report, nil
}

// FixViolation applies the chosen category label to a pull request
func (a *Auditor) FixViolation(v Violation, label string) error {
	if label == "" {
		return fmt.Errorf("no label selected for PR #%d", v.PR.Number)
	}
	if !containsString(a.drafter.RequiredLabels(), label) {
		return fmt.Errorf("label %q is not one of the required category labels", label)
	}
	return a.client.AddLabels(a.owner, a.repo, v.PR.Number, []string{label})
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
