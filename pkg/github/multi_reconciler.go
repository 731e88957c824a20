package github

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MultiReconciler applies one label set to many repositories
type MultiReconciler interface {
	// PlanAll creates reconciliation plans for all repositories
	PlanAll(ctx context.Context, set LabelSet, repos []string) (map[string]*ReconciliationPlan, error)

	// ApplyAll executes the plans, processing repositories independently
	ApplyAll(ctx context.Context, plans map[string]*ReconciliationPlan) (*MultiSyncResult, error)
}

// MultiSyncResult summarizes a multi-repository label sync
type MultiSyncResult struct {
	Succeeded []string         `json:"succeeded"`
	Failed    map[string]error `json:"failed"`
	Summary   MultiSyncSummary `json:"summary"`
}

// MultiSyncSummary holds aggregate counters for a multi-repository sync
type MultiSyncSummary struct {
	TotalRepositories int `json:"total_repositories"`
	SuccessCount      int `json:"success_count"`
	FailureCount      int `json:"failure_count"`
	TotalChanges      int `json:"total_changes"`
}

// MultiRepoError aggregates per-repository failures
type MultiRepoError struct {
	Failed  map[string]error `json:"failed"`
	Partial bool             `json:"partial"`
}

// Error implements the error interface
func (e *MultiRepoError) Error() string {
	repos := make([]string, 0, len(e.Failed))
	for repo := range e.Failed {
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	return fmt.Sprintf("label sync failed for %d repositories: %v", len(e.Failed), repos)
}

// IsPartialFailure reports whether at least one repository succeeded
func (e *MultiRepoError) IsPartialFailure() bool {
	return e.Partial
}

// multiReconciler implements MultiReconciler with rate-limited concurrency
type multiReconciler struct {
	client  APIClient
	owner   string
	prune   bool
	limiter RateLimiter
}

// NewMultiReconciler creates a reconciler that syncs a label set across
// multiple repositories of the same owner. When the client tracks GitHub
// quota headers, its limiter is shared so throttling reacts to real usage.
func NewMultiReconciler(client APIClient, owner string, prune bool) MultiReconciler {
	limiter := NewRateLimiter(DefaultRateLimiterConfig())
	if tracked, ok := client.(interface{ RateLimiter() RateLimiter }); ok {
		limiter = tracked.RateLimiter()
	}

	return &multiReconciler{
		client:  client,
		owner:   owner,
		prune:   prune,
		limiter: limiter,
	}
}

// PlanAll creates reconciliation plans for all repositories
func (m *multiReconciler) PlanAll(ctx context.Context, set LabelSet, repos []string) (map[string]*ReconciliationPlan, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("no repositories specified")
	}

	plans := make(map[string]*ReconciliationPlan, len(repos))
	failed := make(map[string]error)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, repo := range repos {
		wg.Add(1)
		go func(repo string) {
			defer wg.Done()

			if err := m.limiter.AcquireSlot(ctx); err != nil {
				mu.Lock()
				failed[repo] = err
				mu.Unlock()
				return
			}
			defer m.limiter.ReleaseSlot()

			if err := m.limiter.Wait(ctx); err != nil {
				mu.Lock()
				failed[repo] = err
				mu.Unlock()
				return
			}

			plan, err := NewReconciler(m.client, m.owner, repo, m.prune).Plan(set)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[repo] = err
				plans[repo] = nil
			} else {
				plans[repo] = plan
			}
		}(repo)
	}

	wg.Wait()

	if len(failed) > 0 {
		return plans, &MultiRepoError{Failed: failed, Partial: len(failed) < len(repos)}
	}

	return plans, nil
}

// ApplyAll executes the plans. Failures in one repository do not stop the
// others; the aggregate result reports both outcomes.
func (m *multiReconciler) ApplyAll(ctx context.Context, plans map[string]*ReconciliationPlan) (*MultiSyncResult, error) {
	result := &MultiSyncResult{
		Failed: make(map[string]error),
	}
	result.Summary.TotalRepositories = len(plans)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for repo, plan := range plans {
		if plan == nil {
			continue
		}

		wg.Add(1)
		go func(repo string, plan *ReconciliationPlan) {
			defer wg.Done()

			if err := m.limiter.AcquireSlot(ctx); err != nil {
				mu.Lock()
				result.Failed[repo] = err
				mu.Unlock()
				return
			}
			defer m.limiter.ReleaseSlot()

			if err := m.limiter.Wait(ctx); err != nil {
				mu.Lock()
				result.Failed[repo] = err
				mu.Unlock()
				return
			}

			err := NewReconciler(m.client, m.owner, repo, m.prune).Apply(plan)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[repo] = err
			} else {
				result.Succeeded = append(result.Succeeded, repo)
				result.Summary.TotalChanges += len(plan.Changes)
			}
		}(repo, plan)
	}

	wg.Wait()

	sort.Strings(result.Succeeded)
	result.Summary.SuccessCount = len(result.Succeeded)
	result.Summary.FailureCount = len(result.Failed)

	if len(result.Failed) > 0 {
		return result, &MultiRepoError{
			Failed:  result.Failed,
			Partial: len(result.Succeeded) > 0,
		}
	}

	return result, nil
}
