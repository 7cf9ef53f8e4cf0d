// Package extract converts tasks into the atomic claims the validation
// pipeline works on. Extraction is pure: it returns new objects, never
// touches the task, and produces a stable ordering so two extractions of
// the same task are identical.
package extract

import (
	"context"
	"fmt"
	"sync"

	"github.com/ovachev/planproof/internal/model"
)

// ClaimExtractor turns one task into its ordered claims
type ClaimExtractor struct{}

// NewClaimExtractor creates a new claim extractor
func NewClaimExtractor() *ClaimExtractor {
	return &ClaimExtractor{}
}

// Extract returns the claims embedded in a task, ordered by field
// (duration, start date, dependencies, regulatory requirement) and
// sub-index within the dependency list. Absent optional fields simply
// produce no claim for that type.
func (e *ClaimExtractor) Extract(task model.Task) []model.Claim {
	var claims []model.Claim

	if task.Duration != nil {
		claims = append(claims, claimFromField(task.ID, model.ClaimTypeDuration, task.Duration.Value, task.Duration.Provenance))
	}

	if task.StartDate != nil {
		claims = append(claims, claimFromField(task.ID, model.ClaimTypeDeadline, task.StartDate.Value, task.StartDate.Provenance))
	}

	if task.Dependencies != nil {
		for i, dep := range task.Dependencies.TaskIDs {
			c := claimFromField(task.ID, model.ClaimTypeDependency, dep, task.Dependencies.Provenance)
			c.ID = ClaimID(task.ID, model.ClaimTypeDependency, i)
			claims = append(claims, c)
		}
	}

	if task.RegulatoryRequirement != nil {
		value := task.RegulatoryRequirement.Regulation
		if value == "" && task.RegulatoryRequirement.IsRequired {
			value = "required"
		}
		claims = append(claims, claimFromField(task.ID, model.ClaimTypeRequirement, value, task.RegulatoryRequirement.Provenance))
	}

	return claims
}

// ExtractAll runs extraction over many tasks concurrently. Each task is
// independent, so the fan-out is safe; results come back grouped per
// task in input order.
func (e *ClaimExtractor) ExtractAll(ctx context.Context, tasks []model.Task, maxWorkers int) [][]model.Claim {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	results := make([][]model.Claim, len(tasks))
	semaphore := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(idx int, t model.Task) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = e.Extract(t)
		}(i, task)
	}

	wg.Wait()
	return results
}

// ClaimID builds the deterministic claim id for a task field. The
// sub-index only appears for list-valued fields (dependencies).
func ClaimID(taskID string, t model.ClaimType, index int) string {
	if t == model.ClaimTypeDependency {
		return fmt.Sprintf("%s:%s:%d", taskID, t, index)
	}
	return fmt.Sprintf("%s:%s", taskID, t)
}

// claimFromField copies field provenance into a standalone claim
func claimFromField(taskID string, t model.ClaimType, value string, p model.Provenance) model.Claim {
	citations := make([]model.Citation, len(p.Citations))
	copy(citations, p.Citations)

	var rationale *model.InferenceRationale
	if p.Rationale != nil {
		r := *p.Rationale
		r.SupportingClaims = append([]string(nil), p.Rationale.SupportingClaims...)
		rationale = &r
	}

	return model.Claim{
		ID:         ClaimID(taskID, t, 0),
		TaskID:     taskID,
		Type:       t,
		Value:      value,
		Origin:     p.Origin,
		Confidence: p.Confidence,
		Citations:  citations,
		Rationale:  rationale,
	}
}
