// Package validate runs the four-check validation pipeline over a
// schedule's claims: citation verification, contradiction detection,
// provenance audit, confidence calibration.
//
// Per-task work fans out across a bounded set of goroutines; ledger
// writes are serialized behind the service mutex. Contradiction
// detection needs the full ledger, so it runs after the per-task join.
package validate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ovachev/planproof/internal/docs"
	"github.com/ovachev/planproof/internal/ledger"
	"github.com/ovachev/planproof/internal/model"
	"go.uber.org/zap"
)

// Service validates a schedule's claims against its source documents
type Service struct {
	store      *docs.Store
	ledger     *ledger.Ledger
	maxWorkers int
	logger     *zap.Logger
	now        func() time.Time // Injectable clock for staleness tests

	mu sync.Mutex // Serializes ledger mutation during fan-out
}

// NewService creates a validation service bound to one ledger and one
// document store. The ledger must already hold the extracted claims.
func NewService(store *docs.Store, led *ledger.Ledger, maxWorkers int, logger *zap.Logger) *Service {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		ledger:     led,
		maxWorkers: maxWorkers,
		logger:     logger,
		now:        time.Now,
	}
}

// ValidateSchedule validates every task and returns per-task results in
// input order. An error while validating one task degrades that task to
// a zero-quality flagged result and never aborts the batch.
func (s *Service) ValidateSchedule(ctx context.Context, tasks []model.Task) []model.TaskValidation {
	results := make([]model.TaskValidation, len(tasks))

	// Phase 1: structural checks per task, fanned out. Citation
	// verification and the provenance audit touch only the task's own
	// claims, so tasks are independent here.
	semaphore := make(chan struct{}, s.maxWorkers)
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(idx int, t model.Task) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = s.failedResult(t.ID, "context cancelled")
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = s.validateTask(t)
		}(i, task)
	}

	wg.Wait()

	// Phase 2: contradiction detection needs every claim in the ledger,
	// so it is the synchronization point of the run.
	s.DetectContradictions()

	// Phase 3: calibration folds contradiction context back into each
	// claim's confidence, then the per-task results pick up the
	// contradiction ids.
	for i := range results {
		if results[i].Failed {
			continue
		}
		s.calibrateTask(&results[i])
	}

	return results
}

// validateTask runs the structural half of the pipeline for one task.
// A panic inside degrades only this task.
func (s *Service) validateTask(task model.Task) (result model.TaskValidation) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("task validation panicked",
				zap.String("task_id", task.ID),
				zap.Any("panic", r))
			result = s.failedResult(task.ID, fmt.Sprintf("validation panic: %v", r))
		}
	}()

	s.mu.Lock()
	claims := s.ledger.ClaimsByTask(task.ID)
	s.mu.Unlock()

	result = model.TaskValidation{
		TaskID: task.ID,
		Claims: claims,
	}

	if len(claims) == 0 {
		result.CitationCoverage = 0
		result.AvgProvenance = 0
		return result
	}

	cited := 0
	provenanceSum := 0.0

	for _, claim := range claims {
		if s.verifyCitations(claim) {
			cited++
		}
		provenanceSum += s.auditProvenance(claim)
	}

	result.CitationCoverage = float64(cited) / float64(len(claims))
	result.AvgProvenance = provenanceSum / float64(len(claims))
	return result
}

// calibrateTask applies confidence calibration to every claim of a
// task, writes the calibrated claims back to the ledger, and attaches
// the task's contradiction ids.
func (s *Service) calibrateTask(result *model.TaskValidation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result.Contradictions = s.ledger.ContradictionsByTask(result.TaskID)

	highByClaim := s.highContradictionCounts(result.TaskID)

	for i, claim := range result.Claims {
		provenance := s.auditProvenance(claim)
		calibrated := calibrate(claim, result.CitationCoverage, highByClaim[claim.ID], provenance)
		result.Claims[i].Confidence = calibrated

		ledgerClaim := claim
		ledgerClaim.Confidence = calibrated
		if err := s.ledger.UpdateClaim(ledgerClaim); err != nil {
			s.logger.Warn("calibration write-back failed",
				zap.String("claim_id", claim.ID),
				zap.Error(err))
		}
	}
}

// highContradictionCounts maps claim id to the number of unresolved
// high-severity contradictions it participates in.
func (s *Service) highContradictionCounts(taskID string) map[string]int {
	counts := make(map[string]int)
	for _, id := range s.ledger.ContradictionsByTask(taskID) {
		c, ok := s.ledger.Contradiction(id)
		if !ok || c.Severity != model.SeverityHigh || c.Resolved() {
			continue
		}
		counts[c.ClaimA]++
		counts[c.ClaimB]++
	}
	return counts
}

func (s *Service) failedResult(taskID, detail string) model.TaskValidation {
	return model.TaskValidation{
		TaskID:           taskID,
		Claims:           []model.Claim{},
		CitationCoverage: 0,
		AvgProvenance:    0,
		Failed:           true,
		Error:            detail,
	}
}
