// Package orchestrate sequences the full pipeline into one 8-step job:
// accept schedule, extract claims, validate tasks, attach metadata,
// evaluate gates, repair, final structural check, store. One
// orchestrator instance processes one job end to end; job state is
// mutated only by the owning goroutine and polled read-only by callers.
package orchestrate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ovachev/planproof/internal/docs"
	"github.com/ovachev/planproof/internal/extract"
	"github.com/ovachev/planproof/internal/gates"
	"github.com/ovachev/planproof/internal/ledger"
	"github.com/ovachev/planproof/internal/llm"
	"github.com/ovachev/planproof/internal/model"
	"github.com/ovachev/planproof/internal/repair"
	"github.com/ovachev/planproof/internal/validate"
	"go.uber.org/zap"
)

// Progress checkpoints for the 8 job steps. Progress only moves forward.
const (
	progressAccepted  = 10
	progressExtracted = 25
	progressValidated = 40
	progressAttached  = 55
	progressGated     = 70
	progressRepaired  = 80
	progressFinal     = 90
	progressComplete  = 100
)

// Orchestrator runs validation jobs
type Orchestrator struct {
	cfg        *model.Config
	logger     *zap.Logger
	summarizer *llm.Summarizer
	jobs       *JobStore
	extractor  *extract.ClaimExtractor
	now        func() time.Time
}

// New creates an orchestrator. The summarizer may be nil (reviews
// disabled); a nil logger falls back to a no-op logger.
func New(cfg *model.Config, summarizer *llm.Summarizer, logger *zap.Logger) *Orchestrator {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:        cfg,
		logger:     logger,
		summarizer: summarizer,
		jobs:       NewJobStore(cfg.Jobs),
		extractor:  extract.NewClaimExtractor(),
		now:        time.Now,
	}
}

// Job returns a snapshot of a job's state for polling
func (o *Orchestrator) Job(id string) (model.Job, bool) {
	return o.jobs.Get(id)
}

// Chart returns a stored finished report by chart id
func (o *Orchestrator) Chart(id string) (*model.Report, bool) {
	return o.jobs.Chart(id)
}

// Run processes one schedule end to end and returns the final report.
// The schedule is annotated in place; the only fatal error is a failed
// final structural validation.
func (o *Orchestrator) Run(ctx context.Context, schedule *model.Schedule, documents []model.SourceDocument) (*model.Report, error) {
	job := model.Job{
		ID:        uuid.NewString(),
		Status:    model.JobStarted,
		CreatedAt: o.now(),
		UpdatedAt: o.now(),
	}
	o.jobs.put(job)

	report, err := o.run(ctx, &job, schedule, documents)
	if err != nil {
		job.Status = model.JobFailed
		job.Error = err.Error()
		job.UpdatedAt = o.now()
		o.jobs.put(job)
		return nil, err
	}

	job.Status = model.JobCompleted
	o.advance(&job, progressComplete)
	o.jobs.put(job)
	return report, nil
}

// Start runs a job asynchronously and returns the job id for polling
func (o *Orchestrator) Start(ctx context.Context, schedule *model.Schedule, documents []model.SourceDocument) string {
	job := model.Job{
		ID:        uuid.NewString(),
		Status:    model.JobStarted,
		CreatedAt: o.now(),
		UpdatedAt: o.now(),
	}
	o.jobs.put(job)

	go func() {
		if _, err := o.run(ctx, &job, schedule, documents); err != nil {
			job.Status = model.JobFailed
			job.Error = err.Error()
			job.UpdatedAt = o.now()
			o.jobs.put(job)
			return
		}
		job.Status = model.JobCompleted
		o.advance(&job, progressComplete)
		o.jobs.put(job)
	}()

	return job.ID
}

// run executes steps 1 through 8
func (o *Orchestrator) run(ctx context.Context, job *model.Job, schedule *model.Schedule, documents []model.SourceDocument) (*model.Report, error) {
	// 1. Accept the generated schedule
	if schedule == nil {
		return nil, fmt.Errorf("no schedule provided")
	}
	job.Status = model.JobProcessing
	o.advance(job, progressAccepted)
	o.jobs.put(*job)

	store := docs.NewStore(documents)
	led := ledger.New()

	// 2. Extract claims for every task. Extraction fans out per task;
	// ledger inserts happen here, on the single owning goroutine, after
	// the join.
	claimSets := o.extractor.ExtractAll(ctx, schedule.Tasks, o.cfg.Concurrency.ValidationWorkers)
	for _, claims := range claimSets {
		for _, claim := range claims {
			if err := led.AddClaim(claim); err != nil {
				o.logger.Warn("claim rejected by ledger", zap.Error(err))
			}
		}
	}
	o.advance(job, progressExtracted)
	o.jobs.put(*job)

	// 3. Validate every task's claims
	service := validate.NewService(store, led, o.cfg.Concurrency.ValidationWorkers, o.logger)
	validations := service.ValidateSchedule(ctx, schedule.Tasks)
	o.advance(job, progressValidated)
	o.jobs.put(*job)

	// 4. Attach validation metadata and calibrated confidence to tasks
	o.attach(schedule, validations)
	o.advance(job, progressAttached)
	o.jobs.put(*job)

	// 5. Evaluate quality gates over the whole schedule
	manager := gates.NewManager(o.cfg.Gates)
	gateResult := manager.Evaluate(schedule, led.Export())
	o.advance(job, progressGated)
	o.jobs.put(*job)

	// 6. Repair and re-evaluate when the verdict is not clean
	var repairLog *model.RepairLog
	if !gateResult.Passed || len(gateResult.Warnings) > 0 {
		engine := repair.NewEngine(manager, led, o.cfg, o.logger)
		gateResult, repairLog = engine.Repair(schedule)
	}
	o.advance(job, progressRepaired)
	o.jobs.put(*job)

	// 7. Final structural validation. Repairs may have left no path to
	// compliance; that is the one fatal failure of a job.
	if violations := gates.ValidateStructure(schedule); len(violations) > 0 {
		return nil, fmt.Errorf("final structural validation failed: %v", violations)
	}
	o.advance(job, progressFinal)
	o.jobs.put(*job)

	// 8. Assemble and store the report
	report := &model.Report{
		Subject:     schedule.Subject,
		GeneratedAt: o.now(),
		Schedule:    schedule,
		Gates:       gateResult,
		Repairs:     repairLog,
		Ledger:      led.Export(),
	}

	// Optional model review, generated after gating so it can never
	// affect the verdict.
	if o.summarizer.IsEnabled() {
		review, err := o.summarizer.GenerateReview(ctx, *report)
		if err != nil {
			o.logger.Warn("review generation failed", zap.Error(err))
		} else if review != nil {
			report.LLM = review
		}
	}

	chartID := uuid.NewString()
	o.jobs.PutChart(chartID, report)
	job.ChartID = chartID

	return report, nil
}

// attach writes per-task validation results and the calibrated
// confidence back onto each task, plus the schedule-wide roll-up.
func (o *Orchestrator) attach(schedule *model.Schedule, validations []model.TaskValidation) {
	byTask := make(map[string]model.TaskValidation, len(validations))
	for _, v := range validations {
		byTask[v.TaskID] = v
	}

	provenanceSum := 0.0
	confidenceSum := 0.0
	contradictions := make(map[string]bool)

	for i := range schedule.Tasks {
		task := &schedule.Tasks[i]
		v, ok := byTask[task.ID]
		if !ok {
			continue
		}

		calibrated := calibratedConfidence(v, task.Confidence)
		task.Validation = &model.ValidationMetadata{
			CitationCoverage:     v.CitationCoverage,
			AvgProvenance:        v.AvgProvenance,
			Contradictions:       v.Contradictions,
			CalibratedConfidence: calibrated,
			Error:                v.Error,
			ValidatedAt:          o.now(),
		}
		task.Confidence = calibrated

		provenanceSum += v.AvgProvenance
		confidenceSum += calibrated
		for _, id := range v.Contradictions {
			contradictions[id] = true
		}
	}

	// A zero-task schedule rolls up as vacuously valid, matching the
	// gate convention.
	meanConfidence := 1.0
	meanProvenance := 1.0
	if n := float64(len(schedule.Tasks)); n > 0 {
		meanConfidence = confidenceSum / n
		meanProvenance = provenanceSum / n
	}
	schedule.Validation = &model.ScheduleValidation{
		CitationCoverage:   gates.Coverage(schedule),
		MeanConfidence:     meanConfidence,
		MeanProvenance:     meanProvenance,
		ContradictionCount: len(contradictions),
		ValidatedAt:        o.now(),
	}
}

// calibratedConfidence averages a task's calibrated claim confidences.
// A task that failed validation degrades to zero; a task with no claims
// keeps its own confidence.
func calibratedConfidence(v model.TaskValidation, fallback float64) float64 {
	if v.Failed {
		return 0
	}
	if len(v.Claims) == 0 {
		return fallback
	}
	sum := 0.0
	for _, c := range v.Claims {
		sum += c.Confidence
	}
	return sum / float64(len(v.Claims))
}

// advance moves job progress forward, never backward
func (o *Orchestrator) advance(job *model.Job, progress int) {
	if progress > job.Progress {
		job.Progress = progress
	}
	job.UpdatedAt = o.now()
}
