// Package repair maps failing quality gates to dedicated repair
// strategies and drives the bounded repair-and-re-evaluate loop.
package repair

import (
	"sort"
	"time"

	"github.com/ovachev/planproof/internal/gates"
	"github.com/ovachev/planproof/internal/ledger"
	"github.com/ovachev/planproof/internal/model"
	"go.uber.org/zap"
)

// Repairer is one repair strategy, bound to a gate by name. Repair
// mutates the schedule (and ledger where the strategy owns one) toward
// passing and reports what it did; a strategy that cannot help reports
// success false with a reason instead of erroring.
type Repairer interface {
	GateName() string
	Repair(schedule *model.Schedule, failure model.GateFailure) model.RepairResult
}

// Engine holds the strategy registry and runs the repair loop
type Engine struct {
	manager     *gates.Manager
	ledger      *ledger.Ledger
	repairers   map[string]Repairer
	maxAttempts int
	logger      *zap.Logger
	now         func() time.Time
}

// NewEngine creates an engine with the built-in strategies registered,
// one per built-in gate.
func NewEngine(manager *gates.Manager, led *ledger.Ledger, cfg *model.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxAttempts := cfg.Repair.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	e := &Engine{
		manager:     manager,
		ledger:      led,
		repairers:   make(map[string]Repairer),
		maxAttempts: maxAttempts,
		logger:      logger,
		now:         time.Now,
	}

	e.Register(NewCitationCoverageRepairer(led, cfg.Repair.ConfidenceCap))
	e.Register(NewContradictionRepairer(led))
	e.Register(NewConfidenceRepairer(cfg.Gates.ConfidenceMinimum))
	e.Register(NewSchemaRepairer())
	e.Register(NewRegulatoryFlagsRepairer())

	return e
}

// Register adds a strategy, overwriting any strategy for the same gate
func (e *Engine) Register(r Repairer) {
	e.repairers[r.GateName()] = r
}

// Repair runs the bounded repair loop: evaluate, repair every failing
// gate (advisory ones included), re-evaluate, up to the configured
// maximum number of attempts. It never loops past the bound; remaining
// failures are reported, not retried forever.
func (e *Engine) Repair(schedule *model.Schedule) (model.GateResult, *model.RepairLog) {
	log := &model.RepairLog{
		Attempts:          []model.RepairAttempt{},
		SuccessfulRepairs: []string{},
		FailedRepairs:     []string{},
		Timestamp:         e.now(),
	}

	// The provenance invariant (explicit means cited and fully
	// confident) is restored unconditionally before gating: violating
	// input must never survive a repair pass.
	normalizeInvariants(schedule, e.ledger)

	result := e.manager.Evaluate(schedule, e.ledger.Export())
	if clean(result) {
		log.FullyRepaired = true
		return result, log
	}

	succeeded := make(map[string]bool)
	noStrategy := make(map[string]bool)

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		for _, target := range targets(result) {
			repairer, ok := e.repairers[target.Gate]
			if !ok {
				noStrategy[target.Gate] = true
				log.Attempts = append(log.Attempts, model.RepairAttempt{
					Attempt: attempt,
					Gate:    target.Gate,
					Success: false,
					Reason:  "no strategy available",
				})
				continue
			}

			res := repairer.Repair(schedule, target)
			log.Attempts = append(log.Attempts, model.RepairAttempt{
				Attempt: attempt,
				Gate:    target.Gate,
				Success: res.Success,
				Reason:  res.Reason,
			})
			if res.Success {
				succeeded[target.Gate] = true
			}
			e.logger.Debug("repair applied",
				zap.Int("attempt", attempt),
				zap.String("gate", target.Gate),
				zap.Bool("success", res.Success),
				zap.Int("changed", res.Changed))
		}

		result = e.manager.Evaluate(schedule, e.ledger.Export())
		if clean(result) {
			break
		}
	}

	log.FullyRepaired = clean(result)

	for gate := range succeeded {
		log.SuccessfulRepairs = append(log.SuccessfulRepairs, gate)
	}
	for _, f := range result.Failures {
		log.FailedRepairs = append(log.FailedRepairs, f.Gate)
	}
	for _, w := range result.Warnings {
		log.FailedRepairs = append(log.FailedRepairs, w.Gate)
	}
	for gate := range noStrategy {
		if !contains(log.FailedRepairs, gate) {
			log.FailedRepairs = append(log.FailedRepairs, gate)
		}
	}
	sort.Strings(log.SuccessfulRepairs)
	sort.Strings(log.FailedRepairs)

	return result, log
}

// clean reports a verdict with neither blocking failures nor advisory
// warnings left to repair
func clean(result model.GateResult) bool {
	return result.Passed && len(result.Warnings) == 0
}

// targets flattens blocking failures and advisory warnings into one
// repair worklist
func targets(result model.GateResult) []model.GateFailure {
	out := make([]model.GateFailure, 0, len(result.Failures)+len(result.Warnings))
	out = append(out, result.Failures...)
	for _, w := range result.Warnings {
		out = append(out, model.GateFailure{Gate: w.Gate, Blocking: false, Detail: w.Detail})
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
