package repair

import (
	"testing"

	"github.com/ovachev/planproof/internal/gates"
	"github.com/ovachev/planproof/internal/ledger"
	"github.com/ovachev/planproof/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(led *ledger.Ledger) (*Engine, *gates.Manager) {
	cfg := model.DefaultConfig()
	manager := gates.NewManager(cfg.Gates)
	return NewEngine(manager, led, cfg, nil), manager
}

func citedScheduleTask(id string) model.Task {
	return model.Task{
		ID:         id,
		Name:       "Task " + id,
		Origin:     model.OriginExplicit,
		Confidence: 1.0,
		Duration: &model.FieldClaim{
			Value: "10 days",
			Provenance: model.Provenance{
				Origin:     model.OriginExplicit,
				Confidence: 1.0,
				Citations:  []model.Citation{{Document: "plan.md", Quote: "10 days"}},
			},
		},
	}
}

func TestEngine_Repair_CleanScheduleNoAttempts(t *testing.T) {
	led := ledger.New()
	engine, _ := newTestEngine(led)

	schedule := &model.Schedule{Tasks: []model.Task{citedScheduleTask("t1")}}

	result, log := engine.Repair(schedule)

	assert.True(t, result.Passed)
	assert.True(t, log.FullyRepaired)
	assert.Empty(t, log.Attempts)
	assert.Empty(t, log.FailedRepairs)
}

func TestEngine_Repair_ResolvesContradictionsAndStops(t *testing.T) {
	led := ledger.New()
	require.NoError(t, led.AddClaim(model.Claim{
		ID: "a", TaskID: "t1", Type: model.ClaimTypeDuration,
		Origin: model.OriginExplicit, Confidence: 1.0,
	}))
	require.NoError(t, led.AddClaim(model.Claim{
		ID: "b", TaskID: "t1", Type: model.ClaimTypeDuration,
		Origin: model.OriginInferred, Confidence: 0.9,
	}))
	require.NoError(t, led.AddContradiction(highContradiction("c1", "a", "b")))

	engine, _ := newTestEngine(led)
	schedule := &model.Schedule{Tasks: []model.Task{citedScheduleTask("t1")}}

	result, log := engine.Repair(schedule)

	assert.True(t, result.Passed)
	assert.True(t, log.FullyRepaired)
	assert.Contains(t, log.SuccessfulRepairs, model.GateContradictionSeverity)

	// One round was enough; the loop stops once the verdict is clean
	for _, attempt := range log.Attempts {
		assert.Equal(t, 1, attempt.Attempt)
	}

	c, _ := led.Contradiction("c1")
	assert.True(t, c.Resolved())
}

func TestEngine_Repair_ExhaustsAttemptsOnUnrepairableGate(t *testing.T) {
	led := ledger.New()
	engine, _ := newTestEngine(led)

	// Honest inference, uncited: coverage can never improve
	schedule := &model.Schedule{Tasks: []model.Task{{
		ID:         "t1",
		Name:       "Framing",
		Origin:     model.OriginInferred,
		Confidence: 0.6,
		Duration: &model.FieldClaim{
			Value: "10 days",
			Provenance: model.Provenance{
				Origin:     model.OriginInferred,
				Confidence: 0.6,
				Rationale:  genericRationale(0.6),
			},
		},
	}}}

	result, log := engine.Repair(schedule)

	assert.False(t, result.Passed)
	assert.False(t, log.FullyRepaired)
	assert.Contains(t, log.FailedRepairs, model.GateCitationCoverage)

	// Every configured round ran before giving up
	coverageAttempts := 0
	maxRound := 0
	for _, attempt := range log.Attempts {
		if attempt.Gate == model.GateCitationCoverage {
			coverageAttempts++
			assert.False(t, attempt.Success)
		}
		if attempt.Attempt > maxRound {
			maxRound = attempt.Attempt
		}
	}
	assert.Equal(t, 3, coverageAttempts)
	assert.Equal(t, 3, maxRound)
}

func TestEngine_Repair_NormalizesInvariantFirst(t *testing.T) {
	led := ledger.New()
	engine, _ := newTestEngine(led)

	// Violating input: explicit origin without citations
	schedule := &model.Schedule{Tasks: []model.Task{{
		ID:         "t1",
		Name:       "Framing",
		Origin:     model.OriginExplicit,
		Confidence: 1.0,
		Duration: &model.FieldClaim{
			Value:      "10 days",
			Provenance: model.Provenance{Origin: model.OriginExplicit, Confidence: 1.0},
		},
	}}}

	engine.Repair(schedule)

	prov := schedule.Tasks[0].Duration.Provenance
	assert.Equal(t, model.OriginInferred, prov.Origin, "uncited explicit fields must not survive repair")
	assert.LessOrEqual(t, prov.Confidence, downgradedConfidenceCap)
	assert.NotNil(t, prov.Rationale)
}

func TestEngine_Repair_Idempotent(t *testing.T) {
	led := ledger.New()
	require.NoError(t, led.AddClaim(model.Claim{
		ID: "a", TaskID: "t1", Type: model.ClaimTypeDuration,
		Origin: model.OriginExplicit, Confidence: 1.0,
	}))
	require.NoError(t, led.AddClaim(model.Claim{
		ID: "b", TaskID: "t1", Type: model.ClaimTypeDuration,
		Origin: model.OriginInferred, Confidence: 0.9,
	}))
	require.NoError(t, led.AddContradiction(highContradiction("c1", "a", "b")))

	engine, _ := newTestEngine(led)
	schedule := &model.Schedule{Tasks: []model.Task{citedScheduleTask("t1")}}

	firstResult, _ := engine.Repair(schedule)
	afterFirst := *schedule

	secondResult, secondLog := engine.Repair(schedule)

	assert.Equal(t, firstResult, secondResult)
	assert.Equal(t, afterFirst, *schedule, "a second repair pass must not change the schedule")
	assert.True(t, secondLog.FullyRepaired)
	assert.Empty(t, secondLog.Attempts)
}

func TestEngine_Repair_UnknownGateHasNoStrategy(t *testing.T) {
	cfg := model.DefaultConfig()
	manager := gates.NewEmptyManager()
	manager.Add(failingGate{})
	led := ledger.New()
	engine := NewEngine(manager, led, cfg, nil)

	schedule := &model.Schedule{Tasks: []model.Task{citedScheduleTask("t1")}}
	result, log := engine.Repair(schedule)

	assert.False(t, result.Passed)
	assert.False(t, log.FullyRepaired)
	assert.Contains(t, log.FailedRepairs, "always-fails")

	require.NotEmpty(t, log.Attempts)
	assert.Equal(t, "no strategy available", log.Attempts[0].Reason)
}

// failingGate is a blocking gate no strategy knows how to repair
type failingGate struct{}

func (failingGate) Name() string   { return "always-fails" }
func (failingGate) Blocking() bool { return true }
func (failingGate) Evaluate(*model.Schedule, *model.LedgerSnapshot) gates.Outcome {
	return gates.Outcome{Passed: false, Detail: "always fails"}
}
