package repair

import (
	"testing"
	"time"

	"github.com/ovachev/planproof/internal/ledger"
	"github.com/ovachev/planproof/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func highContradiction(id, claimA, claimB string) model.Contradiction {
	return model.Contradiction{
		ID:         id,
		ClaimA:     claimA,
		ClaimB:     claimB,
		Type:       model.ClaimTypeDuration,
		Severity:   model.SeverityHigh,
		DetectedAt: time.Now(),
	}
}

func TestCitationCoverageRepairer_DowngradesUncitedFields(t *testing.T) {
	led := ledger.New()
	r := NewCitationCoverageRepairer(led, 0.7)

	schedule := &model.Schedule{Tasks: []model.Task{{
		ID:   "t1",
		Name: "Framing",
		Duration: &model.FieldClaim{
			Value:      "10 days",
			Provenance: model.Provenance{Origin: model.OriginExplicit, Confidence: 0.9},
		},
	}}}

	result := r.Repair(schedule, model.GateFailure{Gate: model.GateCitationCoverage})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Changed)

	prov := schedule.Tasks[0].Duration.Provenance
	assert.Equal(t, model.OriginInferred, prov.Origin)
	assert.Equal(t, 0.7, prov.Confidence)
	require.NotNil(t, prov.Rationale)
}

func TestCitationCoverageRepairer_NeverFabricatesCitations(t *testing.T) {
	r := NewCitationCoverageRepairer(ledger.New(), 0.7)

	// Already-honest inference: nothing left to downgrade
	schedule := &model.Schedule{Tasks: []model.Task{{
		ID: "t1",
		Duration: &model.FieldClaim{
			Value: "10 days",
			Provenance: model.Provenance{
				Origin:     model.OriginInferred,
				Confidence: 0.6,
				Rationale:  genericRationale(0.6),
			},
		},
	}}}

	result := r.Repair(schedule, model.GateFailure{Gate: model.GateCitationCoverage})

	assert.False(t, result.Success)
	assert.Contains(t, result.Reason, "citations are never fabricated")
	assert.Empty(t, schedule.Tasks[0].Duration.Citations, "repair must not invent citations")
}

func TestContradictionRepairer_ExplicitWins(t *testing.T) {
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

	r := NewContradictionRepairer(led)
	result := r.Repair(nil, model.GateFailure{Gate: model.GateContradictionSeverity})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Changed)

	c, _ := led.Contradiction("c1")
	require.True(t, c.Resolved())
	assert.Equal(t, ResolutionPreferExplicit, c.ResolutionStrategy)
	assert.Equal(t, "b", c.RejectedClaim)
}

func TestContradictionRepairer_HigherConfidenceWins(t *testing.T) {
	led := ledger.New()
	require.NoError(t, led.AddClaim(model.Claim{
		ID: "a", TaskID: "t1", Type: model.ClaimTypeDuration,
		Origin: model.OriginInferred, Confidence: 0.4,
	}))
	require.NoError(t, led.AddClaim(model.Claim{
		ID: "b", TaskID: "t1", Type: model.ClaimTypeDuration,
		Origin: model.OriginInferred, Confidence: 0.8,
	}))
	require.NoError(t, led.AddContradiction(highContradiction("c1", "a", "b")))

	r := NewContradictionRepairer(led)
	r.Repair(nil, model.GateFailure{})

	c, _ := led.Contradiction("c1")
	require.True(t, c.Resolved())
	assert.Equal(t, ResolutionPreferConfidence, c.ResolutionStrategy)
	assert.Equal(t, "a", c.RejectedClaim)
}

func TestContradictionRepairer_TieKeepsFirstClaim(t *testing.T) {
	led := ledger.New()
	require.NoError(t, led.AddClaim(model.Claim{
		ID: "a", TaskID: "t1", Type: model.ClaimTypeDuration,
		Origin: model.OriginInferred, Confidence: 0.6,
	}))
	require.NoError(t, led.AddClaim(model.Claim{
		ID: "b", TaskID: "t1", Type: model.ClaimTypeDuration,
		Origin: model.OriginInferred, Confidence: 0.6,
	}))
	require.NoError(t, led.AddContradiction(highContradiction("c1", "a", "b")))

	NewContradictionRepairer(led).Repair(nil, model.GateFailure{})

	c, _ := led.Contradiction("c1")
	assert.Equal(t, "b", c.RejectedClaim, "ties reject the second claim")
}

func TestContradictionRepairer_IgnoresLowSeverityAndResolved(t *testing.T) {
	led := ledger.New()
	now := time.Now()

	low := highContradiction("c1", "a", "b")
	low.Severity = model.SeverityLow
	require.NoError(t, led.AddContradiction(low))

	done := highContradiction("c2", "a", "b")
	done.ResolvedAt = &now
	require.NoError(t, led.AddContradiction(done))

	result := NewContradictionRepairer(led).Repair(nil, model.GateFailure{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Reason, "no open high-severity contradictions")
}

func TestConfidenceRepairer_BoostsCitedTasks(t *testing.T) {
	r := NewConfidenceRepairer(0.5)

	schedule := &model.Schedule{Tasks: []model.Task{{
		ID:         "t1",
		Confidence: 0.3,
		Duration: &model.FieldClaim{
			Value: "10 days",
			Provenance: model.Provenance{
				Origin:     model.OriginExplicit,
				Confidence: 1.0,
				Citations:  []model.Citation{{Document: "plan.md", Quote: "10 days"}},
			},
		},
	}}}

	result := r.Repair(schedule, model.GateFailure{Gate: model.GateConfidenceMinimum})

	assert.True(t, result.Success)
	assert.Equal(t, 0.5, schedule.Tasks[0].Confidence, "cited tasks boost to the threshold")
	assert.False(t, schedule.Tasks[0].ManualReview)
}

func TestConfidenceRepairer_FlagsUncitedTasksForManualReview(t *testing.T) {
	r := NewConfidenceRepairer(0.5)

	schedule := &model.Schedule{Tasks: []model.Task{{ID: "t1", Confidence: 0.3}}}

	result := r.Repair(schedule, model.GateFailure{Gate: model.GateConfidenceMinimum})

	assert.True(t, result.Success)
	assert.Equal(t, 0.3, schedule.Tasks[0].Confidence, "uncited tasks are never silently boosted")
	assert.True(t, schedule.Tasks[0].ManualReview)

	// A second pass has nothing left to do
	again := r.Repair(schedule, model.GateFailure{Gate: model.GateConfidenceMinimum})
	assert.False(t, again.Success)
}

func TestSchemaRepairer_NormalizesStructure(t *testing.T) {
	r := NewSchemaRepairer()

	schedule := &model.Schedule{Tasks: []model.Task{
		{Name: "Missing id", Origin: model.OriginInferred, Confidence: 0.5},
		{ID: "t2", Name: "Missing origin"},
		{ID: "t3", Name: "Out of range", Origin: model.OriginInferred, Confidence: 1.7},
	}}

	result := r.Repair(schedule, model.GateFailure{Gate: model.GateSchemaCompliance})

	assert.True(t, result.Success)
	assert.NotEmpty(t, schedule.Tasks[0].ID, "missing id gets generated")
	assert.Equal(t, model.OriginInferred, schedule.Tasks[1].Origin)
	assert.Equal(t, 0.5, schedule.Tasks[1].Confidence)
	assert.Equal(t, 1.0, schedule.Tasks[2].Confidence)
}

func TestSchemaRepairer_ValidScheduleNothingToNormalize(t *testing.T) {
	r := NewSchemaRepairer()
	schedule := &model.Schedule{Tasks: []model.Task{
		{ID: "t1", Name: "Fine", Origin: model.OriginInferred, Confidence: 0.5},
	}}

	result := r.Repair(schedule, model.GateFailure{Gate: model.GateSchemaCompliance})

	assert.False(t, result.Success)
	assert.Contains(t, result.Reason, "nothing to normalize")
}

func TestRegulatoryFlagsRepairer_AttachesFlags(t *testing.T) {
	r := NewRegulatoryFlagsRepairer()

	schedule := &model.Schedule{Tasks: []model.Task{
		{ID: "t1", Name: "FDA submission", Origin: model.OriginInferred, Confidence: 0.5},
		{ID: "t2", Name: "Pour foundation", Origin: model.OriginInferred, Confidence: 0.5},
	}}

	result := r.Repair(schedule, model.GateFailure{Gate: model.GateRegulatoryFlags})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Changed)

	req := schedule.Tasks[0].RegulatoryRequirement
	require.NotNil(t, req)
	assert.True(t, req.IsRequired)
	assert.Equal(t, "FDA", req.Regulation)
	assert.Equal(t, model.OriginExplicit, req.Origin)
	assert.Equal(t, 0.9, req.Confidence)

	assert.Nil(t, schedule.Tasks[1].RegulatoryRequirement)
}

func TestRegulatoryFlagsRepairer_PreservesExistingFlags(t *testing.T) {
	r := NewRegulatoryFlagsRepairer()

	existing := &model.RegulatoryRequirement{
		IsRequired: false,
		Regulation: "FDA",
		Provenance: model.Provenance{Origin: model.OriginInferred, Confidence: 0.4},
	}
	schedule := &model.Schedule{Tasks: []model.Task{
		{ID: "t1", Name: "FDA submission", RegulatoryRequirement: existing},
	}}

	result := r.Repair(schedule, model.GateFailure{Gate: model.GateRegulatoryFlags})

	assert.False(t, result.Success)
	assert.Same(t, existing, schedule.Tasks[0].RegulatoryRequirement,
		"pre-existing flags are never overwritten")
}
