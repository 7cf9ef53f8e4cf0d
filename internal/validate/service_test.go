package validate

import (
	"context"
	"testing"
	"time"

	"github.com/ovachev/planproof/internal/ledger"
	"github.com/ovachev/planproof/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ValidateSchedule(t *testing.T) {
	documents := []model.SourceDocument{
		{Name: "plan.md", Content: "Foundation work takes 10 days to complete."},
	}

	led := ledger.New()

	cited := durationClaim("t1:duration", "t1", "10 days")
	cited.Origin = model.OriginExplicit
	cited.Confidence = 1.0
	cited.Citations = []model.Citation{{
		Document:    "plan.md",
		Provider:    "docstore",
		Start:       intPtr(16),
		End:         intPtr(29),
		Quote:       "takes 10 days",
		RetrievedAt: time.Now(),
	}}
	// t2 agrees with t1 so the run stays contradiction-free
	require.NoError(t, led.AddClaim(cited))
	require.NoError(t, led.AddClaim(durationClaim("t2:duration", "t2", "10 days")))

	tasks := []model.Task{
		{ID: "t1", Name: "Foundation"},
		{ID: "t2", Name: "Framing"},
		{ID: "t3", Name: "No claims"},
	}

	s := newTestService(led, documents)
	results := s.ValidateSchedule(context.Background(), tasks)

	require.Len(t, results, 3)

	// t1: one fully cited claim
	assert.Equal(t, "t1", results[0].TaskID)
	assert.Equal(t, 1.0, results[0].CitationCoverage)
	assert.InDelta(t, 1.0, results[0].AvgProvenance, 1e-9)
	assert.False(t, results[0].Failed)

	// t2: one uncited claim
	assert.Equal(t, 0.0, results[1].CitationCoverage)
	assert.InDelta(t, 0.2, results[1].AvgProvenance, 1e-9)

	// t3: no claims degrades to zero coverage without failing
	assert.Equal(t, 0.0, results[2].CitationCoverage)
	assert.Empty(t, results[2].Claims)
	assert.False(t, results[2].Failed)
}

func TestService_ValidateSchedule_CalibrationWritesBack(t *testing.T) {
	led := ledger.New()
	require.NoError(t, led.AddClaim(durationClaim("t1:duration", "t1", "10 days")))

	s := newTestService(led, nil)
	results := s.ValidateSchedule(context.Background(), []model.Task{{ID: "t1"}})

	require.Len(t, results, 1)
	require.Len(t, results[0].Claims, 1)

	// Uncited claim: coverage 0 (-0.15) and provenance 0.2 (-0.1) on 0.6
	want := 0.35
	assert.InDelta(t, want, results[0].Claims[0].Confidence, 1e-9)

	stored, ok := led.Claim("t1:duration")
	require.True(t, ok)
	assert.InDelta(t, want, stored.Confidence, 1e-9,
		"calibrated confidence must be written back to the ledger")
}

func TestService_ValidateSchedule_AttachesContradictionIDs(t *testing.T) {
	led := ledger.New()
	require.NoError(t, led.AddClaim(durationClaim("t1:duration", "t1", "10 days")))
	require.NoError(t, led.AddClaim(durationClaim("t1:duration:alt", "t1", "20 days")))

	s := newTestService(led, nil)
	results := s.ValidateSchedule(context.Background(), []model.Task{{ID: "t1"}})

	require.Len(t, results, 1)
	require.Len(t, results[0].Contradictions, 1)

	c, ok := led.Contradiction(results[0].Contradictions[0])
	require.True(t, ok)
	assert.Equal(t, model.SeverityHigh, c.Severity)
}

func TestService_ValidateSchedule_HighContradictionLowersConfidence(t *testing.T) {
	led := ledger.New()
	require.NoError(t, led.AddClaim(durationClaim("t1:duration", "t1", "10 days")))
	require.NoError(t, led.AddClaim(durationClaim("t1:duration:alt", "t1", "20 days")))

	s := newTestService(led, nil)
	results := s.ValidateSchedule(context.Background(), []model.Task{{ID: "t1"}})

	require.Len(t, results, 1)
	for _, claim := range results[0].Claims {
		// 0.6 - 0.15 (low coverage) - 0.2 (high contradiction) - 0.1 (low provenance)
		assert.InDelta(t, 0.15, claim.Confidence, 1e-9)
	}
}

func TestService_ValidateSchedule_CrossTaskContradictionSharedByBothTasks(t *testing.T) {
	led := ledger.New()
	require.NoError(t, led.AddClaim(durationClaim("t1:duration", "t1", "100 days")))
	require.NoError(t, led.AddClaim(durationClaim("t2:duration", "t2", "145 days")))

	s := newTestService(led, nil)
	results := s.ValidateSchedule(context.Background(), []model.Task{{ID: "t1"}, {ID: "t2"}})

	require.Len(t, results, 2)
	require.Len(t, results[0].Contradictions, 1)
	require.Len(t, results[1].Contradictions, 1)
	assert.Equal(t, results[0].Contradictions[0], results[1].Contradictions[0],
		"a cross-task contradiction belongs to both tasks")

	c, ok := led.Contradiction(results[0].Contradictions[0])
	require.True(t, ok)
	assert.Equal(t, model.SeverityHigh, c.Severity)

	// Both sides take the high-contradiction penalty
	for _, result := range results {
		for _, claim := range result.Claims {
			assert.InDelta(t, 0.15, claim.Confidence, 1e-9)
		}
	}
}

func TestService_ValidateSchedule_Empty(t *testing.T) {
	s := newTestService(ledger.New(), nil)
	results := s.ValidateSchedule(context.Background(), nil)
	assert.Empty(t, results)
}
