package validate

import (
	"testing"
	"time"

	"github.com/ovachev/planproof/internal/ledger"
	"github.com/ovachev/planproof/internal/model"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func fullCitation(retrievedAt time.Time) model.Citation {
	return model.Citation{
		Document:    "plan.md",
		Provider:    "docstore",
		Start:       intPtr(0),
		End:         intPtr(13),
		Quote:       "takes 10 days",
		RetrievedAt: retrievedAt,
	}
}

func TestAuditProvenance_UncitedClaim(t *testing.T) {
	s := newTestService(ledger.New(), nil)

	claim := durationClaim("t1:duration", "t1", "10 days")
	assert.InDelta(t, 0.2, s.auditProvenance(claim), 1e-9,
		"uncited claims score as if every sub-field were missing")
}

func TestAuditCitation_PenaltyTable(t *testing.T) {
	now := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	documents := []model.SourceDocument{{Name: "plan.md", Content: "the work takes 10 days total"}}

	s := newTestService(ledger.New(), documents)
	s.now = func() time.Time { return now }

	fresh := now.Add(-24 * time.Hour)

	tests := []struct {
		name     string
		mutate   func(*model.Citation)
		expected float64
	}{
		{"complete citation", func(c *model.Citation) {}, 1.0},
		{"missing provider", func(c *model.Citation) { c.Provider = "" }, 0.9},
		{"missing offsets", func(c *model.Citation) { c.Start, c.End = nil, nil }, 0.9},
		{"missing quote", func(c *model.Citation) { c.Quote = "" }, 0.7},
		{"missing document", func(c *model.Citation) { c.Document = "" }, 0.7},
		{"stale retrieval", func(c *model.Citation) { c.RetrievedAt = now.Add(-31 * 24 * time.Hour) }, 0.9},
		{"thirty days old is not stale", func(c *model.Citation) { c.RetrievedAt = now.Add(-30 * 24 * time.Hour) }, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fullCitation(fresh)
			tt.mutate(&c)
			assert.InDelta(t, tt.expected, s.auditCitation(c), 1e-9)
		})
	}
}

func TestAuditCitation_HallucinationZeroesScore(t *testing.T) {
	documents := []model.SourceDocument{{Name: "plan.md", Content: "the work takes 10 days total"}}
	s := newTestService(ledger.New(), documents)

	c := fullCitation(time.Now())
	c.Quote = "takes 99 days"

	assert.Equal(t, 0.0, s.auditCitation(c),
		"a quote the document does not contain is a fabricated citation")
}

func TestAuditProvenance_AveragesOverCitations(t *testing.T) {
	documents := []model.SourceDocument{{Name: "plan.md", Content: "the work takes 10 days total"}}
	s := newTestService(ledger.New(), documents)

	good := fullCitation(time.Now())
	fabricated := fullCitation(time.Now())
	fabricated.Quote = "never written"

	claim := durationClaim("t1:duration", "t1", "10 days")
	claim.Citations = []model.Citation{good, fabricated}

	assert.InDelta(t, 0.5, s.auditProvenance(claim), 1e-9)
}

func TestVerifyCitations(t *testing.T) {
	documents := []model.SourceDocument{{Name: "plan.md", Content: "the work takes 10 days total"}}
	s := newTestService(ledger.New(), documents)

	uncited := durationClaim("t1:duration", "t1", "10 days")
	assert.False(t, s.verifyCitations(uncited))

	cited := uncited
	cited.Citations = []model.Citation{fullCitation(time.Now())}
	assert.True(t, s.verifyCitations(cited))

	unknownDoc := uncited
	c := fullCitation(time.Now())
	c.Document = "missing.md"
	unknownDoc.Citations = []model.Citation{c}
	assert.False(t, s.verifyCitations(unknownDoc), "citation must name a stored document")

	noOffsets := uncited
	c2 := fullCitation(time.Now())
	c2.Start, c2.End = nil, nil
	noOffsets.Citations = []model.Citation{c2}
	assert.False(t, s.verifyCitations(noOffsets), "citation must carry both offsets")
}
