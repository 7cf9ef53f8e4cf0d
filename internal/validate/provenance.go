package validate

import (
	"time"

	"github.com/ovachev/planproof/internal/model"
)

// Fixed provenance penalties for missing citation sub-fields
const (
	penaltyNoDocument = 0.3
	penaltyNoQuote    = 0.3
	penaltyNoProvider = 0.1
	penaltyNoOffsets  = 0.1
	penaltyStale      = 0.1

	staleAfter = 30 * 24 * time.Hour
)

// auditProvenance scores how well a claim's citations hold up, starting
// at 1.0 and subtracting fixed penalties per missing sub-field. A quote
// the named document does not actually contain zeroes the citation's
// score outright: that is the hallucination signal.
//
// Uncited claims score as if every sub-field were missing.
func (s *Service) auditProvenance(claim model.Claim) float64 {
	if !claim.Cited() {
		return 1.0 - penaltyNoDocument - penaltyNoQuote - penaltyNoProvider - penaltyNoOffsets
	}

	total := 0.0
	for _, c := range claim.Citations {
		total += s.auditCitation(c)
	}
	return total / float64(len(claim.Citations))
}

// auditCitation scores one citation
func (s *Service) auditCitation(c model.Citation) float64 {
	score := 1.0

	if c.Document == "" {
		score -= penaltyNoDocument
	}
	if c.Quote == "" {
		score -= penaltyNoQuote
	}
	if c.Provider == "" {
		score -= penaltyNoProvider
	}
	if !c.HasOffsets() {
		score -= penaltyNoOffsets
	}

	// Hallucination check: the named document must contain the exact
	// quoted text.
	if c.Document != "" && c.Quote != "" && !s.store.Contains(c.Document, c.Quote) {
		score = 0
	}

	if !c.RetrievedAt.IsZero() && s.now().Sub(c.RetrievedAt) > staleAfter {
		score -= penaltyStale
	}

	if score < 0 {
		score = 0
	}
	return score
}
