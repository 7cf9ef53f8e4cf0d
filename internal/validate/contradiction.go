package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ovachev/planproof/internal/model"
	"go.uber.org/zap"
)

// Severity thresholds for numeric disagreement, as a fraction of the
// smaller value. Boundaries resolve to the lower band: a delta of
// exactly 10% is low, exactly 30% is medium.
const (
	mediumDeltaRatio = 0.10
	highDeltaRatio   = 0.30
)

// polarityPairs is the fixed table of linguistically antonymous value
// pairs. A claim pair landing on opposite poles is always high severity
// regardless of any numeric content.
var polarityPairs = [][2]string{
	{"fast", "slow"},
	{"early", "late"},
	{"long", "short"},
	{"required", "optional"},
	{"before", "after"},
	{"parallel", "sequential"},
	{"increase", "decrease"},
}

// DetectContradictions compares every claim against every other claim
// of the same type already in the ledger and records disagreements.
// The join spans the whole ledger, so claims of different tasks are
// compared too: a schedule whose tasks assert diverging values for the
// same kind of fact is internally inconsistent even when no single task
// contradicts itself. This is the O(n²) pass and the dominant cost of a
// run; callers with very large schedules are expected to bound it with
// a wall-clock guard.
func (s *Service) DetectContradictions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := s.existingPairs()

	for _, claimType := range []model.ClaimType{
		model.ClaimTypeDuration,
		model.ClaimTypeDeadline,
		model.ClaimTypeDependency,
		model.ClaimTypeRequirement,
		model.ClaimTypeResource,
	} {
		claims := s.ledger.ClaimsByType(claimType)
		for i := 0; i < len(claims); i++ {
			for j := i + 1; j < len(claims); j++ {
				a, b := claims[i], claims[j]
				if seen[pairKey(a.ID, b.ID)] {
					continue
				}

				severity, detail, conflicting := classifyDisagreement(a, b)
				if !conflicting {
					continue
				}

				contradiction := model.Contradiction{
					ID:         uuid.NewString(),
					ClaimA:     a.ID,
					ClaimB:     b.ID,
					Type:       claimType,
					Severity:   severity,
					Detail:     detail,
					DetectedAt: s.now(),
				}
				if err := s.ledger.AddContradiction(contradiction); err != nil {
					s.logger.Warn("contradiction insert failed",
						zap.String("claim_a", a.ID),
						zap.Error(err))
					continue
				}
				seen[pairKey(a.ID, b.ID)] = true
			}
		}
	}
}

// existingPairs indexes already-recorded contradictions so a second
// detection pass over the same ledger is a no-op.
func (s *Service) existingPairs() map[string]bool {
	seen := make(map[string]bool)
	for _, c := range s.ledger.Contradictions() {
		seen[pairKey(c.ClaimA, c.ClaimB)] = true
	}
	return seen
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// classifyDisagreement decides whether two same-type claims conflict
// and how badly. Numeric values band by relative delta; antonymous
// values from the polarity table are always high.
func classifyDisagreement(a, b model.Claim) (model.Severity, string, bool) {
	// Dependency claims list predecessors; two different predecessor ids
	// are complementary edges of the graph, not conflicting facts.
	if a.Type == model.ClaimTypeDependency {
		return "", "", false
	}

	if antonymous(a.Value, b.Value) {
		return model.SeverityHigh,
			fmt.Sprintf("antonymous values %q vs %q", a.Value, b.Value),
			true
	}

	na, okA := leadingNumber(a.Value)
	nb, okB := leadingNumber(b.Value)
	if okA && okB && na != nb {
		severity := numericSeverity(na, nb)
		return severity,
			fmt.Sprintf("numeric disagreement %v vs %v", a.Value, b.Value),
			true
	}

	return "", "", false
}

// numericSeverity bands a numeric disagreement by delta relative to the
// smaller value, inclusive on the low side of each boundary.
func numericSeverity(a, b float64) model.Severity {
	smaller := a
	if b < smaller {
		smaller = b
	}
	if smaller == 0 {
		return model.SeverityHigh
	}

	delta := a - b
	if delta < 0 {
		delta = -delta
	}
	ratio := delta / smaller

	switch {
	case ratio <= mediumDeltaRatio:
		return model.SeverityLow
	case ratio <= highDeltaRatio:
		return model.SeverityMedium
	default:
		return model.SeverityHigh
	}
}

// antonymous checks both values against the polarity pair table
func antonymous(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	for _, pair := range polarityPairs {
		if (strings.Contains(la, pair[0]) && strings.Contains(lb, pair[1])) ||
			(strings.Contains(la, pair[1]) && strings.Contains(lb, pair[0])) {
			return true
		}
	}
	return false
}

// leadingNumber parses the first numeric token of a value, so "14 days"
// and "14" compare equal.
func leadingNumber(value string) (float64, bool) {
	fields := strings.Fields(strings.TrimSpace(value))
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
