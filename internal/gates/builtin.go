package gates

import (
	"fmt"
	"regexp"

	"github.com/ovachev/planproof/internal/model"
)

// CitationCoverageGate checks the fraction of tasks whose primary
// fields carry at least one citation. A zero-task schedule passes
// vacuously with coverage 1.0 (documented convention).
type CitationCoverageGate struct {
	threshold float64
}

// NewCitationCoverageGate creates the gate with the given threshold
func NewCitationCoverageGate(threshold float64) *CitationCoverageGate {
	return &CitationCoverageGate{threshold: threshold}
}

// Name returns the gate identifier
func (g *CitationCoverageGate) Name() string { return model.GateCitationCoverage }

// Blocking reports that coverage failures block the schedule
func (g *CitationCoverageGate) Blocking() bool { return true }

// Evaluate measures citation coverage over the schedule
func (g *CitationCoverageGate) Evaluate(schedule *model.Schedule, _ *model.LedgerSnapshot) Outcome {
	coverage := Coverage(schedule)
	return Outcome{
		Passed:    coverage >= g.threshold,
		Score:     coverage,
		Threshold: g.threshold,
		Detail:    fmt.Sprintf("citation coverage %.2f against threshold %.2f", coverage, g.threshold),
	}
}

// Coverage computes the cited-task fraction, 1.0 for an empty schedule
func Coverage(schedule *model.Schedule) float64 {
	if len(schedule.Tasks) == 0 {
		return 1.0
	}
	cited := 0
	for _, t := range schedule.Tasks {
		if t.PrimaryCited() {
			cited++
		}
	}
	return float64(cited) / float64(len(schedule.Tasks))
}

// ContradictionSeverityGate fails when any unresolved high-severity
// contradiction remains in the ledger snapshot
type ContradictionSeverityGate struct{}

// NewContradictionSeverityGate creates the gate
func NewContradictionSeverityGate() *ContradictionSeverityGate {
	return &ContradictionSeverityGate{}
}

// Name returns the gate identifier
func (g *ContradictionSeverityGate) Name() string { return model.GateContradictionSeverity }

// Blocking reports that high-severity contradictions block the schedule
func (g *ContradictionSeverityGate) Blocking() bool { return true }

// Evaluate counts unresolved high-severity contradictions
func (g *ContradictionSeverityGate) Evaluate(_ *model.Schedule, snapshot *model.LedgerSnapshot) Outcome {
	high := 0
	if snapshot != nil {
		high = snapshot.UnresolvedHigh()
	}
	return Outcome{
		Passed: high == 0,
		Score:  float64(high),
		Detail: fmt.Sprintf("%d unresolved high-severity contradictions", high),
	}
}

// ConfidenceMinimumGate fails when mean task confidence drops below the
// threshold. A zero-task schedule passes vacuously.
type ConfidenceMinimumGate struct {
	threshold float64
}

// NewConfidenceMinimumGate creates the gate with the given threshold
func NewConfidenceMinimumGate(threshold float64) *ConfidenceMinimumGate {
	return &ConfidenceMinimumGate{threshold: threshold}
}

// Name returns the gate identifier
func (g *ConfidenceMinimumGate) Name() string { return model.GateConfidenceMinimum }

// Blocking reports that low confidence blocks the schedule
func (g *ConfidenceMinimumGate) Blocking() bool { return true }

// Evaluate measures mean task confidence
func (g *ConfidenceMinimumGate) Evaluate(schedule *model.Schedule, _ *model.LedgerSnapshot) Outcome {
	mean := MeanConfidence(schedule)
	return Outcome{
		Passed:    mean >= g.threshold,
		Score:     mean,
		Threshold: g.threshold,
		Detail:    fmt.Sprintf("mean task confidence %.2f against threshold %.2f", mean, g.threshold),
	}
}

// MeanConfidence averages task confidence, 1.0 for an empty schedule
func MeanConfidence(schedule *model.Schedule) float64 {
	if len(schedule.Tasks) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, t := range schedule.Tasks {
		sum += t.Confidence
	}
	return sum / float64(len(schedule.Tasks))
}

// regulationPatterns maps compliance keyword patterns in task names to
// the regulation tag the repairer attaches
var regulationPatterns = []struct {
	pattern    *regexp.Regexp
	regulation string
}{
	{regexp.MustCompile(`(?i)\bFDA\b|510\(k\)`), "FDA"},
	{regexp.MustCompile(`(?i)\bHIPAA\b`), "HIPAA"},
	{regexp.MustCompile(`(?i)\bGDPR\b`), "GDPR"},
	{regexp.MustCompile(`(?i)\bISO\s*13485\b`), "ISO-13485"},
	{regexp.MustCompile(`(?i)\bCE\s*mark(ing)?\b`), "CE"},
	{regexp.MustCompile(`(?i)\bOSHA\b`), "OSHA"},
	{regexp.MustCompile(`(?i)\bSOX\b|Sarbanes-Oxley`), "SOX"},
}

// DetectRegulation scans a task name for compliance keywords and
// returns the matched regulation tag. The regulatory-flags gate and its
// repairer share this detector so they never disagree.
func DetectRegulation(taskName string) (string, bool) {
	for _, rp := range regulationPatterns {
		if rp.pattern.MatchString(taskName) {
			return rp.regulation, true
		}
	}
	return "", false
}

// RegulatoryFlagsGate warns when a task whose name matches a compliance
// keyword lacks an explicit regulatory-requirement field. Advisory: it
// never blocks the schedule.
type RegulatoryFlagsGate struct{}

// NewRegulatoryFlagsGate creates the gate
func NewRegulatoryFlagsGate() *RegulatoryFlagsGate {
	return &RegulatoryFlagsGate{}
}

// Name returns the gate identifier
func (g *RegulatoryFlagsGate) Name() string { return model.GateRegulatoryFlags }

// Blocking reports that regulatory findings are advisory only
func (g *RegulatoryFlagsGate) Blocking() bool { return false }

// Evaluate flags regulated-looking tasks missing a requirement field
func (g *RegulatoryFlagsGate) Evaluate(schedule *model.Schedule, _ *model.LedgerSnapshot) Outcome {
	var unflagged []string
	for _, t := range schedule.Tasks {
		if regulation, ok := DetectRegulation(t.Name); ok && t.RegulatoryRequirement == nil {
			unflagged = append(unflagged, fmt.Sprintf("%s (%s)", t.ID, regulation))
		}
	}

	if len(unflagged) == 0 {
		return Outcome{Passed: true, Detail: "no unflagged regulated tasks"}
	}
	return Outcome{
		Passed: false,
		Score:  float64(len(unflagged)),
		Detail: fmt.Sprintf("%d regulated tasks lack a compliance-requirement field: %v", len(unflagged), unflagged),
	}
}
