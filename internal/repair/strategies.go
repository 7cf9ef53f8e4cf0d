package repair

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ovachev/planproof/internal/gates"
	"github.com/ovachev/planproof/internal/ledger"
	"github.com/ovachev/planproof/internal/model"
)

// Resolution strategy tags recorded on closed contradictions
const (
	ResolutionPreferExplicit   = "prefer-explicit"
	ResolutionPreferConfidence = "prefer-higher-confidence"
)

// primaryField pairs a task's fielded provenance with its claim type
type primaryField struct {
	prov *model.Provenance
	t    model.ClaimType
}

// primaryFields lists the present primary fields of a task. The
// regulatory flag is not a primary field.
func primaryFields(task *model.Task) []primaryField {
	var out []primaryField
	if task.Duration != nil {
		out = append(out, primaryField{&task.Duration.Provenance, model.ClaimTypeDuration})
	}
	if task.StartDate != nil {
		out = append(out, primaryField{&task.StartDate.Provenance, model.ClaimTypeDeadline})
	}
	if task.Dependencies != nil {
		out = append(out, primaryField{&task.Dependencies.Provenance, model.ClaimTypeDependency})
	}
	return out
}

// CitationCoverageRepairer handles citation-coverage failures. It
// cannot fabricate citations; instead every uncited primary field is
// marked inference-origin with a generic rationale and its confidence
// capped. The coverage score itself does not improve — an intentional,
// documented limitation.
type CitationCoverageRepairer struct {
	ledger *ledger.Ledger
	cap    float64
}

// NewCitationCoverageRepairer creates the strategy
func NewCitationCoverageRepairer(led *ledger.Ledger, confidenceCap float64) *CitationCoverageRepairer {
	if confidenceCap <= 0 || confidenceCap > 1 {
		confidenceCap = 0.7
	}
	return &CitationCoverageRepairer{ledger: led, cap: confidenceCap}
}

// GateName binds the strategy to its gate
func (r *CitationCoverageRepairer) GateName() string { return model.GateCitationCoverage }

// Repair downgrades uncited primary fields to honest inferences
func (r *CitationCoverageRepairer) Repair(schedule *model.Schedule, _ model.GateFailure) model.RepairResult {
	changed := 0
	for i := range schedule.Tasks {
		task := &schedule.Tasks[i]
		for _, f := range primaryFields(task) {
			if f.prov.Cited() {
				continue
			}
			touched := false
			if f.prov.Origin != model.OriginInferred {
				f.prov.Origin = model.OriginInferred
				touched = true
			}
			if f.prov.Confidence > r.cap {
				f.prov.Confidence = r.cap
				touched = true
			}
			if f.prov.Rationale == nil {
				f.prov.Rationale = genericRationale(f.prov.Confidence)
				touched = true
			}
			if touched {
				syncClaim(r.ledger, task.ID, f.t, *f.prov)
				changed++
			}
		}
	}

	if changed == 0 {
		return model.RepairResult{
			Gate:    r.GateName(),
			Success: false,
			Reason:  "coverage cannot be improved: citations are never fabricated",
		}
	}
	return model.RepairResult{Gate: r.GateName(), Success: true, Changed: changed}
}

// ContradictionRepairer resolves unresolved high-severity
// contradictions: the explicit-origin claim wins over an inferred one;
// between same-origin claims the higher confidence wins. The loser is
// marked resolved with a timestamp and a fixed strategy tag, never
// deleted.
type ContradictionRepairer struct {
	ledger *ledger.Ledger
	now    func() time.Time
}

// NewContradictionRepairer creates the strategy
func NewContradictionRepairer(led *ledger.Ledger) *ContradictionRepairer {
	return &ContradictionRepairer{ledger: led, now: time.Now}
}

// GateName binds the strategy to its gate
func (r *ContradictionRepairer) GateName() string { return model.GateContradictionSeverity }

// Repair closes every open high-severity contradiction
func (r *ContradictionRepairer) Repair(_ *model.Schedule, _ model.GateFailure) model.RepairResult {
	changed := 0
	for _, c := range r.ledger.Contradictions() {
		if c.Severity != model.SeverityHigh || c.Resolved() {
			continue
		}

		a, okA := r.ledger.Claim(c.ClaimA)
		b, okB := r.ledger.Claim(c.ClaimB)
		if !okA || !okB {
			continue
		}

		loser, strategy := pickLoser(a, b)
		if err := r.ledger.Resolve(c.ID, strategy, loser, r.now()); err != nil {
			continue
		}
		changed++
	}

	if changed == 0 {
		return model.RepairResult{
			Gate:    r.GateName(),
			Success: false,
			Reason:  "no open high-severity contradictions to resolve",
		}
	}
	return model.RepairResult{Gate: r.GateName(), Success: true, Changed: changed}
}

// pickLoser decides which claim of a contradicting pair is rejected
func pickLoser(a, b model.Claim) (loserID, strategy string) {
	if a.Origin != b.Origin {
		if a.Origin == model.OriginExplicit {
			return b.ID, ResolutionPreferExplicit
		}
		return a.ID, ResolutionPreferExplicit
	}
	if b.Confidence > a.Confidence {
		return a.ID, ResolutionPreferConfidence
	}
	return b.ID, ResolutionPreferConfidence
}

// ConfidenceRepairer handles confidence-minimum failures on two paths:
// tasks backed by at least one citation get boosted to the gate
// threshold; uncited tasks are flagged for manual review and never
// silently boosted.
type ConfidenceRepairer struct {
	threshold float64
}

// NewConfidenceRepairer creates the strategy
func NewConfidenceRepairer(threshold float64) *ConfidenceRepairer {
	return &ConfidenceRepairer{threshold: threshold}
}

// GateName binds the strategy to its gate
func (r *ConfidenceRepairer) GateName() string { return model.GateConfidenceMinimum }

// Repair boosts cited tasks and flags uncited ones
func (r *ConfidenceRepairer) Repair(schedule *model.Schedule, _ model.GateFailure) model.RepairResult {
	changed := 0
	flagged := 0
	for i := range schedule.Tasks {
		task := &schedule.Tasks[i]
		if task.Confidence >= r.threshold {
			continue
		}
		if task.PrimaryCited() {
			task.Confidence = r.threshold
			changed++
		} else if !task.ManualReview {
			task.ManualReview = true
			flagged++
		}
	}

	if changed == 0 && flagged == 0 {
		return model.RepairResult{
			Gate:    r.GateName(),
			Success: false,
			Reason:  "no task confidence can be honestly raised",
		}
	}
	return model.RepairResult{
		Gate:    r.GateName(),
		Success: true,
		Changed: changed + flagged,
		Reason:  fmt.Sprintf("%d boosted, %d flagged for manual review", changed, flagged),
	}
}

// SchemaRepairer handles schema-compliance failures: it generates
// missing identifiers, defaults missing origin/confidence fields,
// clamps out-of-range confidence into [0, 1], and re-runs structural
// validation to report whether the schedule now conforms.
type SchemaRepairer struct{}

// NewSchemaRepairer creates the strategy
func NewSchemaRepairer() *SchemaRepairer {
	return &SchemaRepairer{}
}

// GateName binds the strategy to its gate
func (r *SchemaRepairer) GateName() string { return model.GateSchemaCompliance }

// Repair normalizes the schedule structure in place
func (r *SchemaRepairer) Repair(schedule *model.Schedule, _ model.GateFailure) model.RepairResult {
	changed := 0
	for i := range schedule.Tasks {
		task := &schedule.Tasks[i]

		if task.ID == "" {
			task.ID = uuid.NewString()
			changed++
		}
		if task.Origin == "" {
			task.Origin = model.OriginInferred
			if task.Confidence == 0 {
				task.Confidence = 0.5
			}
			changed++
		}
		if clamped := clamp01(task.Confidence); clamped != task.Confidence {
			task.Confidence = clamped
			changed++
		}

		for _, f := range primaryFields(task) {
			if f.prov.Origin == "" {
				f.prov.Origin = model.OriginInferred
				if f.prov.Confidence == 0 {
					f.prov.Confidence = 0.5
				}
				changed++
			}
			if clamped := clamp01(f.prov.Confidence); clamped != f.prov.Confidence {
				f.prov.Confidence = clamped
				changed++
			}
		}
		if req := task.RegulatoryRequirement; req != nil {
			if req.Origin == "" {
				req.Origin = model.OriginInferred
				if req.Confidence == 0 {
					req.Confidence = 0.5
				}
				changed++
			}
			if clamped := clamp01(req.Confidence); clamped != req.Confidence {
				req.Confidence = clamped
				changed++
			}
		}
	}

	remaining := gates.ValidateStructure(schedule)
	if len(remaining) > 0 {
		return model.RepairResult{
			Gate:    r.GateName(),
			Success: false,
			Changed: changed,
			Reason:  fmt.Sprintf("%d schema violations remain after normalization", len(remaining)),
		}
	}
	if changed == 0 {
		return model.RepairResult{
			Gate:    r.GateName(),
			Success: false,
			Reason:  "nothing to normalize",
		}
	}
	return model.RepairResult{Gate: r.GateName(), Success: true, Changed: changed}
}

// RegulatoryFlagsRepairer re-runs the gate's keyword detector and
// attaches a compliance-requirement flag to matched tasks. Pre-existing
// flags are always preserved.
type RegulatoryFlagsRepairer struct{}

// NewRegulatoryFlagsRepairer creates the strategy
func NewRegulatoryFlagsRepairer() *RegulatoryFlagsRepairer {
	return &RegulatoryFlagsRepairer{}
}

// GateName binds the strategy to its gate
func (r *RegulatoryFlagsRepairer) GateName() string { return model.GateRegulatoryFlags }

// Repair attaches missing compliance-requirement flags
func (r *RegulatoryFlagsRepairer) Repair(schedule *model.Schedule, _ model.GateFailure) model.RepairResult {
	changed := 0
	for i := range schedule.Tasks {
		task := &schedule.Tasks[i]
		if task.RegulatoryRequirement != nil {
			continue
		}
		regulation, ok := gates.DetectRegulation(task.Name)
		if !ok {
			continue
		}
		task.RegulatoryRequirement = &model.RegulatoryRequirement{
			IsRequired: true,
			Regulation: regulation,
			Provenance: model.Provenance{
				Origin:     model.OriginExplicit,
				Confidence: 0.9,
			},
		}
		changed++
	}

	if changed == 0 {
		return model.RepairResult{
			Gate:    r.GateName(),
			Success: false,
			Reason:  "no regulated tasks missing a compliance flag",
		}
	}
	return model.RepairResult{Gate: r.GateName(), Success: true, Changed: changed}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
