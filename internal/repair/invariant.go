package repair

import (
	"github.com/ovachev/planproof/internal/ledger"
	"github.com/ovachev/planproof/internal/model"
)

// genericRationale is attached when a value must be kept as an
// inference without any model-supplied derivation
func genericRationale(confidence float64) *model.InferenceRationale {
	return &model.InferenceRationale{
		Method:      model.MethodIndustryStandard,
		Explanation: "no supporting citation available; value retained as an inference",
		Confidence:  confidence,
	}
}

// normalizeInvariants restores the provenance invariant on every
// primary field and its ledger claims: explicit origin means confidence
// 1.0 with at least one citation; inferred origin means confidence
// below 1.0 with a rationale. Uncited explicit fields are downgraded to
// inferred with confidence capped at 0.7.
//
// Regulatory-requirement flags are exempt: they are compliance markers
// whose shape is owned by the regulatory-flags strategy.
func normalizeInvariants(schedule *model.Schedule, led *ledger.Ledger) int {
	changed := 0
	for i := range schedule.Tasks {
		task := &schedule.Tasks[i]
		if task.Duration != nil && normalizeProvenance(&task.Duration.Provenance) {
			syncClaim(led, task.ID, model.ClaimTypeDuration, task.Duration.Provenance)
			changed++
		}
		if task.StartDate != nil && normalizeProvenance(&task.StartDate.Provenance) {
			syncClaim(led, task.ID, model.ClaimTypeDeadline, task.StartDate.Provenance)
			changed++
		}
		if task.Dependencies != nil && normalizeProvenance(&task.Dependencies.Provenance) {
			syncClaim(led, task.ID, model.ClaimTypeDependency, task.Dependencies.Provenance)
			changed++
		}
	}
	return changed
}

// normalizeProvenance fixes one provenance block in place and reports
// whether anything changed
func normalizeProvenance(p *model.Provenance) bool {
	changed := false

	switch p.Origin {
	case model.OriginExplicit:
		if !p.Cited() {
			p.Origin = model.OriginInferred
			if p.Confidence > downgradedConfidenceCap {
				p.Confidence = downgradedConfidenceCap
			}
			if p.Rationale == nil {
				p.Rationale = genericRationale(p.Confidence)
			}
			changed = true
		} else if p.Confidence != 1.0 {
			p.Confidence = 1.0
			changed = true
		}
	case model.OriginInferred:
		if p.Confidence >= 1.0 {
			p.Confidence = 0.85
			changed = true
		}
		if p.Rationale == nil {
			p.Rationale = genericRationale(p.Confidence)
			changed = true
		}
	}

	return changed
}

// downgradedConfidenceCap bounds the confidence of a field that lost
// its explicit status. Kept below the 0.85 invariant ceiling.
const downgradedConfidenceCap = 0.7

// syncClaim mirrors a field-level provenance change onto the ledger
// claims extracted from that field
func syncClaim(led *ledger.Ledger, taskID string, t model.ClaimType, p model.Provenance) {
	if led == nil {
		return
	}
	for _, claim := range led.ClaimsByTask(taskID) {
		if claim.Type != t {
			continue
		}
		claim.Origin = p.Origin
		claim.Confidence = p.Confidence
		if claim.Rationale == nil && p.Rationale != nil {
			r := *p.Rationale
			claim.Rationale = &r
		}
		_ = led.UpdateClaim(claim)
	}
}
