package model

import "time"

// Origin classifies where a claim or field value came from
type Origin string

const (
	OriginExplicit Origin = "explicit" // Backed by a citation into a source document
	OriginInferred Origin = "inferred" // Derived by the model, backed by a rationale
)

// Citation points at a quoted span inside a named source document.
// It both proves a claim and lets the provenance audit detect
// hallucination (quoted text absent from the named document).
type Citation struct {
	Document    string    `json:"document"`               // Source document name
	Provider    string    `json:"provider,omitempty"`     // Who supplied the document
	Start       *int      `json:"start,omitempty"`        // Start character offset
	End         *int      `json:"end,omitempty"`          // End character offset
	Quote       string    `json:"quote,omitempty"`        // Exact quoted substring
	RetrievedAt time.Time `json:"retrieved_at,omitempty"` // When the span was retrieved
}

// HasOffsets reports whether both character offsets are present
func (c Citation) HasOffsets() bool {
	return c.Start != nil && c.End != nil
}

// InferenceRationale explains how a non-cited value was derived
type InferenceRationale struct {
	Method           string   `json:"method"`                      // temporal-logic, industry-standard, dependency-chain, regulatory-pattern
	Explanation      string   `json:"explanation,omitempty"`       // Free-text explanation
	SupportingClaims []string `json:"supporting_claims,omitempty"` // IDs of claims this derivation leaned on
	Confidence       float64  `json:"confidence"`                  // Confidence of the derivation
}

// Rationale methods recognized by the pipeline
const (
	MethodTemporalLogic     = "temporal-logic"
	MethodIndustryStandard  = "industry-standard"
	MethodDependencyChain   = "dependency-chain"
	MethodRegulatoryPattern = "regulatory-pattern"
)

// Provenance is the origin bookkeeping shared by every fielded claim.
// Invariant: explicit origin requires confidence exactly 1.0 and at least
// one citation; inferred origin requires confidence below 1.0 and a
// rationale. A violation is a repairable defect, never a crash.
type Provenance struct {
	Origin     Origin              `json:"origin"`
	Confidence float64             `json:"confidence"`
	Citations  []Citation          `json:"citations,omitempty"`
	Rationale  *InferenceRationale `json:"rationale,omitempty"`
}

// Cited reports whether at least one citation is attached
func (p Provenance) Cited() bool {
	return len(p.Citations) > 0
}

// FieldClaim is a single-valued fielded claim embedded in a task
type FieldClaim struct {
	Value string `json:"value"`
	Provenance
}

// DependencyClaim lists the task ids a task depends on
type DependencyClaim struct {
	TaskIDs []string `json:"task_ids"`
	Provenance
}

// RegulatoryRequirement flags a task as subject to a compliance regime.
// Attached either by the generation stage or by the regulatory-flags
// repairer; repair never overwrites a pre-existing one.
type RegulatoryRequirement struct {
	IsRequired bool   `json:"is_required"`
	Regulation string `json:"regulation,omitempty"` // e.g. "FDA", "HIPAA"
	Provenance
}

// Task is one schedule item produced by the (out-of-scope) generation
// stage. Tasks never hold live Claim references, only their own id for
// ledger lookup.
type Task struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Origin     Origin  `json:"origin"`
	Confidence float64 `json:"confidence"`

	Duration              *FieldClaim            `json:"duration,omitempty"`
	StartDate             *FieldClaim            `json:"start_date,omitempty"`
	Dependencies          *DependencyClaim       `json:"dependencies,omitempty"`
	RegulatoryRequirement *RegulatoryRequirement `json:"regulatory_requirement,omitempty"`

	// Validation is attached by the orchestrator after the per-task
	// validation pass. It must survive the final structural check.
	Validation *ValidationMetadata `json:"validation_metadata,omitempty"`

	// ManualReview is set by the confidence repairer for uncited tasks
	// whose confidence cannot be honestly boosted.
	ManualReview bool `json:"manual_review,omitempty"`
}

// PrimaryCited reports whether any primary field (duration, start date,
// dependencies) carries at least one citation. The regulatory flag is a
// compliance marker, not a primary field, so it does not count toward
// citation coverage.
func (t Task) PrimaryCited() bool {
	if t.Duration != nil && t.Duration.Cited() {
		return true
	}
	if t.StartDate != nil && t.StartDate.Cited() {
		return true
	}
	if t.Dependencies != nil && t.Dependencies.Cited() {
		return true
	}
	return false
}

// Schedule is the unit the pipeline validates end to end
type Schedule struct {
	Subject string                 `json:"subject,omitempty"` // Human-readable project name
	Tasks   []Task                 `json:"tasks"`
	Meta    map[string]interface{} `json:"meta,omitempty"`

	// Validation is the top-level roll-up attached by the orchestrator
	Validation *ScheduleValidation `json:"validation_metadata,omitempty"`
}

// ScheduleValidation is the schedule-wide validation roll-up
type ScheduleValidation struct {
	CitationCoverage   float64   `json:"citation_coverage"`
	MeanConfidence     float64   `json:"mean_confidence"`
	MeanProvenance     float64   `json:"mean_provenance"`
	ContradictionCount int       `json:"contradiction_count"`
	ValidatedAt        time.Time `json:"validated_at"`
}

// SourceDocument is a named document citations point into
type SourceDocument struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}
