package model

import "time"

// Claim is the atomic unit the pipeline validates: one typed statement
// about one task field. Claims are owned by the ledger once extracted;
// tasks keep only back-references by id.
type Claim struct {
	ID         string              `json:"id"`      // Deterministic: taskID:type[:index]
	TaskID     string              `json:"task_id"` // Owning task
	Type       ClaimType           `json:"type"`
	Value      string              `json:"value"`
	Origin     Origin              `json:"origin"`
	Confidence float64             `json:"confidence"`
	Citations  []Citation          `json:"citations,omitempty"`
	Rationale  *InferenceRationale `json:"rationale,omitempty"`
}

// Cited reports whether the claim carries at least one citation
func (c Claim) Cited() bool {
	return len(c.Citations) > 0
}

// ClaimType categorizes the nature of the claim
type ClaimType string

const (
	ClaimTypeDuration    ClaimType = "duration"    // How long the task takes
	ClaimTypeDeadline    ClaimType = "deadline"    // When the task starts or is due
	ClaimTypeDependency  ClaimType = "dependency"  // Which tasks must precede it
	ClaimTypeRequirement ClaimType = "requirement" // Regulatory or compliance requirement
	ClaimTypeResource    ClaimType = "resource"    // Resource assignment
)

// Severity bands a contradiction by how badly the two values disagree
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Contradiction links two same-type claims whose values disagree.
// Created by the validation pipeline with a unique id; the resolution
// fields are set only by the repair engine, never cleared.
type Contradiction struct {
	ID         string    `json:"id"`
	ClaimA     string    `json:"claim_a"` // Claim id
	ClaimB     string    `json:"claim_b"` // Claim id
	Type       ClaimType `json:"type"`
	Severity   Severity  `json:"severity"`
	Detail     string    `json:"detail,omitempty"`
	DetectedAt time.Time `json:"detected_at"`

	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
	ResolutionStrategy string     `json:"resolution_strategy,omitempty"`
	RejectedClaim      string     `json:"rejected_claim,omitempty"` // Losing claim id
}

// Resolved reports whether the repair engine has closed the contradiction
func (c Contradiction) Resolved() bool {
	return c.ResolvedAt != nil
}

// LedgerSnapshot is an immutable export of the claim ledger for reporting
type LedgerSnapshot struct {
	Claims         []Claim         `json:"claims"`
	Contradictions []Contradiction `json:"contradictions"`
}

// UnresolvedHigh counts open high-severity contradictions in the snapshot
func (s LedgerSnapshot) UnresolvedHigh() int {
	n := 0
	for _, c := range s.Contradictions {
		if c.Severity == SeverityHigh && !c.Resolved() {
			n++
		}
	}
	return n
}
