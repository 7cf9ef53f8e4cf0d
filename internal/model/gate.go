package model

import "time"

// Gate names for the built-in quality gates. Gate identity is by name,
// so registering a duplicate name overwrites the previous gate.
const (
	GateCitationCoverage      = "citation-coverage"
	GateContradictionSeverity = "contradiction-severity"
	GateConfidenceMinimum     = "confidence-minimum"
	GateSchemaCompliance      = "schema-compliance"
	GateRegulatoryFlags       = "regulatory-flags"
)

// GateFailure records one failed gate evaluation
type GateFailure struct {
	Gate      string  `json:"gate"`
	Blocking  bool    `json:"blocking"`
	Score     float64 `json:"score"`               // Measured value
	Threshold float64 `json:"threshold,omitempty"` // Configured threshold, if numeric
	Detail    string  `json:"detail,omitempty"`
}

// GateWarning records one advisory (non-blocking) gate failure
type GateWarning struct {
	Gate   string `json:"gate"`
	Detail string `json:"detail,omitempty"`
}

// GateResult is the outcome of evaluating every registered gate.
// Passed is true iff no blocking gate failed; advisory failures land in
// Warnings and never flip Passed.
type GateResult struct {
	Passed   bool          `json:"passed"`
	Failures []GateFailure `json:"failures"`
	Warnings []GateWarning `json:"warnings"`
}

// RepairResult is what a single repair strategy reports back
type RepairResult struct {
	Gate    string `json:"gate"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`  // Why the repair failed or was skipped
	Changed int    `json:"changed,omitempty"` // Number of tasks/claims touched
}

// RepairAttempt is one entry in the repair log
type RepairAttempt struct {
	Attempt int    `json:"attempt"` // 1-based repair round
	Gate    string `json:"gate"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// RepairLog is the structured record of a bounded repair run
type RepairLog struct {
	Attempts          []RepairAttempt `json:"attempts"`
	SuccessfulRepairs []string        `json:"successful_repairs"`
	FailedRepairs     []string        `json:"failed_repairs"`
	FullyRepaired     bool            `json:"fully_repaired"`
	Timestamp         time.Time       `json:"timestamp"`
}
