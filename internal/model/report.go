package model

import "time"

// TaskValidation is the per-task result of the four-check validation
// pipeline: citation verification, contradiction detection, provenance
// audit, confidence calibration.
type TaskValidation struct {
	TaskID           string   `json:"task_id"`
	Claims           []Claim  `json:"claims"`            // Validated claims with calibrated confidence
	CitationCoverage float64  `json:"citation_coverage"` // Cited claims / total claims for this task
	Contradictions   []string `json:"contradictions"`    // Contradiction ids involving this task
	AvgProvenance    float64  `json:"avg_provenance"`

	// Failed marks a task whose validation errored. The task degrades to
	// a zero-quality result instead of aborting the batch.
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ValidationMetadata is the slice of TaskValidation the orchestrator
// attaches back onto each task after the validation pass
type ValidationMetadata struct {
	CitationCoverage     float64   `json:"citation_coverage"`
	AvgProvenance        float64   `json:"avg_provenance"`
	Contradictions       []string  `json:"contradictions,omitempty"`
	CalibratedConfidence float64   `json:"calibrated_confidence"`
	Error                string    `json:"error,omitempty"`
	ValidatedAt          time.Time `json:"validated_at"`
}

// Report is the complete output of one pipeline run: the annotated
// schedule, the final gate verdict, the repair log when repairs ran,
// and the exported claim ledger.
type Report struct {
	Subject     string    `json:"subject"`
	GeneratedAt time.Time `json:"generated_at"`

	Schedule *Schedule       `json:"schedule"`
	Gates    GateResult      `json:"final_quality_gates"`
	Repairs  *RepairLog      `json:"repair_log,omitempty"`
	Ledger   *LedgerSnapshot `json:"ledger,omitempty"`

	// LLM is the optional model-written review. It is generated after
	// gating and never affects the verdict.
	LLM *ReviewSummary `json:"llm,omitempty"`
}

// ReviewSummary is an optional model-generated review of the report
type ReviewSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
