// Package report renders finished validation reports as JSON, Markdown,
// and a terminal summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ovachev/planproof/internal/model"
)

// Renderer writes reports to files and the terminal
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Schedule Validation: %s\n\n", report.Subject)
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	if report.Gates.Passed && len(report.Gates.Warnings) == 0 {
		b.WriteString("**Verdict: PASSED** — all quality gates satisfied\n\n")
	} else if report.Gates.Passed {
		fmt.Fprintf(&b, "**Verdict: PASSED** with %d warning(s)\n\n", len(report.Gates.Warnings))
	} else {
		fmt.Fprintf(&b, "**Verdict: FAILED** — %d blocking gate(s)\n\n", len(report.Gates.Failures))
	}

	if s := report.Schedule; s != nil && s.Validation != nil {
		b.WriteString("## Summary\n\n")
		b.WriteString("| Metric | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Tasks | %d |\n", len(s.Tasks))
		fmt.Fprintf(&b, "| Citation coverage | %.2f |\n", s.Validation.CitationCoverage)
		fmt.Fprintf(&b, "| Mean confidence | %.2f |\n", s.Validation.MeanConfidence)
		fmt.Fprintf(&b, "| Mean provenance | %.2f |\n", s.Validation.MeanProvenance)
		fmt.Fprintf(&b, "| Contradictions | %d |\n", s.Validation.ContradictionCount)
		b.WriteString("\n")
	}

	b.WriteString("## Quality Gates\n\n")
	if len(report.Gates.Failures) == 0 && len(report.Gates.Warnings) == 0 {
		b.WriteString("All gates passed.\n\n")
	}
	for _, f := range report.Gates.Failures {
		fmt.Fprintf(&b, "- ❌ **%s** (blocking): %s\n", f.Gate, f.Detail)
	}
	for _, w := range report.Gates.Warnings {
		fmt.Fprintf(&b, "- ⚠️ **%s** (advisory): %s\n", w.Gate, w.Detail)
	}
	if len(report.Gates.Failures) > 0 || len(report.Gates.Warnings) > 0 {
		b.WriteString("\n")
	}

	if report.Repairs != nil {
		b.WriteString("## Repairs\n\n")
		fmt.Fprintf(&b, "Fully repaired: %v\n\n", report.Repairs.FullyRepaired)
		for _, a := range report.Repairs.Attempts {
			status := "✓"
			if !a.Success {
				status = "✗"
			}
			fmt.Fprintf(&b, "- Round %d %s %s", a.Attempt, status, a.Gate)
			if a.Reason != "" {
				fmt.Fprintf(&b, ": %s", a.Reason)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if report.Ledger != nil && len(report.Ledger.Contradictions) > 0 {
		b.WriteString("## Contradictions\n\n")
		for _, c := range report.Ledger.Contradictions {
			status := "open"
			if c.Resolved() {
				status = fmt.Sprintf("resolved (%s)", c.ResolutionStrategy)
			}
			fmt.Fprintf(&b, "- [%s] %s vs %s, severity %s: %s\n",
				status, c.ClaimA, c.ClaimB, c.Severity, c.Detail)
		}
		b.WriteString("\n")
	}

	if s := report.Schedule; s != nil && len(s.Tasks) > 0 {
		b.WriteString("## Tasks\n\n")
		b.WriteString("| Task | Origin | Confidence | Coverage | Review |\n|---|---|---|---|---|\n")
		for _, t := range s.Tasks {
			coverage := "-"
			if t.Validation != nil {
				coverage = fmt.Sprintf("%.2f", t.Validation.CitationCoverage)
			}
			review := ""
			if t.ManualReview {
				review = "manual"
			}
			fmt.Fprintf(&b, "| %s | %s | %.2f | %s | %s |\n",
				t.Name, t.Origin, t.Confidence, coverage, review)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n")
		b.WriteString("Generated by planproof. Scores reflect citation evidence, not ground truth.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderReviewMarkdown writes the optional model review to its own file
func (r *Renderer) RenderReviewMarkdown(markdown string, path string) error {
	if markdown == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write review markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a short verdict block to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Println("═══════════════════════════════════════════════")
	fmt.Printf("  %s\n", report.Subject)
	fmt.Println("═══════════════════════════════════════════════")

	if s := report.Schedule; s != nil && s.Validation != nil {
		fmt.Printf("  Tasks:              %d\n", len(s.Tasks))
		fmt.Printf("  Citation coverage:  %.2f\n", s.Validation.CitationCoverage)
		fmt.Printf("  Mean confidence:    %.2f\n", s.Validation.MeanConfidence)
		fmt.Printf("  Contradictions:     %d\n", s.Validation.ContradictionCount)
	}

	if report.Gates.Passed && len(report.Gates.Warnings) == 0 {
		fmt.Println("  Verdict:            PASSED")
	} else if report.Gates.Passed {
		fmt.Printf("  Verdict:            PASSED (%d warnings)\n", len(report.Gates.Warnings))
	} else {
		fmt.Printf("  Verdict:            FAILED (%d blocking gates)\n", len(report.Gates.Failures))
	}
	if report.Repairs != nil {
		fmt.Printf("  Repairs:            fully repaired = %v\n", report.Repairs.FullyRepaired)
	}
	fmt.Println("═══════════════════════════════════════════════")
}
