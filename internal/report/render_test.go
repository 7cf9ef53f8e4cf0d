package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ovachev/planproof/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *model.Report {
	return &model.Report{
		Subject:     "house-build",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Schedule: &model.Schedule{
			Subject: "house-build",
			Tasks: []model.Task{{
				ID:         "t1",
				Name:       "Framing",
				Origin:     model.OriginExplicit,
				Confidence: 0.95,
				Validation: &model.ValidationMetadata{CitationCoverage: 1.0},
			}},
			Validation: &model.ScheduleValidation{
				CitationCoverage: 1.0,
				MeanConfidence:   0.95,
				MeanProvenance:   0.9,
			},
		},
		Gates: model.GateResult{Passed: true},
	}
}

func TestRenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, NewRenderer(true).RenderJSON(sampleReport(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded model.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "house-build", decoded.Subject)
	require.NotNil(t, decoded.Schedule)
	assert.Len(t, decoded.Schedule.Tasks, 1)
}

func TestRenderMarkdown_PassingReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")

	require.NoError(t, NewRenderer(true).RenderMarkdown(sampleReport(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(data)

	assert.Contains(t, md, "# Schedule Validation: house-build")
	assert.Contains(t, md, "**Verdict: PASSED**")
	assert.Contains(t, md, "All gates passed.")
	assert.Contains(t, md, "| Citation coverage | 1.00 |")
	assert.Contains(t, md, "| Framing | explicit | 0.95 | 1.00 |")
	assert.Contains(t, md, "Scores reflect citation evidence, not ground truth.")
}

func TestRenderMarkdown_FailingReport(t *testing.T) {
	report := sampleReport()
	report.Gates = model.GateResult{
		Passed: false,
		Failures: []model.GateFailure{{
			Gate:     model.GateCitationCoverage,
			Blocking: true,
			Detail:   "coverage 0.00 below threshold 0.75",
		}},
		Warnings: []model.GateWarning{{
			Gate:   model.GateRegulatoryFlags,
			Detail: "1 task missing regulatory flags",
		}},
	}
	report.Repairs = &model.RepairLog{
		FullyRepaired: false,
		Attempts: []model.RepairAttempt{
			{Attempt: 1, Gate: model.GateCitationCoverage, Success: false, Reason: "citations are never fabricated"},
		},
		FailedRepairs: []string{model.GateCitationCoverage},
	}
	report.Ledger = &model.LedgerSnapshot{
		Contradictions: []model.Contradiction{{
			ID: "c1", ClaimA: "a", ClaimB: "b",
			Severity: model.SeverityHigh, Detail: "duration mismatch",
		}},
	}

	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, NewRenderer(false).RenderMarkdown(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(data)

	assert.Contains(t, md, "**Verdict: FAILED** — 1 blocking gate(s)")
	assert.Contains(t, md, "❌ **citation-coverage** (blocking)")
	assert.Contains(t, md, "⚠️ **regulatory-flags** (advisory)")
	assert.Contains(t, md, "Fully repaired: false")
	assert.Contains(t, md, "Round 1 ✗ citation-coverage: citations are never fabricated")
	assert.Contains(t, md, "[open] a vs b, severity high: duration mismatch")
	assert.NotContains(t, md, "Generated by planproof", "footer disabled")
}

func TestRenderMarkdown_ResolvedContradiction(t *testing.T) {
	now := time.Now()
	report := sampleReport()
	report.Ledger = &model.LedgerSnapshot{
		Contradictions: []model.Contradiction{{
			ID: "c1", ClaimA: "a", ClaimB: "b",
			Severity:           model.SeverityHigh,
			ResolvedAt:         &now,
			ResolutionStrategy: "prefer-explicit",
		}},
	}

	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, NewRenderer(false).RenderMarkdown(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[resolved (prefer-explicit)]")
}

func TestRenderReviewMarkdown(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "review.md")
	require.NoError(t, NewRenderer(true).RenderReviewMarkdown("## Review\n\nLooks sound.", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Looks sound.")

	// Empty review writes nothing at all
	skipped := filepath.Join(dir, "skipped.md")
	require.NoError(t, NewRenderer(true).RenderReviewMarkdown("", skipped))
	_, err = os.Stat(skipped)
	assert.True(t, os.IsNotExist(err))
}
