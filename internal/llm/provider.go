// Package llm generates an optional model-written review of a finished
// validation report. The review is produced after gating and never
// feeds back into scores, gates, or repairs.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ovachev/planproof/internal/model"
)

// Provider defines the interface for review-summary providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Review generates a prose review of the report
	Review(ctx context.Context, req ReviewRequest) (*ReviewResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// ReviewRequest contains the input for review generation
type ReviewRequest struct {
	// Report is the finished validation report to review
	Report model.Report

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ReviewResponse contains the provider's output
type ReviewResponse struct {
	Summary    string // Generated markdown review
	Model      string // Model that produced it
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	Provider  string // "openai" or "" (disabled)
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
}

// NewProvider creates a provider based on configuration. An empty
// provider name disables the feature and returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		MaxTokens: mc.MaxTokens,
	}
}

// BuildPrompt renders the default review prompt. The model only sees
// the report's own numbers; it is asked to explain, not to judge.
func BuildPrompt(report model.Report) string {
	var b strings.Builder

	b.WriteString("You are reviewing an automatically validated project schedule.\n")
	b.WriteString("Explain the findings below for a project manager in plain language.\n")
	b.WriteString("Do not invent numbers or findings not listed here.\n\n")

	fmt.Fprintf(&b, "Subject: %s\n", report.Subject)
	if report.Schedule != nil {
		fmt.Fprintf(&b, "Tasks: %d\n", len(report.Schedule.Tasks))
		if v := report.Schedule.Validation; v != nil {
			fmt.Fprintf(&b, "Citation coverage: %.2f\n", v.CitationCoverage)
			fmt.Fprintf(&b, "Mean confidence: %.2f\n", v.MeanConfidence)
			fmt.Fprintf(&b, "Contradictions: %d\n", v.ContradictionCount)
		}
	}

	fmt.Fprintf(&b, "Quality gates passed: %v\n", report.Gates.Passed)
	for _, f := range report.Gates.Failures {
		fmt.Fprintf(&b, "- FAILED %s: %s\n", f.Gate, f.Detail)
	}
	for _, w := range report.Gates.Warnings {
		fmt.Fprintf(&b, "- WARNING %s: %s\n", w.Gate, w.Detail)
	}

	if report.Repairs != nil {
		fmt.Fprintf(&b, "Repair attempts: %d, fully repaired: %v\n",
			len(report.Repairs.Attempts), report.Repairs.FullyRepaired)
	}

	b.WriteString("\nWrite a short markdown summary (max 3 paragraphs).\n")
	return b.String()
}
