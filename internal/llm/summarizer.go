package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ovachev/planproof/internal/model"
	"golang.org/x/time/rate"
)

// Summarizer wraps a provider with call throttling. A nil Summarizer
// (or one with no provider) is simply disabled.
type Summarizer struct {
	provider Provider
	config   Config
	limiter  *rate.Limiter
}

// NewSummarizer creates a summarizer from configuration. Returns an
// error only for misconfiguration; an empty provider yields a disabled
// summarizer.
func NewSummarizer(config Config, requestsPerMinute float64) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}

	if requestsPerMinute <= 0 {
		requestsPerMinute = 20
	}

	return &Summarizer{
		provider: provider,
		config:   config,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), 1),
	}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// GenerateReview produces the optional model review of a report,
// waiting for rate-limit clearance first.
func (s *Summarizer) GenerateReview(ctx context.Context, report model.Report) (*model.ReviewSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := s.provider.Review(ctx, ReviewRequest{
		Report:    report,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate review: %w", err)
	}

	return &model.ReviewSummary{
		Enabled:   true,
		Provider:  s.provider.Name(),
		Model:     resp.Model,
		SummaryMD: resp.Summary,
	}, nil
}

// RenderSeparateMarkdown renders the review as a standalone markdown
// document, clearly marked as model-generated.
func RenderSeparateMarkdown(summary *model.ReviewSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Model Review\n\n")
	fmt.Fprintf(&b, "> Generated by %s/%s. This review never affects gate verdicts.\n\n",
		summary.Provider, summary.Model)
	b.WriteString(summary.SummaryMD)
	b.WriteString("\n")
	return b.String()
}
