package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ovachev/planproof/internal/llm"
	"github.com/ovachev/planproof/internal/model"
	"github.com/ovachev/planproof/internal/orchestrate"
	"github.com/ovachev/planproof/internal/report"
	"github.com/spf13/cobra"
)

var (
	docsDir           string
	outJSON           string
	outMD             string
	timeout           time.Duration
	workers           int
	maxRepairAttempts int
	coverageThreshold float64
	confidenceMinimum float64
	noFooter          bool
	llmEnabled        bool
	llmProvider       string
	llmModel          string
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <schedule>",
	Short: "Validate one AI-generated schedule against its source documents",
	Long: `Validate runs a schedule file (JSON or YAML) through the full
pipeline:
- Extract a claim for every task field
- Verify citations against the source documents
- Detect contradictions between claims
- Audit provenance and calibrate confidence
- Evaluate quality gates over the whole schedule
- Attempt bounded automated repair of failing gates

Example:
  planproof validate schedule.json --docs ./sources
  planproof validate schedule.yaml --docs ./sources --json report.json --md report.md
  planproof validate schedule.json --docs ./sources --llm --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	// Input and output flags
	validateCmd.Flags().StringVar(&docsDir, "docs", "", "directory of source documents citations resolve against")
	validateCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	validateCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	validateCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Pipeline flags
	validateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall validation timeout")
	validateCmd.Flags().IntVar(&workers, "workers", 0, "per-task validation workers (default: number of CPUs)")
	validateCmd.Flags().IntVar(&maxRepairAttempts, "max-repair-attempts", 3, "repair rounds before giving up")
	validateCmd.Flags().Float64Var(&coverageThreshold, "coverage-threshold", 0.75, "minimum citation coverage")
	validateCmd.Flags().Float64Var(&confidenceMinimum, "confidence-minimum", 0.5, "minimum mean calibrated confidence")

	// LLM flags
	validateCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable model-written review of the report")
	validateCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "review provider (openai)")
	validateCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "review model name")
}

func runValidate(cmd *cobra.Command, args []string) error {
	schedulePath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Validating: %s\n", schedulePath)
		fmt.Fprintf(os.Stderr, "Documents:  %s\n", docsDir)
		fmt.Fprintf(os.Stderr, "Timeout:    %v\n", timeout)
		fmt.Fprintln(os.Stderr)
	}

	documents, err := orchestrate.LoadDocuments(docsDir)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Loaded %d source documents\n", len(documents))
	}

	schedule, err := orchestrate.LoadSchedule(schedulePath)
	if err != nil {
		return err
	}

	summarizer, err := newSummarizer(cfg)
	if err != nil {
		return err
	}

	orch := orchestrate.New(cfg, summarizer, newLogger())
	result, err := orch.Run(ctx, schedule, documents)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Validated %d tasks\n", len(result.Schedule.Tasks))
		if result.Repairs != nil {
			fmt.Fprintf(os.Stderr, "✓ Repair rounds: %d, fully repaired: %v\n",
				len(result.Repairs.Attempts), result.Repairs.FullyRepaired)
		}
		if result.LLM != nil && result.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated review using %s/%s\n", result.LLM.Provider, result.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	return renderOutputs(result, cfg, outJSON, outMD)
}

// buildConfig assembles the effective configuration from defaults and
// flags
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Gates.CitationCoverageThreshold = coverageThreshold
	cfg.Gates.ConfidenceMinimum = confidenceMinimum
	cfg.Repair.MaxAttempts = maxRepairAttempts
	if workers > 0 {
		cfg.Concurrency.ValidationWorkers = workers
	}
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		if llmProvider == "openai" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		}
	} else {
		cfg.LLM.Provider = ""
	}

	return cfg, nil
}

// newSummarizer builds the optional review summarizer from config
func newSummarizer(cfg *model.Config) (*llm.Summarizer, error) {
	if cfg.LLM.Provider == "" {
		return nil, nil
	}
	summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM), cfg.LLM.RequestsPerMinute)
	if err != nil {
		return nil, fmt.Errorf("initialize review provider: %w", err)
	}
	return summarizer, nil
}

// renderOutputs writes the requested report files and the stdout
// summary
func renderOutputs(result *model.Report, cfg *model.Config, jsonPath, mdPath string) error {
	renderer := report.NewRenderer(cfg.Output.IncludeFooter)

	if jsonPath != "" {
		if err := renderer.RenderJSON(result, jsonPath); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := renderer.RenderMarkdown(result, mdPath); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}

		// The model review goes to its own file, never inline
		if result.LLM != nil && result.LLM.Enabled {
			reviewPath := strings.TrimSuffix(mdPath, ".md") + ".review.md"
			if err := renderer.RenderReviewMarkdown(llm.RenderSeparateMarkdown(result.LLM), reviewPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to write review: %v\n", err)
			} else if verbose {
				fmt.Fprintf(os.Stderr, "✓ Wrote review: %s\n", reviewPath)
			}
		}
	}

	renderer.RenderSummary(result)
	return nil
}
