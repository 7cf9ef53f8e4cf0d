package model

import (
	"runtime"
	"time"
)

// Config is the full planproof configuration, loadable from
// ~/.planproof/config.yaml, PLANPROOF_* env vars, or CLI flags.
type Config struct {
	Gates       GatesConfig       `yaml:"gates" json:"gates"`
	Repair      RepairConfig      `yaml:"repair" json:"repair"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Jobs        JobsConfig        `yaml:"jobs" json:"jobs"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// GatesConfig holds the numeric thresholds of the built-in gates
type GatesConfig struct {
	CitationCoverageThreshold float64 `yaml:"citation_coverage_threshold" json:"citation_coverage_threshold"`
	ConfidenceMinimum         float64 `yaml:"confidence_minimum" json:"confidence_minimum"`
}

// RepairConfig bounds the repair loop
type RepairConfig struct {
	MaxAttempts   int     `yaml:"max_attempts" json:"max_attempts"`     // Repair rounds before giving up
	ConfidenceCap float64 `yaml:"confidence_cap" json:"confidence_cap"` // Cap for downgraded uncited fields
}

// ConcurrencyConfig sizes the fan-out stages
type ConcurrencyConfig struct {
	ValidationWorkers int `yaml:"validation_workers" json:"validation_workers"` // Per-task validation fan-out
	BatchWorkers      int `yaml:"batch_workers" json:"batch_workers"`           // Concurrent schedules in batch mode
}

// JobsConfig controls the poll-able job store
type JobsConfig struct {
	TTL             time.Duration `yaml:"ttl" json:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
}

// LLMConfig configures the optional review-summary provider.
// Empty provider disables the feature entirely.
type LLMConfig struct {
	Provider          string  `yaml:"provider" json:"provider"` // "openai" or ""
	Model             string  `yaml:"model" json:"model"`
	APIKey            string  `yaml:"-" json:"-"` // From env, never persisted
	BaseURL           string  `yaml:"base_url" json:"base_url"`
	MaxTokens         int     `yaml:"max_tokens" json:"max_tokens"`
	RequestsPerMinute float64 `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Gates: GatesConfig{
			CitationCoverageThreshold: 0.75,
			ConfidenceMinimum:         0.5,
		},
		Repair: RepairConfig{
			MaxAttempts:   3,
			ConfidenceCap: 0.7,
		},
		Concurrency: ConcurrencyConfig{
			ValidationWorkers: runtime.NumCPU(),
			BatchWorkers:      runtime.NumCPU(),
		},
		Jobs: JobsConfig{
			TTL:             1 * time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:          "",
			Model:             "gpt-4o-mini",
			MaxTokens:         1200,
			RequestsPerMinute: 20,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
