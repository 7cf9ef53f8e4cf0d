package orchestrate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ovachev/planproof/internal/model"
	"gopkg.in/yaml.v3"
)

// LoadSchedule reads a schedule from a JSON or YAML file, chosen by
// extension. Unknown extensions are parsed as JSON.
func LoadSchedule(path string) (*model.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}

	var schedule model.Schedule
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &schedule); err != nil {
			return nil, fmt.Errorf("parse schedule %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &schedule); err != nil {
			return nil, fmt.Errorf("parse schedule %s: %w", path, err)
		}
	}

	if schedule.Subject == "" {
		schedule.Subject = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &schedule, nil
}

// LoadDocuments reads every regular file in a directory as a source
// document, named by its base filename. Citations resolve against
// these names.
func LoadDocuments(dir string) ([]model.SourceDocument, error) {
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read documents dir: %w", err)
	}

	var documents []model.SourceDocument
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", entry.Name(), err)
		}
		documents = append(documents, model.SourceDocument{
			Name:    entry.Name(),
			Content: string(content),
		})
	}

	sort.Slice(documents, func(i, j int) bool { return documents[i].Name < documents[j].Name })
	return documents, nil
}

// FileRunner binds an orchestrator to a fixed document set so batch
// workers can validate schedule files by path.
type FileRunner struct {
	Orchestrator *Orchestrator
	Documents    []model.SourceDocument
}

// ValidateFile loads one schedule file and runs it through the full
// pipeline
func (r *FileRunner) ValidateFile(ctx context.Context, path string) (*model.Report, error) {
	schedule, err := LoadSchedule(path)
	if err != nil {
		return nil, err
	}
	return r.Orchestrator.Run(ctx, schedule, r.Documents)
}
