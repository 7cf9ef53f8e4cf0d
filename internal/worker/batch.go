package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

// BatchProcessor validates multiple schedule files concurrently
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessPaths validates the given schedule files concurrently and
// returns results sorted by path for stable output.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ValidateResult {
	if len(paths) == 0 {
		return []*ValidateResult{}
	}

	pool := NewPool(b.runner, b.concurrency)
	pool.Start()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()

	for _, path := range paths {
		pool.Submit(path)
	}

	results := pool.Wait()
	close(done)

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}

// ProcessFile reads schedule file paths from a list file and validates
// them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*ValidateResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read path list: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads schedule file paths from a file (one per line)
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
