package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/goliatone/go-synthgen/pkg/config"
)

// BatchResult is the outcome of one model directory in a batch run.
type BatchResult struct {
	ModelsDir string
	OutputDir string
	Summary   Summary
	Err       error
}

// Batch runs an independent pipeline per model directory, each with its own
// sessions and an output subdirectory named after the directory. Directories
// sharing a basename get numeric suffixes so their outputs never merge. A
// failing directory does not stop the batch; its error is carried in the
// result. Cancellation stops before the next directory starts.
func Batch(ctx context.Context, cfg config.Config, dirs []string, options ...Option) ([]BatchResult, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("pipeline: batch requires at least one models directory")
	}

	names := outputNames(dirs)
	results := make([]BatchResult, 0, len(dirs))
	for i, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		runCfg := cfg
		runCfg.ModelsDir = dir
		runCfg.OutputDir = filepath.Join(cfg.OutputDir, names[i])

		res := BatchResult{ModelsDir: dir, OutputDir: runCfg.OutputDir}
		gen, err := New(runCfg, options...)
		if err != nil {
			res.Err = err
		} else {
			res.Summary, res.Err = gen.Run(ctx)
		}
		results = append(results, res)
	}
	return results, nil
}

// outputNames assigns each directory a unique output subdirectory name,
// suffixing repeated basenames in list order.
func outputNames(dirs []string) []string {
	names := make([]string, len(dirs))
	used := make(map[string]bool, len(dirs))
	for i, dir := range dirs {
		name := filepath.Base(dir)
		candidate := name
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		used[candidate] = true
		names[i] = candidate
	}
	return names
}
