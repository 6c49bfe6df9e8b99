// Package pipeline coordinates the full generation run: recipe sampling,
// placement against the external engine, annotation, and dataset assembly.
// It applies sensible defaults (built-in sampler, YOLO/COCO writer registry)
// while remaining open to dependency injection for tests and advanced
// callers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	internalsampler "github.com/goliatone/go-synthgen/internal/sampler"
	"github.com/goliatone/go-synthgen/pkg/annotate"
	"github.com/goliatone/go-synthgen/pkg/catalog"
	"github.com/goliatone/go-synthgen/pkg/config"
	"github.com/goliatone/go-synthgen/pkg/dataset"
	"github.com/goliatone/go-synthgen/pkg/engine"
	"github.com/goliatone/go-synthgen/pkg/placement"
	"github.com/goliatone/go-synthgen/pkg/scene"
	"github.com/goliatone/go-synthgen/pkg/writers/coco"
	"github.com/goliatone/go-synthgen/pkg/writers/yolo"
)

// ErrNoSuccesses reports a run in which every attempted sample hard-failed.
var ErrNoSuccesses = errors.New("pipeline: no samples succeeded")

// ErrToleranceExceeded reports more hard-failed samples than the configured
// failure tolerance allows.
var ErrToleranceExceeded = errors.New("pipeline: failure tolerance exceeded")

// Summary is the outcome of one run.
type Summary struct {
	// Requested is the configured sample count for the run.
	Requested int
	// Resumed is how many samples an earlier run had already produced.
	Resumed int
	// Succeeded is how many samples this run wrote.
	Succeeded int
	// Failed is how many samples hard-failed after retries and resampling.
	Failed int
	// BackgroundOnly is how many written samples carried zero boxes.
	BackgroundOnly int
}

// ProgressFunc receives each written sample. Called serially.
type ProgressFunc func(done, total int, rec dataset.Record)

// Option customises the generator configuration.
type Option func(*Generator)

// WithSampler injects a custom recipe sampler.
func WithSampler(s scene.Sampler) Option {
	return func(g *Generator) {
		if s != nil {
			g.sampler = s
		}
	}
}

// WithSessionFactory injects the engine session factory. Required: the
// engine lives outside this module.
func WithSessionFactory(factory engine.SessionFactory) Option {
	return func(g *Generator) {
		g.factory = factory
	}
}

// WithRegistry injects a label writer registry. Defaults to the built-in
// formats.
func WithRegistry(registry *annotate.Registry) Option {
	return func(g *Generator) {
		if registry != nil {
			g.registry = registry
		}
	}
}

// WithLogger injects a structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithProgress registers a per-sample progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(g *Generator) {
		g.progress = fn
	}
}

// Generator runs the generation pipeline for one configuration.
type Generator struct {
	cfg      config.Config
	sampler  scene.Sampler
	factory  engine.SessionFactory
	registry *annotate.Registry
	logger   *slog.Logger
	progress ProgressFunc
}

// New constructs a Generator from a configuration, validating it and
// applying any provided options. Missing dependencies are initialised with
// the built-in implementations, except the session factory, which has no
// default.
func New(cfg config.Config, options ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}

	if g.sampler == nil {
		g.sampler = internalsampler.New()
	}
	if g.registry == nil {
		g.registry = defaultRegistry()
	}
	if g.factory == nil {
		return nil, fmt.Errorf("pipeline: session factory is required")
	}
	return g, nil
}

func defaultRegistry() *annotate.Registry {
	registry := annotate.NewRegistry()
	registry.MustRegister(yolo.New())
	registry.MustRegister(coco.New())
	return registry
}

// Run executes the pipeline until the configured sample count is reached,
// the context is canceled, or the failure budget is exhausted. Workers each
// hold their own engine session; dataset assembly is serialized through the
// single assembler. Cancellation stops issuing new recipes and lets
// in-flight samples finish or fail cleanly, so the manifest stays
// consistent and a later run resumes where this one stopped.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	cat, err := catalog.Discover(g.cfg.ModelsDir)
	if err != nil {
		return Summary{}, err
	}

	writer, err := g.registry.Get(g.cfg.Annotation.Format)
	if err != nil {
		return Summary{}, err
	}

	assembler, err := dataset.New(g.cfg, cat.ClassNames(), writer)
	if err != nil {
		return Summary{}, err
	}
	defer assembler.Close()

	start := assembler.StartIndex()
	remaining := assembler.Remaining()

	state := &runState{
		summary: Summary{Requested: g.cfg.NumImages, Resumed: start},
	}
	if remaining == 0 {
		g.logger.Info("nothing to generate, dataset already complete",
			"requested", g.cfg.NumImages, "resumed", start)
		return state.summary, nil
	}

	annotator := annotate.New(g.cfg.Annotation)

	workers := g.cfg.Workers
	if workers > remaining {
		workers = remaining
	}

	jobs := make(chan int)
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(jobs)
		for i := start; i < start+remaining; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		group.Go(func() error {
			return g.work(gctx, jobs, cat, annotator, assembler, state)
		})
	}

	err = group.Wait()
	summary := state.snapshot()

	if err != nil {
		return summary, err
	}
	if cerr := ctx.Err(); cerr != nil {
		return summary, cerr
	}
	if summary.Succeeded == 0 {
		return summary, fmt.Errorf("%w: %d attempted", ErrNoSuccesses, summary.Failed)
	}
	return summary, nil
}

// work consumes sample indices until the job channel drains. Each worker
// opens its own engine session, honoring the one-Execute-in-flight contract.
func (g *Generator) work(ctx context.Context, jobs <-chan int, cat *catalog.Catalog,
	annotator *annotate.Engine, assembler *dataset.Assembler, state *runState) error {

	session, err := g.factory(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: open engine session: %w", err)
	}
	defer session.Close()

	orch := placement.New(session, g.cfg, placement.WithLogger(g.logger))

	for index := range jobs {
		img, boxes, seed, err := g.generate(ctx, orch, annotator, cat, index)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			g.logger.Error("sample failed", "index", index, "seed", seed, "error", err)
			if exceeded := state.recordFailure(g.cfg.FailureTolerance); exceeded {
				return fmt.Errorf("%w: %d failures", ErrToleranceExceeded, state.snapshot().Failed)
			}
			continue
		}

		rec, err := assembler.Add(img, boxes, seed)
		if err != nil {
			return err
		}
		state.recordSuccess(rec, g.cfg.NumImages, g.progress)
		g.logger.Info("sample written",
			"name", rec.Name, "split", rec.Split, "boxes", rec.Boxes, "seed", seed)
	}
	return nil
}

// generate produces one annotated sample. Unstable placements are resampled
// with seeds derived from the sample seed, bounded by the configured attempt
// budget; any other failure is a hard failure for this sample.
func (g *Generator) generate(ctx context.Context, orch *placement.Orchestrator,
	annotator *annotate.Engine, cat *catalog.Catalog, index int) (image.Image, []annotate.Box, uint64, error) {

	sampleSeed := scene.DeriveSeed(g.cfg.Seed, index)

	var seed uint64
	for attempt := 0; attempt < g.cfg.MaxPlacementAttempts; attempt++ {
		seed = scene.DeriveSeed(sampleSeed, attempt)

		recipe, err := g.sampler.Sample(g.cfg, cat, seed)
		if err != nil {
			return nil, nil, seed, err
		}

		result, err := orch.Execute(ctx, recipe)
		if errors.Is(err, placement.ErrUnstablePlacement) {
			g.logger.Warn("unstable placement, resampling",
				"index", index, "seed", seed, "attempt", attempt+1,
				"max_attempts", g.cfg.MaxPlacementAttempts)
			continue
		}
		if err != nil {
			return nil, nil, seed, err
		}

		boxes, err := annotator.Annotate(recipe, result)
		if err != nil {
			return nil, nil, seed, err
		}
		return result.Image, boxes, seed, nil
	}
	return nil, nil, seed, fmt.Errorf("pipeline: sample %d: %w after %d attempts",
		index, placement.ErrUnstablePlacement, g.cfg.MaxPlacementAttempts)
}

// runState aggregates the summary across workers.
type runState struct {
	mu      sync.Mutex
	summary Summary
}

// recordSuccess bumps the success counters and, while still holding the
// lock, delivers the progress callback. Holding the lock across the call is
// what makes ProgressFunc's serial delivery guarantee hold with multiple
// workers.
func (s *runState) recordSuccess(rec dataset.Record, total int, fn ProgressFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Succeeded++
	if rec.BackgroundOnly {
		s.summary.BackgroundOnly++
	}
	if fn != nil {
		fn(s.summary.Resumed+s.summary.Succeeded, total, rec)
	}
}

// recordFailure bumps the failure count and reports whether the tolerance
// is now exceeded. A negative tolerance never trips.
func (s *runState) recordFailure(tolerance int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Failed++
	return tolerance >= 0 && s.summary.Failed > tolerance
}

func (s *runState) snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}
