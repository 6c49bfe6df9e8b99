// Package synthgen generates labeled object-detection datasets by sampling
// randomized 3D scene recipes, driving an external physics/render engine,
// and projecting the settled geometry into normalized bounding boxes. The
// root package re-exports the common types and entry points; the pkg/
// packages hold the pipeline stages for callers that wire their own.
package synthgen

import (
	"context"

	"github.com/goliatone/go-synthgen/pkg/config"
	"github.com/goliatone/go-synthgen/pkg/dataset"
	"github.com/goliatone/go-synthgen/pkg/engine"
	"github.com/goliatone/go-synthgen/pkg/pipeline"
	"github.com/goliatone/go-synthgen/pkg/scene"
)

// Config is the validated configuration tree for one generation run.
type Config = config.Config

// Recipe is one fully specified scene: objects, camera, lights, background.
type Recipe = scene.Recipe

// Session is one live engine instance; implementations adapt a concrete
// engine to the request/response contract in pkg/engine.
type Session = engine.Session

// SessionFactory opens engine sessions, one per pipeline worker.
type SessionFactory = engine.SessionFactory

// Summary is the outcome of one generation run.
type Summary = pipeline.Summary

// Record is one dataset manifest entry.
type Record = dataset.Record

// Option customises the generator.
type Option = pipeline.Option

// WithSessionFactory injects the engine session factory.
var WithSessionFactory = pipeline.WithSessionFactory

// WithLogger injects a structured logger.
var WithLogger = pipeline.WithLogger

// WithProgress registers a per-sample progress callback.
var WithProgress = pipeline.WithProgress

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// NewGenerator exposes the pipeline constructor from the top-level module.
func NewGenerator(cfg Config, options ...Option) (*pipeline.Generator, error) {
	return pipeline.New(cfg, options...)
}

// Generate runs the full pipeline for a configuration against the engine
// opened by factory. It is the simplest entry point: discovery, sampling,
// placement, annotation, and assembly with the built-in defaults.
func Generate(ctx context.Context, cfg Config, factory SessionFactory, options ...Option) (Summary, error) {
	opts := append([]Option{WithSessionFactory(factory)}, options...)
	gen, err := pipeline.New(cfg, opts...)
	if err != nil {
		return Summary{}, err
	}
	return gen.Run(ctx)
}
