package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-synthgen/pkg/config"
	"github.com/goliatone/go-synthgen/pkg/engine"
	"github.com/goliatone/go-synthgen/pkg/pipeline"
)

type generateFlags struct {
	models     string
	output     string
	numImages  int
	resolution string
	configPath string
	seed       uint64
	workers    int
	format     string
	verbose    bool
}

func newGenerateCmd() *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a labeled synthetic dataset",
		Long: `Generate samples randomized scene recipes, drives the configured engine
through physics settle and render, computes bounding-box annotations, and
assembles a train/val/test dataset. Re-running with the same output
directory resumes an interrupted run.

Flags override the corresponding fields of --config when both are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.models, "models", "", "directory of 3D models, one subdirectory per class")
	cmd.Flags().StringVar(&flags.output, "output", "", "output dataset directory")
	cmd.Flags().IntVar(&flags.numImages, "num-images", 0, "number of images to generate")
	cmd.Flags().StringVar(&flags.resolution, "resolution", "", "render resolution as WIDTHxHEIGHT, e.g. 1920x1080")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to a YAML configuration file")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "base random seed")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "worker count, one engine session each")
	cmd.Flags().StringVar(&flags.format, "format", "", "annotation format (yolo or coco)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func runGenerate(cmd *cobra.Command, flags *generateFlags) error {
	cfg, err := buildConfig(flags)
	if err != nil {
		return err
	}

	logger := newLogger(flags.verbose)
	logger.Warn("no engine adapter configured, using the synthetic engine")

	gen, err := pipeline.New(cfg,
		pipeline.WithSessionFactory(engine.SyntheticFactory()),
		pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	summary, err := gen.Run(cmd.Context())
	printSummary(cmd, summary)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d samples failed", summary.Failed)
	}
	return nil
}

func buildConfig(flags *generateFlags) (config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if flags.models != "" {
		cfg.ModelsDir = flags.models
	}
	if flags.output != "" {
		cfg.OutputDir = flags.output
	}
	if flags.numImages > 0 {
		cfg.NumImages = flags.numImages
	}
	if flags.seed != 0 {
		cfg.Seed = flags.seed
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if flags.format != "" {
		cfg.Annotation.Format = flags.format
	}
	if flags.resolution != "" {
		res, err := parseResolution(flags.resolution)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Render.Resolution = res
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func parseResolution(s string) (config.Resolution, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return config.Resolution{}, fmt.Errorf("resolution must be WIDTHxHEIGHT, got %q", s)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return config.Resolution{}, fmt.Errorf("resolution width %q: %w", parts[0], err)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return config.Resolution{}, fmt.Errorf("resolution height %q: %w", parts[1], err)
	}
	return config.Resolution{Width: width, Height: height}, nil
}

func printSummary(cmd *cobra.Command, s pipeline.Summary) {
	cmd.Printf("requested:       %d\n", s.Requested)
	if s.Resumed > 0 {
		cmd.Printf("resumed:         %d\n", s.Resumed)
	}
	cmd.Printf("succeeded:       %d\n", s.Succeeded)
	cmd.Printf("failed:          %d\n", s.Failed)
	cmd.Printf("background-only: %d\n", s.BackgroundOnly)
}
