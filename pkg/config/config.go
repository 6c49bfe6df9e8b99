package config

import (
	"fmt"
	"time"
)

// Error describes a configuration value that failed validation. Generation
// never starts with an invalid configuration, so callers can treat any
// *Error as fatal.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func errf(field, format string, args ...any) error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Range is a closed [Min, Max] interval sampled uniformly by the
// randomization engine.
type Range struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

// Validate reports an *Error when Min exceeds Max.
func (r Range) Validate(field string) error {
	if r.Min > r.Max {
		return errf(field, "min %v exceeds max %v", r.Min, r.Max)
	}
	return nil
}

// Resolution is the rendered image size in pixels.
type Resolution struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Physics holds the rigid-body settings forwarded verbatim to the external
// engine. The settle check in pkg/placement reads VelocityEpsilon.
type Physics struct {
	Gravity         [3]float32 `yaml:"gravity"`
	SimulationSteps int        `yaml:"simulation_steps"`
	Substeps        int        `yaml:"substeps"`
	Friction        float32    `yaml:"friction"`
	Restitution     float32    `yaml:"restitution"`
	// VelocityEpsilon is the speed below which an object counts as settled.
	VelocityEpsilon float32 `yaml:"velocity_epsilon"`
	// FloorExtent is the half-size of the square floor; objects that settle
	// outside it are treated as unstable (fell off or through the backdrop).
	FloorExtent float32 `yaml:"floor_extent"`
}

// Render holds the render settings forwarded to the external engine plus the
// on-disk image encoding used by the dataset assembler.
type Render struct {
	Engine     string     `yaml:"engine"`
	Samples    int        `yaml:"samples"`
	Device     string     `yaml:"device"`
	Resolution Resolution `yaml:"resolution"`
	Format     string     `yaml:"format"`
	Quality    int        `yaml:"quality"`
}

// DropRegion bounds the horizontal area and height band objects are dropped
// from before the physics settle.
type DropRegion struct {
	X      Range `yaml:"x"`
	Y      Range `yaml:"y"`
	Height Range `yaml:"height"`
}

// Randomization configures the domain-randomization ranges. All angles are
// in degrees; the sampler converts to radians.
type Randomization struct {
	LightIntensity  Range      `yaml:"light_intensity"`
	LightColorTemp  Range      `yaml:"light_color_temp"`
	CameraDistance  Range      `yaml:"camera_distance"`
	CameraElevation Range      `yaml:"camera_elevation"`
	CameraAzimuth   Range      `yaml:"camera_azimuth"`
	FocalLength     Range      `yaml:"focal_length"`
	ObjectScale     Range      `yaml:"object_scale"`
	ObjectRotation  Range      `yaml:"object_rotation"`
	DropRegion      DropRegion `yaml:"drop_region"`
	Background      Range      `yaml:"background_brightness"`
}

// Annotation configures the 3D→2D annotation engine and the label format.
type Annotation struct {
	Format string `yaml:"format"`
	// MinVisibility is the inclusive lower bound on the visible fraction of
	// an object's projected area; boxes below it are discarded.
	MinVisibility float32 `yaml:"min_visibility"`
	// MinBoxArea is the minimum clipped box area in pixels.
	MinBoxArea int `yaml:"min_box_area"`
}

// Splits holds the train/val/test ratios. They must sum to 1.
type Splits struct {
	Train float32 `yaml:"train"`
	Val   float32 `yaml:"val"`
	Test  float32 `yaml:"test"`
}

// Duration wraps time.Duration so YAML documents can use values like "30s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errf("duration", "parse %q: %v", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is the validated configuration tree for one generation run. It is
// treated as immutable after Validate passes; the pipeline and every worker
// share a single instance read-only.
type Config struct {
	ModelsDir string `yaml:"models_dir"`
	OutputDir string `yaml:"output_dir"`

	NumImages          int    `yaml:"num_images"`
	MaxObjectsPerScene int    `yaml:"max_objects_per_scene"`
	Seed               uint64 `yaml:"seed"`
	Workers            int    `yaml:"workers"`

	// MaxEngineRetries bounds retries of a recipe after transient engine
	// failures. Deterministic engine failures are never retried.
	MaxEngineRetries int `yaml:"max_engine_retries"`
	// MaxPlacementAttempts bounds regeneration of a sample whose placement
	// never settles, each attempt using a freshly derived seed.
	MaxPlacementAttempts int `yaml:"max_placement_attempts"`
	// EngineTimeout bounds a single engine call; exceeding it counts as a
	// transient failure.
	EngineTimeout Duration `yaml:"engine_timeout"`
	// FailureTolerance is the number of hard-failed samples a run accepts
	// while still exiting successfully. Negative means unlimited (the
	// default): any number of failures is tolerated as long as at least one
	// sample succeeds.
	FailureTolerance int `yaml:"failure_tolerance"`

	Physics       Physics       `yaml:"physics"`
	Render        Render        `yaml:"render"`
	Randomization Randomization `yaml:"randomization"`
	Annotation    Annotation    `yaml:"annotation"`
	Splits        Splits        `yaml:"splits"`
}

// Default returns the baseline configuration. Callers override fields and
// must run Validate before use.
func Default() Config {
	return Config{
		NumImages:            1000,
		MaxObjectsPerScene:   3,
		Seed:                 1,
		Workers:              1,
		MaxEngineRetries:     3,
		MaxPlacementAttempts: 3,
		EngineTimeout:        Duration(60 * time.Second),
		FailureTolerance:     -1,
		Physics: Physics{
			Gravity:         [3]float32{0, 0, -9.81},
			SimulationSteps: 120,
			Substeps:        10,
			Friction:        0.5,
			Restitution:     0.3,
			VelocityEpsilon: 0.01,
			FloorExtent:     5.0,
		},
		Render: Render{
			Engine:     "CYCLES",
			Samples:    128,
			Device:     "GPU",
			Resolution: Resolution{Width: 1920, Height: 1080},
			Format:     "jpeg",
			Quality:    95,
		},
		Randomization: Randomization{
			LightIntensity:  Range{Min: 500, Max: 2000},
			LightColorTemp:  Range{Min: 3000, Max: 6500},
			CameraDistance:  Range{Min: 0.5, Max: 2.0},
			CameraElevation: Range{Min: 15, Max: 75},
			CameraAzimuth:   Range{Min: 0, Max: 360},
			FocalLength:     Range{Min: 40, Max: 60},
			ObjectScale:     Range{Min: 0.8, Max: 1.2},
			ObjectRotation:  Range{Min: -180, Max: 180},
			DropRegion: DropRegion{
				X:      Range{Min: -2, Max: 2},
				Y:      Range{Min: -2, Max: 2},
				Height: Range{Min: 0.5, Max: 2},
			},
			Background: Range{Min: 0.7, Max: 1.0},
		},
		Annotation: Annotation{
			Format:        "yolo",
			MinVisibility: 0.3,
			MinBoxArea:    100,
		},
		Splits: Splits{Train: 0.8, Val: 0.1, Test: 0.1},
	}
}

// Validate runs the single construction-time validation pass: range
// ordering, positive dimensions, enum membership, and split ratios. It
// returns the first violation as an *Error.
func (c Config) Validate() error {
	if c.ModelsDir == "" {
		return errf("models_dir", "is required")
	}
	if c.OutputDir == "" {
		return errf("output_dir", "is required")
	}
	if c.NumImages < 1 {
		return errf("num_images", "must be at least 1, got %d", c.NumImages)
	}
	if c.MaxObjectsPerScene < 1 {
		return errf("max_objects_per_scene", "must be at least 1, got %d", c.MaxObjectsPerScene)
	}
	if c.Workers < 1 {
		return errf("workers", "must be at least 1, got %d", c.Workers)
	}
	if c.MaxEngineRetries < 0 {
		return errf("max_engine_retries", "must not be negative, got %d", c.MaxEngineRetries)
	}
	if c.MaxPlacementAttempts < 1 {
		return errf("max_placement_attempts", "must be at least 1, got %d", c.MaxPlacementAttempts)
	}
	if c.EngineTimeout <= 0 {
		return errf("engine_timeout", "must be positive")
	}

	if c.Physics.SimulationSteps < 1 {
		return errf("physics.simulation_steps", "must be at least 1, got %d", c.Physics.SimulationSteps)
	}
	if c.Physics.Substeps < 1 {
		return errf("physics.substeps", "must be at least 1, got %d", c.Physics.Substeps)
	}
	if c.Physics.Friction < 0 || c.Physics.Friction > 1 {
		return errf("physics.friction", "must be in [0, 1], got %v", c.Physics.Friction)
	}
	if c.Physics.Restitution < 0 || c.Physics.Restitution > 1 {
		return errf("physics.restitution", "must be in [0, 1], got %v", c.Physics.Restitution)
	}
	if c.Physics.VelocityEpsilon <= 0 {
		return errf("physics.velocity_epsilon", "must be positive, got %v", c.Physics.VelocityEpsilon)
	}
	if c.Physics.FloorExtent <= 0 {
		return errf("physics.floor_extent", "must be positive, got %v", c.Physics.FloorExtent)
	}

	switch c.Render.Engine {
	case "CYCLES", "EEVEE":
	default:
		return errf("render.engine", "must be CYCLES or EEVEE, got %q", c.Render.Engine)
	}
	switch c.Render.Device {
	case "GPU", "CPU":
	default:
		return errf("render.device", "must be GPU or CPU, got %q", c.Render.Device)
	}
	if c.Render.Samples < 1 {
		return errf("render.samples", "must be at least 1, got %d", c.Render.Samples)
	}
	if c.Render.Resolution.Width < 1 || c.Render.Resolution.Height < 1 {
		return errf("render.resolution", "dimensions must be positive, got %dx%d",
			c.Render.Resolution.Width, c.Render.Resolution.Height)
	}
	switch c.Render.Format {
	case "jpeg", "png":
	default:
		return errf("render.format", "must be jpeg or png, got %q", c.Render.Format)
	}
	if c.Render.Quality < 0 || c.Render.Quality > 100 {
		return errf("render.quality", "must be in [0, 100], got %d", c.Render.Quality)
	}

	ranges := []struct {
		field string
		r     Range
	}{
		{"randomization.light_intensity", c.Randomization.LightIntensity},
		{"randomization.light_color_temp", c.Randomization.LightColorTemp},
		{"randomization.camera_distance", c.Randomization.CameraDistance},
		{"randomization.camera_elevation", c.Randomization.CameraElevation},
		{"randomization.camera_azimuth", c.Randomization.CameraAzimuth},
		{"randomization.focal_length", c.Randomization.FocalLength},
		{"randomization.object_scale", c.Randomization.ObjectScale},
		{"randomization.object_rotation", c.Randomization.ObjectRotation},
		{"randomization.drop_region.x", c.Randomization.DropRegion.X},
		{"randomization.drop_region.y", c.Randomization.DropRegion.Y},
		{"randomization.drop_region.height", c.Randomization.DropRegion.Height},
		{"randomization.background_brightness", c.Randomization.Background},
	}
	for _, rr := range ranges {
		if err := rr.r.Validate(rr.field); err != nil {
			return err
		}
	}
	if c.Randomization.ObjectScale.Min <= 0 {
		return errf("randomization.object_scale", "must be positive, got min %v", c.Randomization.ObjectScale.Min)
	}
	if c.Randomization.CameraDistance.Min <= 0 {
		return errf("randomization.camera_distance", "must be positive, got min %v", c.Randomization.CameraDistance.Min)
	}

	switch c.Annotation.Format {
	case "yolo", "coco":
	default:
		return errf("annotation.format", "must be yolo or coco, got %q", c.Annotation.Format)
	}
	if c.Annotation.MinVisibility < 0 || c.Annotation.MinVisibility > 1 {
		return errf("annotation.min_visibility", "must be in [0, 1], got %v", c.Annotation.MinVisibility)
	}
	if c.Annotation.MinBoxArea < 0 {
		return errf("annotation.min_box_area", "must not be negative, got %d", c.Annotation.MinBoxArea)
	}

	sum := c.Splits.Train + c.Splits.Val + c.Splits.Test
	if c.Splits.Train < 0 || c.Splits.Val < 0 || c.Splits.Test < 0 {
		return errf("splits", "ratios must not be negative")
	}
	if sum < 1-1e-6 || sum > 1+1e-6 {
		return errf("splits", "ratios must sum to 1.0, got %v", sum)
	}

	return nil
}
