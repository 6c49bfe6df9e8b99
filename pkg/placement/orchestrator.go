// Package placement drives the external engine through one recipe: scene
// description in, settled poses and a rendered image out. It owns the retry
// policy for transient engine failures and the settle check that rejects
// placements whose objects never came to rest.
package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goliatone/go-synthgen/pkg/config"
	"github.com/goliatone/go-synthgen/pkg/engine"
	"github.com/goliatone/go-synthgen/pkg/scene"
)

// ErrUnstablePlacement reports a physics settle that never converged: an
// object left the floor bounds or still carries velocity after the
// configured step count. The pipeline regenerates the sample with a derived
// seed rather than annotating a garbage scene.
var ErrUnstablePlacement = errors.New("placement: objects failed to settle")

// Option customises the orchestrator.
type Option func(*Orchestrator)

// WithLogger injects a structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator submits recipes to one engine session. Execute is idempotent
// per recipe — the recipe fully determines the attempt — so transient
// failures retry the identical request. Not safe for concurrent use against
// a single session; run one orchestrator per worker.
type Orchestrator struct {
	session engine.Session
	cfg     config.Config
	logger  *slog.Logger
}

// New builds an orchestrator bound to a session and a validated config.
func New(session engine.Session, cfg config.Config, options ...Option) *Orchestrator {
	o := &Orchestrator{
		session: session,
		cfg:     cfg,
		logger:  slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// BuildRequest translates a recipe into the engine's scene-description
// format, attaching the run's physics and render settings.
func BuildRequest(cfg config.Config, recipe scene.Recipe) engine.SceneRequest {
	objects := make([]engine.ObjectSpec, len(recipe.Objects))
	for i, obj := range recipe.Objects {
		objects[i] = engine.ObjectSpec{
			Asset:    obj.Asset,
			Position: obj.Drop.Position,
			Rotation: obj.Drop.Rotation,
			Scale:    obj.Drop.Scale,
		}
	}

	lights := make([]engine.LightSpec, len(recipe.Lights))
	for i, l := range recipe.Lights {
		lights[i] = engine.LightSpec{
			Kind:      string(l.Kind),
			Position:  l.Position,
			Intensity: l.Intensity,
			Color:     l.Color,
		}
	}

	return engine.SceneRequest{
		Objects: objects,
		Camera: engine.CameraSpec{
			Position:    recipe.Camera.Position,
			Target:      recipe.Camera.Target,
			Up:          recipe.Camera.Up,
			FocalLength: recipe.Camera.FocalLength,
		},
		Lights:     lights,
		Background: recipe.Background,
		Physics: engine.PhysicsSpec{
			Gravity:     cfg.Physics.Gravity,
			Steps:       cfg.Physics.SimulationSteps,
			Substeps:    cfg.Physics.Substeps,
			Friction:    cfg.Physics.Friction,
			Restitution: cfg.Physics.Restitution,
		},
		Render: engine.RenderSpec{
			Engine:  cfg.Render.Engine,
			Samples: cfg.Render.Samples,
			Width:   cfg.Render.Resolution.Width,
			Height:  cfg.Render.Resolution.Height,
			Device:  cfg.Render.Device,
		},
	}
}

// Execute runs the clear/instantiate/simulate/render sequence for one
// recipe. Transient engine failures (including call timeouts) retry the
// same request up to the configured bound; deterministic failures return
// immediately. The session is reset to an empty scene on every exit path,
// including cancellation, so no state leaks into the next recipe.
func (o *Orchestrator) Execute(ctx context.Context, recipe scene.Recipe) (result engine.PlacementResult, err error) {
	req := BuildRequest(o.cfg, recipe)

	defer func() {
		// Reset must run even when the batch was canceled mid-render.
		resetCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(o.cfg.EngineTimeout))
		defer cancel()
		if rerr := o.session.Reset(resetCtx); rerr != nil && err == nil {
			err = fmt.Errorf("placement: reset session: %w", rerr)
		}
	}()

	for attempt := 0; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return engine.PlacementResult{}, cerr
		}

		callCtx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.EngineTimeout))
		result, err = o.session.Execute(callCtx, req)
		cancel()

		if err == nil {
			if !o.settled(result) {
				return engine.PlacementResult{}, fmt.Errorf("%w (seed %d)", ErrUnstablePlacement, recipe.Seed)
			}
			return result, nil
		}

		if engine.IsTransient(err) && attempt < o.cfg.MaxEngineRetries && ctx.Err() == nil {
			o.logger.Warn("transient engine failure, retrying recipe",
				"seed", recipe.Seed,
				"attempt", attempt+1,
				"max_retries", o.cfg.MaxEngineRetries,
				"error", err)
			continue
		}

		return engine.PlacementResult{}, fmt.Errorf("placement: execute recipe (seed %d): %w", recipe.Seed, err)
	}
}

// settled checks every pose against the floor bounds and the velocity
// epsilon. Objects that fell off the backdrop, fell through geometry, or are
// still moving after the configured step count would produce garbage
// annotations.
func (o *Orchestrator) settled(result engine.PlacementResult) bool {
	extent := o.cfg.Physics.FloorExtent
	eps := o.cfg.Physics.VelocityEpsilon
	for _, pose := range result.Poses {
		p := pose.Position
		if p.X < -extent || p.X > extent || p.Y < -extent || p.Y > extent {
			return false
		}
		// Below the floor plane means it fell through geometry.
		if p.Z < -eps {
			return false
		}
		if pose.Velocity.Length() > eps {
			return false
		}
	}
	return true
}
