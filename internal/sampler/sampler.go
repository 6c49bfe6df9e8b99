// Package sampler implements the domain-randomization sampling engine. All
// draws come from a single PCG generator advanced in the fixed order
// documented on Sample, so a (config, seed) pair always produces the same
// recipe across runs and across machines.
package sampler

import (
	"math/rand/v2"

	"github.com/chewxy/math32"
	"goki.dev/mat32/v2"

	"github.com/goliatone/go-synthgen/pkg/catalog"
	"github.com/goliatone/go-synthgen/pkg/config"
	"github.com/goliatone/go-synthgen/pkg/scene"
)

// cameraTarget is the fixed point the sampled camera orbits and looks at,
// slightly above the floor so settled objects sit in frame.
var cameraTarget = mat32.V3(0, 0, 0.5)

// Sampler draws scene recipes. The zero value is ready to use.
type Sampler struct{}

// New returns a Sampler.
func New() *Sampler {
	return &Sampler{}
}

// Sample draws a fully specified recipe. Draw order, which is part of the
// reproducibility contract:
//
//  1. object count, uniform over [1, max_objects_per_scene]
//  2. per object: class, asset, scale, rotation x/y/z, drop x, drop y,
//     drop height
//  3. camera: distance, azimuth, elevation, focal length
//  4. light count over [2, 4], then per light: kind, intensity, color
//     temperature, azimuth, elevation, distance (point/area only)
//  5. background: brightness, then r/g/b tint
//
// Inserting a draw anywhere but the end of this sequence breaks replay of
// previously recorded seeds.
func (s *Sampler) Sample(cfg config.Config, cat *catalog.Catalog, seed uint64) (scene.Recipe, error) {
	if cfg.MaxObjectsPerScene < 1 {
		return scene.Recipe{}, &config.Error{
			Field:  "max_objects_per_scene",
			Reason: "must be at least 1",
		}
	}
	if cat == nil || cat.Len() == 0 {
		return scene.Recipe{}, catalog.ErrNoClasses
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	rnd := cfg.Randomization

	count := 1 + rng.IntN(cfg.MaxObjectsPerScene)
	objects := make([]scene.ObjectInstance, 0, count)
	for i := 0; i < count; i++ {
		cls, ok := cat.Class(rng.IntN(cat.Len()))
		if !ok || len(cls.Assets) == 0 {
			return scene.Recipe{}, &catalog.Error{Class: cls.Name, Reason: "has no assets to sample"}
		}
		asset := cls.Assets[rng.IntN(len(cls.Assets))]

		scale := uniform(rng, rnd.ObjectScale)
		rot := mat32.V3(
			mat32.DegToRad(uniform(rng, rnd.ObjectRotation)),
			mat32.DegToRad(uniform(rng, rnd.ObjectRotation)),
			mat32.DegToRad(uniform(rng, rnd.ObjectRotation)),
		)
		pos := mat32.V3(
			uniform(rng, rnd.DropRegion.X),
			uniform(rng, rnd.DropRegion.Y),
			uniform(rng, rnd.DropRegion.Height),
		)

		objects = append(objects, scene.ObjectInstance{
			ClassID: cls.ID,
			Class:   cls.Name,
			Asset:   asset,
			Drop: scene.Transform{
				Position: pos,
				Rotation: rot,
				Scale:    scale,
			},
		})
	}

	camera := sampleCamera(rng, rnd)
	lights := sampleLights(rng, rnd)

	brightness := uniform(rng, rnd.Background)
	background := [3]float32{
		brightness * uniformRange(rng, 0.95, 1.0),
		brightness * uniformRange(rng, 0.95, 1.0),
		brightness * uniformRange(rng, 0.95, 1.0),
	}

	return scene.Recipe{
		Seed:       seed,
		Objects:    objects,
		Camera:     camera,
		Lights:     lights,
		Background: background,
	}, nil
}

func sampleCamera(rng *rand.Rand, rnd config.Randomization) scene.Camera {
	distance := uniform(rng, rnd.CameraDistance)
	azimuth := mat32.DegToRad(uniform(rng, rnd.CameraAzimuth))
	elevation := mat32.DegToRad(uniform(rng, rnd.CameraElevation))
	focal := uniform(rng, rnd.FocalLength)

	pos := mat32.V3(
		cameraTarget.X+distance*math32.Cos(azimuth)*math32.Cos(elevation),
		cameraTarget.Y+distance*math32.Sin(azimuth)*math32.Cos(elevation),
		cameraTarget.Z+distance*math32.Sin(elevation),
	)

	return scene.Camera{
		Position:    pos,
		Target:      cameraTarget,
		Up:          mat32.V3(0, 0, 1),
		FocalLength: focal,
	}
}

var lightKinds = []scene.LightKind{scene.LightPoint, scene.LightSun, scene.LightArea}

func sampleLights(rng *rand.Rand, rnd config.Randomization) []scene.Light {
	count := 2 + rng.IntN(3)
	lights := make([]scene.Light, 0, count)
	for i := 0; i < count; i++ {
		kind := lightKinds[rng.IntN(len(lightKinds))]
		intensity := uniform(rng, rnd.LightIntensity)
		temp := uniform(rng, rnd.LightColorTemp)
		azimuth := uniformRange(rng, 0, 2*math32.Pi)
		elevation := uniformRange(rng, math32.Pi/6, math32.Pi/3)

		// Sun lights sit far out; point and area lights stay near the scene.
		distance := float32(10)
		if kind != scene.LightSun {
			distance = uniformRange(rng, 2, 5)
		}

		lights = append(lights, scene.Light{
			Kind: kind,
			Position: mat32.V3(
				distance*math32.Cos(azimuth)*math32.Cos(elevation),
				distance*math32.Sin(azimuth)*math32.Cos(elevation),
				distance*math32.Sin(elevation),
			),
			Intensity: intensity,
			ColorTemp: temp,
			Color:     kelvinToRGB(temp),
		})
	}
	return lights
}

// kelvinToRGB approximates a blackbody color for the 3000K–6500K band the
// configuration allows.
func kelvinToRGB(temp float32) [3]float32 {
	clamp01 := func(v float32) float32 {
		return math32.Min(1, math32.Max(0, v))
	}
	if temp <= 6500 {
		g := 0.65 + 0.35*clamp01((temp-3000)/3500)
		b := 0.3 + 0.7*clamp01((temp-3000)/3500)
		return [3]float32{1, g, b}
	}
	r := clamp01(1 - 0.3*(temp-6500)/3500)
	return [3]float32{r, 1, 1}
}

func uniform(rng *rand.Rand, r config.Range) float32 {
	return uniformRange(rng, r.Min, r.Max)
}

func uniformRange(rng *rand.Rand, min, max float32) float32 {
	if min == max {
		return min
	}
	return min + float32(rng.Float64())*(max-min)
}
