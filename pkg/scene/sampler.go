package scene

import (
	"github.com/goliatone/go-synthgen/pkg/catalog"
	"github.com/goliatone/go-synthgen/pkg/config"
)

// Sampler draws a fully specified Recipe from a configuration and a seed.
// Implementations must be pure: no hidden state, identical inputs producing
// identical recipes, with all draws pulled from one seeded generator in a
// fixed order.
type Sampler interface {
	Sample(cfg config.Config, cat *catalog.Catalog, seed uint64) (Recipe, error)
}

// DeriveSeed deterministically derives a fresh seed from an original seed
// and a retry attempt index, using a splitmix64-style avalanche. Unstable
// placements are regenerated with derived seeds so reruns of a batch remain
// reproducible; attempt 0 returns the seed unchanged.
func DeriveSeed(seed uint64, attempt int) uint64 {
	if attempt == 0 {
		return seed
	}
	z := seed + uint64(attempt)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
