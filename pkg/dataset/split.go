package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/goliatone/go-synthgen/pkg/config"
)

// Split names a dataset partition.
type Split string

const (
	Train Split = "train"
	Val   Split = "val"
	Test  Split = "test"
)

// Splits enumerates the partitions in their canonical order.
func SplitNames() []Split {
	return []Split{Train, Val, Test}
}

// Plan builds the per-sample split assignment for a run. Counts are derived
// from the ratios by largest-remainder rounding so the realized sizes match
// the configured ratios exactly up to ±1, then the assignment order is
// shuffled with a generator seeded from the run seed. The same (total,
// ratios, seed) always yields the same plan, which is what makes resumed
// runs agree with the original on every sample's split.
func Plan(total int, splits config.Splits, seed uint64) []Split {
	if total <= 0 {
		return nil
	}

	// Ratios are stored as float32 and carry decimal noise (0.3 widens to
	// 0.30000001...), which would inflate remainders and steal tie-breaks
	// from earlier splits. Snapping to six decimals recovers the configured
	// values; validation already bounds their sum to 1 within 1e-6.
	ratios := [3]float64{
		math.Round(float64(splits.Train)*1e6) / 1e6,
		math.Round(float64(splits.Val)*1e6) / 1e6,
		math.Round(float64(splits.Test)*1e6) / 1e6,
	}
	names := SplitNames()

	var counts [3]int
	var fracs [3]float64
	assigned := 0
	for i, ratio := range ratios {
		exact := ratio * float64(total)
		counts[i] = int(math.Floor(exact))
		fracs[i] = exact - float64(counts[i])
		assigned += counts[i]
	}
	for assigned < total {
		best := 0
		for i := 1; i < 3; i++ {
			if fracs[i] > fracs[best] {
				best = i
			}
		}
		counts[best]++
		fracs[best] = -1
		assigned++
	}

	plan := make([]Split, 0, total)
	for i, n := range counts {
		for j := 0; j < n; j++ {
			plan = append(plan, names[i])
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	rng.Shuffle(len(plan), func(i, j int) {
		plan[i], plan[j] = plan[j], plan[i]
	})
	return plan
}
