package particle

import (
	"math"
	"math/rand"
)

// RandomInRange returns a uniform value in [min, max).
// When min >= max it returns min.
func RandomInRange(rng *rand.Rand, min, max float64) float64 {
	if min >= max {
		return min
	}
	return min + rng.Float64()*(max-min)
}

// RandomIntInRange returns a uniform integer in [min, max] (inclusive).
// When min >= max it returns min.
func RandomIntInRange(rng *rand.Rand, min, max int) int {
	if min >= max {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// RandomAngle returns a direction uniformly distributed over the full circle.
func RandomAngle(rng *rand.Rand) float64 {
	return rng.Float64() * 2 * math.Pi
}
