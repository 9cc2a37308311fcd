package player

import (
	"boards/searcher"
	"math"

	"golang.org/x/exp/rand"
)

// adjustTemperature turns root visit counts into move probabilities
// proportional to visits^(1/temperature).
func adjustTemperature(children []searcher.ChildStats, temperature float64) []float64 {
	exponent := 1.0 / temperature
	most := 0
	for _, child := range children {
		most = max(most, child.Visits)
	}
	sum := 0.0
	policy := make([]float64, len(children))
	for i, child := range children {
		if most == 0 {
			break
		}
		// Scaled by the largest count so low temperatures cannot overflow
		prob := math.Pow(float64(child.Visits)/float64(most), exponent)
		sum += prob
		policy[i] = prob
	}
	if sum == 0 {
		for i := range policy {
			policy[i] = 1.0 / float64(len(policy))
		}
		return policy
	}
	// Normalize
	for i := range policy {
		policy[i] /= sum
	}
	return policy
}

// sample draws an index from policy.
func sample(policy []float64, rng *rand.Rand) int {
	sampled := rng.Float64()
	cumulative := 0.0
	for i, prob := range policy {
		cumulative += prob
		if sampled < cumulative {
			return i
		}
	}
	return len(policy) - 1 // Rounding left a sliver past the last bucket
}
