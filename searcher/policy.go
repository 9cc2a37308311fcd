package searcher

import "math"

// ucb1 = score/(visits+eps) + c*sqrt(ln(N)/(visits+eps)). A parent that has
// not been visited yet counts as one visit so the log term stays defined.
func ucb1(score, visits float64, parentVisits int, c float64) float64 {
	n := float64(max(parentVisits, 1))
	return score/(visits+Epsilon) + c*math.Sqrt(math.Log(n)/(visits+Epsilon))
}

// argmax returns the index of the largest value. Ties go to the lowest index.
func argmax(n int, value func(i int) float64) int {
	best := 0
	bestValue := math.Inf(-1)
	for i := 0; i < n; i++ {
		if v := value(i); v > bestValue {
			bestValue = v
			best = i
		}
	}
	return best
}
