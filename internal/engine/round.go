package engine

import "math"

// roundHalfUp rounds to the nearest integer with halves going up,
// so -2.5 becomes -2.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// round1 rounds to one decimal place, halves up.
func round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
