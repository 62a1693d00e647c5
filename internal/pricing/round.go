package pricing

import "math"

// Round2 rounds a monetary value half-up at the second decimal place.
// All amounts returned by the calculators pass through here so that every
// API response carries at most two decimals in the caller's currency unit.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// RoundPercent rounds a percentage half-up to the nearest integer.
func RoundPercent(v float64) int {
	return int(math.Floor(v + 0.5))
}
