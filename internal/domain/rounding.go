package domain

import "math"

// Tenths converts a distance to integer tenths, rounding half away from zero.
func Tenths(v float64) int64 {
	return int64(math.Round(v * 10))
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return float64(Tenths(v)) / 10
}

// FromTenths converts integer tenths back to a distance.
func FromTenths(t int64) float64 {
	return float64(t) / 10
}
