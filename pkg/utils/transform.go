package utils

import (
	"math"
	"strings"
)

// TrimBase normalizes a base URL so paths can be appended with a leading slash.
func TrimBase(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/")
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
