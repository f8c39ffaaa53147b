package packing

import (
	"math"
	"strconv"
	"strings"
)

// ParseQuantity coerces user input into a non-negative integer. Empty,
// unparsable and negative input yields 0; fractions are truncated. Input
// beyond MaxQuantity saturates just above it, so validation still refuses it.
func ParseQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > MaxQuantity {
		return MaxQuantity + 1
	}
	return int(f)
}
