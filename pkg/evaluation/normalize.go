package evaluation

import "math"

// NormalizeScore maps a match score to 0-100. Values above 1 are already
// percentages; anything else is treated as a fraction.
func NormalizeScore(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v > 1 {
		return clamp(int(math.Round(v)))
	}
	return int(math.Round(v * 100))
}
