package domain

import "math"

// ComputeProgress returns completion percentage in [0,100].
func ComputeProgress(status DocumentStatus, completedUnits []int, totalUnits int) int {
	if status.Finalized() {
		return 100
	}
	if totalUnits <= 0 {
		return 0
	}
	completed := len(NormalizeUnits(completedUnits))
	pct := int(math.Round(100 * float64(completed) / float64(totalUnits)))
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}
