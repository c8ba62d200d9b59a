package ledger

import (
	"math"

	"kalorikollen/domain"
)

// Progress is value as a percentage of max, capped at 100.
func Progress(value, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return math.Min(value/max*100, 100)
}

// ProgressRing computes the stroke geometry for a circular progress
// indicator of the given pixel size.
func ProgressRing(percent, size, strokeWidth float64) domain.Ring {
	radius := (size - strokeWidth) / 2
	circumference := radius * 2 * math.Pi
	return domain.Ring{
		Radius:        radius,
		Circumference: circumference,
		Offset:        circumference - percent/100*circumference,
	}
}

func goalProgress(consumed, goal float64) domain.GoalProgress {
	pct := Progress(consumed, goal)
	return domain.GoalProgress{
		Consumed: consumed,
		Goal:     goal,
		Percent:  math.Round(pct*100) / 100,
		Ring:     ProgressRing(pct, 120, 10),
	}
}
