package badge

import (
	"time"

	"kalorikollen/entities"
)

// ComputeStreak counts consecutive local days, ending on now's day, that
// have at least one meal. A day without a meal today means no streak.
func ComputeStreak(meals []entities.MealEntry, now time.Time) int {
	if len(meals) == 0 {
		return 0
	}
	days := make(map[string]struct{}, len(meals))
	for _, m := range meals {
		days[m.LocalDate()] = struct{}{}
	}

	// anchor at noon so stepping a day never lands on a DST gap
	day := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
	streak := 0
	for {
		if _, ok := days[day.Format(entities.DateLayout)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}
