package ledger

import (
	"math"
	"time"

	"kalorikollen/domain"
	"kalorikollen/entities"
)

const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// TodaysMeals returns the meals logged on the local day today (YYYY-MM-DD),
// in log order.
func TodaysMeals(meals []entities.MealEntry, today string) []entities.MealEntry {
	return Log[entities.MealEntry](meals).Filter(func(m entities.MealEntry) bool {
		return m.LocalDate() == today
	})
}

func TodaysCalories(meals []entities.MealEntry, today string) int {
	total := 0
	for _, m := range TodaysMeals(meals, today) {
		total += m.Calories
	}
	return total
}

func TodaysMacros(meals []entities.MealEntry, today string) domain.Macros {
	var out domain.Macros
	for _, m := range TodaysMeals(meals, today) {
		out.Protein += m.Protein
		out.Carbs += m.Carbs
		out.Fat += m.Fat
	}
	return out
}

func TodaysWater(water []entities.WaterSample, today string) int {
	total := 0
	for _, w := range water {
		if w.LocalDate() == today {
			total += w.Amount
		}
	}
	return total
}

// WeeklyStats looks at meals captured in the seven days before now. Unlike
// the daily views this is a rolling window over instants, while the average
// still divides by distinct local days.
func WeeklyStats(meals []entities.MealEntry, now time.Time) domain.WeeklyStats {
	since := now.AddDate(0, 0, -7)

	days := make(map[string]struct{})
	var stats domain.WeeklyStats
	for _, m := range meals {
		if m.Date.Before(since) {
			continue
		}
		stats.TotalCalories += m.Calories
		stats.MealCount++
		days[m.LocalDate()] = struct{}{}
	}

	active := len(days)
	if active == 0 {
		active = 1
	}
	stats.AverageCaloriesPerActiveDay = int(math.Round(float64(stats.TotalCalories) / float64(active)))
	return stats
}

func MacroCalorieSplit(m domain.Macros) domain.MacroSplit {
	return domain.MacroSplit{
		ProteinKcal: m.Protein * kcalPerGramProtein,
		CarbsKcal:   m.Carbs * kcalPerGramCarbs,
		FatKcal:     m.Fat * kcalPerGramFat,
	}
}

// LatestWeight returns the newest sample's weight. Samples are newest-first.
func LatestWeight(weights []entities.WeightSample) (float64, bool) {
	if len(weights) == 0 {
		return 0, false
	}
	return weights[0].Weight, true
}

// Today formats now as a local calendar day in now's location.
func Today(now time.Time) string {
	return now.Format(entities.DateLayout)
}
