package ledger

import (
	"time"

	"kalorikollen/domain"
	"kalorikollen/entities"
	"kalorikollen/pkg/badge"

	"github.com/gofiber/fiber/v2/log"
)

// BuildDashboard derives every view the home screen shows from l. Goal
// values that do not parse count as no goal.
func BuildDashboard(l entities.Ledger, now time.Time) domain.Dashboard {
	today := Today(now)
	todays := TodaysMeals(l.Meals, today)
	calories := TodaysCalories(l.Meals, today)
	macros := TodaysMacros(l.Meals, today)
	water := TodaysWater(l.Water, today)

	goal := func(v entities.NumericText) float64 {
		f, err := GoalNumber(v)
		if err != nil {
			return 0
		}
		return f
	}

	d := domain.Dashboard{
		Date:              today,
		Calories:          calories,
		RemainingCalories: int(goal(l.Goals.Calories)) - calories,
		Macros:            macros,
		MacroSplit:        MacroCalorieSplit(macros),
		Water:             water,
		Progress: map[string]domain.GoalProgress{
			"calories": goalProgress(float64(calories), goal(l.Goals.Calories)),
			"protein":  goalProgress(macros.Protein, goal(l.Goals.Protein)),
			"carbs":    goalProgress(macros.Carbs, goal(l.Goals.Carbs)),
			"fat":      goalProgress(macros.Fat, goal(l.Goals.Fat)),
			"water":    goalProgress(float64(water), goal(l.Goals.Water)),
		},
		Weekly:      WeeklyStats(l.Meals, now),
		Streak:      badge.ComputeStreak(l.Meals, now),
		Badges:      nonNil(l.Badges),
		TodaysMeals: nonNil(todays),
	}

	if w, ok := LatestWeight(l.Weights); ok {
		d.LatestWeight = &w
	}
	reading, err := BMI(l.Height, l.Weights)
	if err != nil {
		log.Warnf("dashboard: %v", err)
	}
	d.BMI = reading
	return d
}
