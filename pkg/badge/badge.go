package badge

import (
	"math"
	"time"

	"kalorikollen/entities"
)

const (
	FirstMeal  = "first_meal"
	WeekStreak = "week_streak"
	FiftyMeals = "fifty_meals"
	GoalToday  = "goal_today"

	// legacyFiftyMeals is how older exports spell FiftyMeals.
	legacyFiftyMeals = "50_meals"

	weekStreakDays     = 7
	fiftyMealsCount    = 50
	goalTodayTolerance = 0.05
)

type definition struct {
	name  string
	emoji string
	daily bool
}

var catalogue = map[string]definition{
	FirstMeal:  {name: "Första steget", emoji: "🎯"},
	WeekStreak: {name: "7 dagar i rad!", emoji: "🔥"},
	FiftyMeals: {name: "50 måltider", emoji: "⭐"},
	GoalToday:  {name: "Perfekt dag!", emoji: "🎉", daily: true},
}

// order in which newly due badges are reported
var evaluationOrder = []string{FirstMeal, WeekStreak, FiftyMeals, GoalToday}

// State is the ledger snapshot badges are judged against.
type State struct {
	MealCount     int
	Streak        int
	TodayCalories int
	CalorieGoal   entities.NumericText
	Awarded       []entities.Badge
	Now           time.Time
}

// Evaluate returns the badges that are due for s but not yet in s.Awarded.
// It never fails; a calorie goal that is missing, non-numeric or not
// positive simply means the daily goal is not met.
func Evaluate(s State) []entities.Badge {
	held := make(map[string]struct{}, len(s.Awarded))
	for _, b := range s.Awarded {
		held[b.Key()] = struct{}{}
	}
	today := s.Now.Format(entities.DateLayout)

	var due []entities.Badge
	for _, id := range evaluationOrder {
		if !qualifies(id, s) {
			continue
		}
		b := newBadge(id, s.Now, today)
		if _, ok := held[b.Key()]; ok {
			continue
		}
		due = append(due, b)
	}
	return due
}

func qualifies(id string, s State) bool {
	switch id {
	case FirstMeal:
		return s.MealCount >= 1
	case WeekStreak:
		return s.Streak >= weekStreakDays
	case FiftyMeals:
		return s.MealCount >= fiftyMealsCount
	case GoalToday:
		return goalMet(s.TodayCalories, s.CalorieGoal)
	}
	return false
}

func goalMet(calories int, goal entities.NumericText) bool {
	g, ok := goal.Float()
	if !ok || g <= 0 {
		return false
	}
	return math.Abs(float64(calories)-g) <= g*goalTodayTolerance
}

func newBadge(id string, at time.Time, today string) entities.Badge {
	def := catalogue[id]
	b := entities.Badge{
		ID:    id,
		Name:  def.name,
		Emoji: def.emoji,
		Date:  at,
	}
	if def.daily {
		b.Day = today
	}
	return b
}

// Merge appends due badges to awarded, skipping any key already present.
func Merge(awarded, due []entities.Badge) []entities.Badge {
	seen := make(map[string]struct{}, len(awarded)+len(due))
	out := make([]entities.Badge, 0, len(awarded)+len(due))
	for _, b := range awarded {
		if _, ok := seen[b.Key()]; ok {
			continue
		}
		seen[b.Key()] = struct{}{}
		out = append(out, b)
	}
	for _, b := range due {
		if _, ok := seen[b.Key()]; ok {
			continue
		}
		seen[b.Key()] = struct{}{}
		out = append(out, b)
	}
	return out
}

// Normalize rewrites badges from older exports onto current ids and fills in
// missing names. A goal_today badge without a day gets the day it was
// awarded on.
func Normalize(badges []entities.Badge) []entities.Badge {
	out := make([]entities.Badge, 0, len(badges))
	for _, b := range badges {
		if b.ID == legacyFiftyMeals {
			b.ID = FiftyMeals
		}
		if def, ok := catalogue[b.ID]; ok {
			if b.Name == "" {
				b.Name = def.name
			}
			if b.Emoji == "" {
				b.Emoji = def.emoji
			}
			if def.daily && b.Day == "" && !b.Date.IsZero() {
				b.Day = b.Date.Format(entities.DateLayout)
			}
		}
		out = append(out, b)
	}
	return Merge(nil, out)
}
