package badge

import (
	"testing"
	"time"

	"kalorikollen/entities"
)

func ids(badges []entities.Badge) []string {
	out := make([]string, 0, len(badges))
	for _, b := range badges {
		out = append(out, b.ID)
	}
	return out
}

func contains(badges []entities.Badge, id string) bool {
	for _, b := range badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

func TestFirstMealAwardedOnce(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	if due := Evaluate(State{MealCount: 0, Now: now}); len(due) != 0 {
		t.Fatalf("Evaluate(empty) = %v, want none", ids(due))
	}

	due := Evaluate(State{MealCount: 1, Now: now})
	if !contains(due, FirstMeal) {
		t.Fatalf("Evaluate(1 meal) = %v, want first_meal", ids(due))
	}
	awarded := Merge(nil, due)

	for n := 2; n < 10; n++ {
		due := Evaluate(State{MealCount: n, Awarded: awarded, Now: now.Add(time.Duration(n) * time.Hour)})
		if contains(due, FirstMeal) {
			t.Fatalf("first_meal awarded again at %d meals", n)
		}
		awarded = Merge(awarded, due)
	}
}

func TestThresholdBadges(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	due := Evaluate(State{MealCount: 50, Streak: 7, Now: now})
	for _, id := range []string{FirstMeal, WeekStreak, FiftyMeals} {
		if !contains(due, id) {
			t.Errorf("Evaluate = %v, missing %s", ids(due), id)
		}
	}
	due = Evaluate(State{MealCount: 49, Streak: 6, Now: now})
	if contains(due, WeekStreak) || contains(due, FiftyMeals) {
		t.Errorf("Evaluate below thresholds = %v", ids(due))
	}
}

func TestGoalTodayWithinTolerance(t *testing.T) {
	now := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)
	tests := []struct {
		calories int
		goal     entities.NumericText
		want     bool
	}{
		{2000, "2000", true},
		{1900, "2000", true},
		{2100, "2000", true},
		{1899, "2000", false},
		{2101, "2000", false},
		{2000, "", false},
		{2000, "mycket", false},
		{0, "0", false},
	}
	for _, tt := range tests {
		due := Evaluate(State{MealCount: 1, TodayCalories: tt.calories, CalorieGoal: tt.goal, Now: now})
		if got := contains(due, GoalToday); got != tt.want {
			t.Errorf("goal_today(%d, %q) = %v, want %v", tt.calories, tt.goal, got, tt.want)
		}
	}
}

func TestGoalTodayOncePerDay(t *testing.T) {
	day1 := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)
	state := State{MealCount: 3, TodayCalories: 2000, CalorieGoal: "2000", Now: day1}

	due := Evaluate(state)
	if !contains(due, GoalToday) {
		t.Fatalf("Evaluate = %v, want goal_today", ids(due))
	}
	state.Awarded = Merge(nil, due)

	state.Now = day1.Add(time.Hour)
	if contains(Evaluate(state), GoalToday) {
		t.Fatal("goal_today awarded twice on the same day")
	}

	state.Now = day1.AddDate(0, 0, 1)
	due = Evaluate(state)
	if !contains(due, GoalToday) {
		t.Fatalf("Evaluate next day = %v, want goal_today", ids(due))
	}
	if due[len(due)-1].Day != "2024-05-11" {
		t.Errorf("Day = %q, want %q", due[len(due)-1].Day, "2024-05-11")
	}
}

func TestNormalizeLegacyIDs(t *testing.T) {
	at := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)
	got := Normalize([]entities.Badge{
		{ID: "50_meals", Date: at},
		{ID: FiftyMeals, Date: at},
		{ID: GoalToday, Date: at},
	})
	if len(got) != 2 {
		t.Fatalf("Normalize = %v, want 2 badges", ids(got))
	}
	if got[0].ID != FiftyMeals || got[0].Name != "50 måltider" {
		t.Errorf("got[0] = %+v, want fifty_meals", got[0])
	}
	if got[1].Day != "2024-05-10" {
		t.Errorf("goal_today Day = %q, want %q", got[1].Day, "2024-05-10")
	}
}
