package entities

// Ledger is everything recorded for one device.
type Ledger struct {
	Meals     []MealEntry
	Weights   []WeightSample
	Water     []WaterSample
	Favorites []MealEntry
	Goals     Goals
	Height    NumericText
	Streak    int
	Badges    []Badge
}

func NewLedger() Ledger {
	return Ledger{Goals: DefaultGoals()}
}
