package entities

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// MealEntry is one logged meal. Entries are never edited after creation;
// they are either kept or removed as a whole.
type MealEntry struct {
	ID         string    `json:"id,omitempty"`
	Dish       string    `json:"dish"`
	Items      []string  `json:"items"`
	Calories   int       `json:"calories" validate:"gte=0"`
	Protein    float64   `json:"protein" validate:"gte=0"`
	Carbs      float64   `json:"carbs" validate:"gte=0"`
	Fat        float64   `json:"fat" validate:"gte=0"`
	Portion    string    `json:"portion"`
	Image      string    `json:"image,omitempty"`
	Date       time.Time `json:"date"`
	DateStr    string    `json:"dateStr"`
	TimeStr    string    `json:"timeStr,omitempty"`
	Confidence string    `json:"confidence,omitempty"`
}

// UnmarshalJSON accepts calories as any JSON number, or a numeric string,
// and rounds it to whole kilocalories.
func (m *MealEntry) UnmarshalJSON(data []byte) error {
	type plain MealEntry
	aux := struct {
		*plain
		Calories json.Number `json:"calories"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.Calories = 0
	if aux.Calories == "" {
		return nil
	}
	kcal, err := aux.Calories.Float64()
	if err != nil {
		return fmt.Errorf("calories: %w", err)
	}
	m.Calories = int(math.Round(kcal))
	return nil
}

// LocalDate returns the calendar day the meal was logged on, as seen by the
// device that logged it.
func (m MealEntry) LocalDate() string {
	return localDate(m.DateStr, m.Date)
}

// Stamp sets the capture instant together with the local day and clock
// strings derived from it. The location of at decides the calendar day.
func (m *MealEntry) Stamp(at time.Time) {
	m.Date = at
	m.DateStr = at.Format(DateLayout)
	m.TimeStr = at.Format(TimeLayout)
}

func localDate(dateStr string, at time.Time) string {
	if dateStr != "" {
		return dateStr
	}
	if at.IsZero() {
		return ""
	}
	return at.Local().Format(DateLayout)
}
