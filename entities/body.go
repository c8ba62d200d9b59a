package entities

import "time"

// WeightSample is one body-weight reading in kilograms.
type WeightSample struct {
	Weight  float64   `json:"weight"`
	Date    time.Time `json:"date"`
	DateStr string    `json:"dateStr"`
}

func (w WeightSample) LocalDate() string {
	return localDate(w.DateStr, w.Date)
}

// WaterSample is one drink, in milliliters.
type WaterSample struct {
	Amount  int       `json:"amount"`
	Date    time.Time `json:"date"`
	DateStr string    `json:"dateStr"`
	TimeStr string    `json:"timeStr,omitempty"`
}

func (w WaterSample) LocalDate() string {
	return localDate(w.DateStr, w.Date)
}
