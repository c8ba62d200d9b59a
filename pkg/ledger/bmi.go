package ledger

import (
	"fmt"
	"math"

	"kalorikollen/domain"
	"kalorikollen/entities"
)

var bmiLabels = map[string]string{
	domain.BMIUnderweight: "Undervikt",
	domain.BMINormal:      "Normalvikt",
	domain.BMIOverweight:  "Övervikt",
	domain.BMIObese:       "Fetma",
}

// CalculateBMI expects height in centimeters and weight in kilograms and
// rounds to one decimal.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, fmt.Errorf("%w: height and weight must be positive", domain.ErrInvalidInput)
	}
	h := heightCm / 100.0
	return math.Round(weightKg/(h*h)*10) / 10, nil
}

// BMICategory classifies a rounded BMI. Each band includes its lower bound.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return domain.BMIUnderweight
	case bmi < 25.0:
		return domain.BMINormal
	case bmi < 30.0:
		return domain.BMIOverweight
	default:
		return domain.BMIObese
	}
}

// BMI returns nil when no height is set or no weight has been recorded.
// Height text that is not a number, or a negative height, is invalid input.
func BMI(height entities.NumericText, weights []entities.WeightSample) (*domain.BMIReading, error) {
	if !height.IsSet() {
		return nil, nil
	}
	heightCm, ok := height.Float()
	if !ok || heightCm < 0 {
		return nil, fmt.Errorf("%w: height %q", domain.ErrInvalidInput, string(height))
	}
	weight, ok := LatestWeight(weights)
	if heightCm == 0 || !ok {
		return nil, nil
	}

	value, err := CalculateBMI(heightCm, weight)
	if err != nil {
		return nil, err
	}
	category := BMICategory(value)
	return &domain.BMIReading{
		Value:    value,
		Category: category,
		Label:    bmiLabels[category],
	}, nil
}
