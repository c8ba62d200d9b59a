package estimator

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"kalorikollen/domain"

	"github.com/go-playground/validator/v10"
)

var (
	jsonPattern = regexp.MustCompile(`(?s)\{.*\}`)
	validate    = validator.New()
)

// rawEstimate is the loose shape models actually reply with. Numbers may be
// fractional or missing; dish is the only field we cannot do without.
type rawEstimate struct {
	Dish       string   `json:"dish" validate:"required"`
	Items      []string `json:"items"`
	Calories   float64  `json:"calories" validate:"gte=0"`
	Protein    float64  `json:"protein" validate:"gte=0"`
	Carbs      float64  `json:"carbs" validate:"gte=0"`
	Fat        float64  `json:"fat" validate:"gte=0"`
	Portion    string   `json:"portion"`
	Confidence string   `json:"confidence"`
}

// ParseEstimate extracts the JSON object from a model reply, which may be
// wrapped in prose or a markdown fence, and validates it.
func ParseEstimate(reply string) (domain.NutritionEstimate, error) {
	text := strings.TrimSpace(reply)
	if match := jsonPattern.FindString(text); match != "" {
		text = match
	}
	text = stripFence(text)
	if text == "" {
		return domain.NutritionEstimate{}, fmt.Errorf("%w: empty reply", domain.ErrEstimationFailed)
	}

	var raw rawEstimate
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return domain.NutritionEstimate{}, fmt.Errorf("%w: %v", domain.ErrEstimationFailed, err)
	}
	raw.Dish = strings.TrimSpace(raw.Dish)
	if err := validate.Struct(raw); err != nil {
		return domain.NutritionEstimate{}, fmt.Errorf("%w: %v", domain.ErrEstimationFailed, err)
	}

	items := make([]string, 0, len(raw.Items))
	for _, item := range raw.Items {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return domain.NutritionEstimate{
		Dish:       raw.Dish,
		Items:      items,
		Calories:   int(math.Round(raw.Calories)),
		Protein:    raw.Protein,
		Carbs:      raw.Carbs,
		Fat:        raw.Fat,
		Portion:    strings.TrimSpace(raw.Portion),
		Confidence: strings.TrimSpace(raw.Confidence),
	}, nil
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
