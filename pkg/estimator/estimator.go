// Package estimator turns a meal photo into a nutrition estimate using a
// multimodal model.
package estimator

import (
	"context"

	"kalorikollen/domain"
)

// Estimator is backed by Gemini or Claude. Every failure, including a reply
// that cannot be parsed, is reported as domain.ErrEstimationFailed.
type Estimator interface {
	Estimate(ctx context.Context, image domain.MealImage) (domain.NutritionEstimate, error)
}

const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

const geminiPrompt = `Analysera denna maträtt och ge uppskattning av kalorier och makronutrienter. Svara ENDAST med JSON i detta format: {"dish":"namn på svenska","items":["ingrediens1","ingrediens2"],"calories":500,"protein":25,"carbs":45,"fat":15,"portion":"1 portion"}`

const claudePrompt = `Analysera denna maträtt och ge en uppskattning av kaloriinnehållet och makronutrienter.

Svara ENDAST med JSON i följande format (ingen annan text):
{
  "dish": "namn på maträtten på svenska",
  "items": ["ingrediens 1", "ingrediens 2", ...],
  "calories": antal kalorier (heltal),
  "protein": gram protein (decimal),
  "carbs": gram kolhydrater (decimal),
  "fat": gram fett (decimal),
  "portion": "uppskattad portionsstorlek",
  "confidence": "hög/medel/låg"
}`

func mimeTypeOrDefault(mimeType string) string {
	if mimeType == "" {
		return "image/jpeg"
	}
	return mimeType
}
