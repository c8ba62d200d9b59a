package estimator

import (
	"context"
	"fmt"

	"kalorikollen/domain"
	"kalorikollen/pkg/gemini"

	"github.com/gofiber/fiber/v2/log"
)

type geminiEstimator struct {
	client *gemini.Client
}

func NewGeminiEstimator(client *gemini.Client) Estimator {
	return &geminiEstimator{client: client}
}

func (e *geminiEstimator) Estimate(ctx context.Context, image domain.MealImage) (domain.NutritionEstimate, error) {
	if e.client == nil || e.client.APIKey == "" {
		return domain.NutritionEstimate{}, domain.ErrEstimatorNotConfigured
	}

	reply, err := e.client.GenerateContent(ctx,
		&gemini.GenerationConfig{Temperature: 0.1, TopP: 0.8, TopK: 40},
		gemini.TextPart(geminiPrompt),
		gemini.ImagePart(image.Data, mimeTypeOrDefault(image.MimeType)),
	)
	if err != nil {
		return domain.NutritionEstimate{}, fmt.Errorf("%w: %v", domain.ErrEstimationFailed, err)
	}
	log.Debugf("gemini raw response: %s", reply)
	return ParseEstimate(reply)
}
