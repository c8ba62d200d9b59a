package domain

type (
	// NutritionEstimate is what an estimator reports for one photographed
	// dish.
	NutritionEstimate struct {
		Dish       string   `json:"dish"`
		Items      []string `json:"items"`
		Calories   int      `json:"calories"`
		Protein    float64  `json:"protein"`
		Carbs      float64  `json:"carbs"`
		Fat        float64  `json:"fat"`
		Portion    string   `json:"portion"`
		Confidence string   `json:"confidence,omitempty"`
	}

	// BarcodeProduct carries per-100g nutrition for a packaged product.
	BarcodeProduct struct {
		Barcode         string  `json:"barcode"`
		Name            string  `json:"name"`
		Brand           string  `json:"brand"`
		CaloriesPer100g int     `json:"calories"`
		ProteinPer100g  float64 `json:"protein"`
		CarbsPer100g    float64 `json:"carbs"`
		FatPer100g      float64 `json:"fat"`
		Image           string  `json:"image,omitempty"`
	}

	// CoachingInput is today's summary as fed to the coaching prompt. Goals
	// are passed as the user typed them.
	CoachingInput struct {
		Calories    int
		CalorieGoal string
		Macros      Macros
		ProteinGoal string
		CarbsGoal   string
		FatGoal     string
		Remaining   int
	}

	CoachingResponse struct {
		Message string `json:"message"`
	}
)
