package domain

import (
	"errors"
	"time"

	"kalorikollen/entities"
)

var (
	MessageSuccessRegisterDevice = "device registered successfully"
	MessageSuccessGetDashboard   = "dashboard retrieved successfully"
	MessageSuccessGetMeals       = "meals retrieved successfully"
	MessageSuccessLogMeal        = "meal logged successfully"
	MessageSuccessDeleteMeal     = "meal deleted successfully"
	MessageSuccessLookupBarcode  = "product found"
	MessageSuccessGetWeights     = "weights retrieved successfully"
	MessageSuccessAddWeight      = "weight added successfully"
	MessageSuccessDeleteWeight   = "weight deleted successfully"
	MessageSuccessAddWater       = "water added successfully"
	MessageSuccessGetFavorites   = "favorites retrieved successfully"
	MessageSuccessAddFavorite    = "favorite added successfully"
	MessageSuccessDeleteFavorite = "favorite deleted successfully"
	MessageSuccessUpdateGoals    = "goals updated successfully"
	MessageSuccessUpdateHeight   = "height updated successfully"
	MessageSuccessGetCoaching    = "coaching retrieved successfully"
	MessageSuccessExport         = "data exported successfully"
	MessageSuccessImport         = "data imported successfully"
	MessageSuccessMailExport     = "export sent successfully"

	MessageFailedRegisterDevice = "failed to register device"
	MessageFailedGetDashboard   = "failed to retrieve dashboard"
	MessageFailedGetMeals       = "failed to retrieve meals"
	MessageFailedAnalyzeMeal    = "failed to analyze meal image"
	MessageFailedLogMeal        = "failed to log meal"
	MessageFailedDeleteMeal     = "failed to delete meal"
	MessageFailedLookupBarcode  = "failed to look up barcode"
	MessageFailedGetWeights     = "failed to retrieve weights"
	MessageFailedAddWeight      = "failed to add weight"
	MessageFailedDeleteWeight   = "failed to delete weight"
	MessageFailedAddWater       = "failed to add water"
	MessageFailedGetFavorites   = "failed to retrieve favorites"
	MessageFailedAddFavorite    = "failed to add favorite"
	MessageFailedDeleteFavorite = "failed to delete favorite"
	MessageFailedUpdateGoals    = "failed to update goals"
	MessageFailedUpdateHeight   = "failed to update height"
	MessageFailedExport         = "failed to export data"
	MessageFailedImport         = "failed to import data"
	MessageFailedMailExport     = "failed to send export"

	ErrInvalidInput           = errors.New("invalid input")
	ErrEstimationFailed       = errors.New("nutrition estimation failed")
	ErrEstimatorNotConfigured = errors.New("nutrition estimator not configured")
	ErrProductNotFound        = errors.New("product not found")
	ErrPersistence            = errors.New("persistence failed")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrMealDeletionDisabled   = errors.New("meal deletion is disabled")
	ErrDuplicateFavorite      = errors.New("dish is already a favorite")
)

const (
	BMIUnderweight = "underweight"
	BMINormal      = "normal"
	BMIOverweight  = "overweight"
	BMIObese       = "obese"
)

type (
	Macros struct {
		Protein float64 `json:"protein"`
		Carbs   float64 `json:"carbs"`
		Fat     float64 `json:"fat"`
	}

	MacroSplit struct {
		ProteinKcal float64 `json:"protein_kcal"`
		CarbsKcal   float64 `json:"carbs_kcal"`
		FatKcal     float64 `json:"fat_kcal"`
	}

	WeeklyStats struct {
		TotalCalories               int `json:"total_calories"`
		AverageCaloriesPerActiveDay int `json:"average_calories_per_active_day"`
		MealCount                   int `json:"meal_count"`
	}

	BMIReading struct {
		Value    float64 `json:"value"`
		Category string  `json:"category"`
		Label    string  `json:"label"`
	}

	Ring struct {
		Radius        float64 `json:"radius"`
		Circumference float64 `json:"circumference"`
		Offset        float64 `json:"offset"`
	}

	GoalProgress struct {
		Consumed float64 `json:"consumed"`
		Goal     float64 `json:"goal"`
		Percent  float64 `json:"percent"`
		Ring     Ring    `json:"ring"`
	}

	Dashboard struct {
		Date              string                  `json:"date"`
		Calories          int                     `json:"calories"`
		RemainingCalories int                     `json:"remaining_calories"`
		Macros            Macros                  `json:"macros"`
		MacroSplit        MacroSplit              `json:"macro_split"`
		Water             int                     `json:"water"`
		Progress          map[string]GoalProgress `json:"progress"`
		Weekly            WeeklyStats             `json:"weekly"`
		BMI               *BMIReading             `json:"bmi,omitempty"`
		LatestWeight      *float64                `json:"latest_weight,omitempty"`
		Streak            int                     `json:"streak"`
		Badges            []entities.Badge        `json:"badges"`
		TodaysMeals       []entities.MealEntry    `json:"todays_meals"`
	}

	// LogMealResponse carries the logged meal and any badges it unlocked.
	LogMealResponse struct {
		Meal      entities.MealEntry `json:"meal"`
		NewBadges []entities.Badge   `json:"new_badges"`
	}

	RegisterDeviceResponse struct {
		DeviceID string `json:"device_id"`
		Token    string `json:"token"`
	}

	MealImage struct {
		Data     []byte
		MimeType string
	}

	AddWeightRequest struct {
		Weight float64 `json:"weight" validate:"required,gt=0"`
	}

	AddWaterRequest struct {
		Amount int `json:"amount" validate:"required,gt=0"`
	}

	UpdateHeightRequest struct {
		Height entities.NumericText `json:"height"`
	}

	LogBarcodeRequest struct {
		Barcode string `json:"barcode" validate:"required,numeric,min=6,max=14"`
	}

	MailExportRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ExportDocument struct {
		Weights     []entities.WeightSample `json:"weights"`
		Meals       []entities.MealEntry    `json:"meals" validate:"dive"`
		WaterIntake []entities.WaterSample  `json:"waterIntake"`
		Favorites   []entities.MealEntry    `json:"favorites" validate:"dive"`
		Goals       entities.Goals          `json:"goals"`
		UserHeight  entities.NumericText    `json:"userHeight"`
		Streak      int                     `json:"streak"`
		Badges      []entities.Badge        `json:"badges"`
		ExportDate  time.Time               `json:"exportDate"`
	}
)
