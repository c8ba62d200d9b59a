package ledger

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"kalorikollen/domain"
	"kalorikollen/entities"
	"kalorikollen/pkg/badge"
	"kalorikollen/pkg/barcode"
	"kalorikollen/pkg/coach"
	"kalorikollen/pkg/estimator"
	"kalorikollen/pkg/store"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

type (
	LedgerService interface {
		State(ctx context.Context, deviceID string) (entities.Ledger, error)
		LogMealFromImage(ctx context.Context, deviceID string, image domain.MealImage) (domain.LogMealResponse, error)
		LookupBarcode(ctx context.Context, code string) (domain.BarcodeProduct, error)
		LogBarcodeProduct(ctx context.Context, deviceID string, product domain.BarcodeProduct) (domain.LogMealResponse, error)
		LogFavorite(ctx context.Context, deviceID string, index int) (domain.LogMealResponse, error)
		DeleteMeal(ctx context.Context, deviceID string, index int) error
		AddWeight(ctx context.Context, deviceID string, kg float64) (entities.WeightSample, error)
		DeleteWeight(ctx context.Context, deviceID string, index int) error
		AddWater(ctx context.Context, deviceID string, ml int) (entities.WaterSample, error)
		AddFavorite(ctx context.Context, deviceID string, meal entities.MealEntry) error
		DeleteFavorite(ctx context.Context, deviceID string, index int) error
		SetGoals(ctx context.Context, deviceID string, goals entities.Goals) (entities.Goals, error)
		SetHeight(ctx context.Context, deviceID string, height entities.NumericText) error
		Dashboard(ctx context.Context, deviceID string) (domain.Dashboard, error)
		Coaching(ctx context.Context, deviceID string) (domain.CoachingResponse, error)
		Export(ctx context.Context, deviceID string) (domain.ExportDocument, error)
		Import(ctx context.Context, deviceID string, doc domain.ExportDocument) error
	}

	// PhotoUploader stores a meal photo and returns a URL for it.
	PhotoUploader interface {
		UploadBytes(ctx context.Context, key string, body []byte, contentType string) (string, error)
	}

	ledgerService struct {
		repo            LedgerRepository
		estimator       estimator.Estimator
		barcode         barcode.Lookup
		coach           coach.Coach
		photos          PhotoUploader
		allowMealDelete bool
		now             func() time.Time

		mu      sync.Mutex
		ledgers map[string]*entities.Ledger
	}
)

// NewLedgerService wires the ledger to its collaborators. photos may be nil,
// in which case meals are logged without an image reference.
func NewLedgerService(
	repo LedgerRepository,
	est estimator.Estimator,
	lookup barcode.Lookup,
	c coach.Coach,
	photos PhotoUploader,
	allowMealDelete bool,
) LedgerService {
	return &ledgerService{
		repo:            repo,
		estimator:       est,
		barcode:         lookup,
		coach:           c,
		photos:          photos,
		allowMealDelete: allowMealDelete,
		now:             time.Now,
		ledgers:         make(map[string]*entities.Ledger),
	}
}

// load returns the cached ledger for deviceID, reading it from the store on
// first use. Callers hold s.mu.
func (s *ledgerService) load(ctx context.Context, deviceID string) (*entities.Ledger, error) {
	if l, ok := s.ledgers[deviceID]; ok {
		return l, nil
	}
	l, err := s.repo.Load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	s.ledgers[deviceID] = &l
	return &l, nil
}

// persist writes the changed keys. Failures are logged only; the cached
// ledger keeps serving the session.
func (s *ledgerService) persist(ctx context.Context, deviceID string, l *entities.Ledger, keys ...string) {
	if err := s.repo.Save(ctx, deviceID, *l, keys...); err != nil {
		log.Errorf("ledger %s: save %v: %v", deviceID, keys, err)
	}
}

func (s *ledgerService) State(ctx context.Context, deviceID string) (entities.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx, deviceID)
	if err != nil {
		return entities.Ledger{}, err
	}
	return *l, nil
}

func (s *ledgerService) LogMealFromImage(ctx context.Context, deviceID string, image domain.MealImage) (domain.LogMealResponse, error) {
	if len(image.Data) == 0 {
		return domain.LogMealResponse{}, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}
	if s.estimator == nil {
		return domain.LogMealResponse{}, domain.ErrEstimatorNotConfigured
	}

	estimate, err := s.estimator.Estimate(ctx, image)
	if err != nil {
		return domain.LogMealResponse{}, err
	}

	meal := entities.MealEntry{
		ID:         uuid.New().String(),
		Dish:       estimate.Dish,
		Items:      estimate.Items,
		Calories:   estimate.Calories,
		Protein:    estimate.Protein,
		Carbs:      estimate.Carbs,
		Fat:        estimate.Fat,
		Portion:    estimate.Portion,
		Confidence: estimate.Confidence,
	}
	if meal.Items == nil {
		meal.Items = []string{}
	}
	if s.photos != nil {
		key := fmt.Sprintf("meals/%s/%s%s", deviceID, meal.ID, imageExtension(image.MimeType))
		url, err := s.photos.UploadBytes(ctx, key, image.Data, image.MimeType)
		if err != nil {
			log.Warnf("ledger %s: meal photo upload failed: %v", deviceID, err)
		} else {
			meal.Image = url
		}
	}

	return s.appendMeal(ctx, deviceID, meal)
}

func (s *ledgerService) LookupBarcode(ctx context.Context, code string) (domain.BarcodeProduct, error) {
	if s.barcode == nil {
		return domain.BarcodeProduct{}, fmt.Errorf("%w: barcode lookup unavailable", domain.ErrProductNotFound)
	}
	return s.barcode.Lookup(ctx, code)
}

func (s *ledgerService) LogBarcodeProduct(ctx context.Context, deviceID string, product domain.BarcodeProduct) (domain.LogMealResponse, error) {
	items := []string{}
	if product.Brand != "" {
		items = append(items, product.Brand)
	}
	meal := entities.MealEntry{
		ID:       uuid.New().String(),
		Dish:     product.Name,
		Items:    items,
		Calories: product.CaloriesPer100g,
		Protein:  product.ProteinPer100g,
		Carbs:    product.CarbsPer100g,
		Fat:      product.FatPer100g,
		Portion:  "100g",
		Image:    product.Image,
	}
	return s.appendMeal(ctx, deviceID, meal)
}

// LogFavorite re-logs the favorite at index as a new meal. The favorite is
// read under the same lock that appends the meal.
func (s *ledgerService) LogFavorite(ctx context.Context, deviceID string, index int) (domain.LogMealResponse, error) {
	return s.appendMealFrom(ctx, deviceID, func(l *entities.Ledger) (entities.MealEntry, error) {
		if index < 0 || index >= len(l.Favorites) {
			return entities.MealEntry{}, fmt.Errorf("%w: favorite %d", domain.ErrIndexOutOfRange, index)
		}
		meal := l.Favorites[index]
		meal.ID = uuid.New().String()
		meal.Items = append([]string{}, meal.Items...)
		return meal, nil
	})
}

func (s *ledgerService) appendMeal(ctx context.Context, deviceID string, meal entities.MealEntry) (domain.LogMealResponse, error) {
	return s.appendMealFrom(ctx, deviceID, func(*entities.Ledger) (entities.MealEntry, error) {
		return meal, nil
	})
}

// appendMealFrom builds the meal from the loaded ledger, stamps it with the
// current time, prepends it and re-derives the streak and badges.
func (s *ledgerService) appendMealFrom(ctx context.Context, deviceID string, build func(l *entities.Ledger) (entities.MealEntry, error)) (domain.LogMealResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx, deviceID)
	if err != nil {
		return domain.LogMealResponse{}, err
	}
	meal, err := build(l)
	if err != nil {
		return domain.LogMealResponse{}, err
	}
	now := s.now()
	meal.Stamp(now)
	l.Meals = Log[entities.MealEntry](l.Meals).Append(meal)

	due := s.mealsChanged(l, now)
	s.persist(ctx, deviceID, l, store.KeyMeals, store.KeyStreak, store.KeyBadges)

	if due == nil {
		due = []entities.Badge{}
	}
	return domain.LogMealResponse{Meal: meal, NewBadges: due}, nil
}

// mealsChanged refreshes the cached streak and merges newly due badges.
func (s *ledgerService) mealsChanged(l *entities.Ledger, now time.Time) []entities.Badge {
	today := Today(now)
	l.Streak = badge.ComputeStreak(l.Meals, now)
	due := badge.Evaluate(badge.State{
		MealCount:     len(l.Meals),
		Streak:        l.Streak,
		TodayCalories: TodaysCalories(l.Meals, today),
		CalorieGoal:   l.Goals.Calories,
		Awarded:       l.Badges,
		Now:           now,
	})
	l.Badges = badge.Merge(l.Badges, due)
	return due
}

func (s *ledgerService) DeleteMeal(ctx context.Context, deviceID string, index int) error {
	if !s.allowMealDelete {
		return domain.ErrMealDeletionDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx, deviceID)
	if err != nil {
		return err
	}
	meals, err := Log[entities.MealEntry](l.Meals).RemoveAt(index)
	if err != nil {
		return err
	}
	l.Meals = meals
	s.mealsChanged(l, s.now())
	s.persist(ctx, deviceID, l, store.KeyMeals, store.KeyStreak, store.KeyBadges)
	return nil
}

func (s *ledgerService) AddWeight(ctx context.Context, deviceID string, kg float64) (entities.WeightSample, error) {
	if kg <= 0 || math.IsNaN(kg) || math.IsInf(kg, 0) {
		return entities.WeightSample{}, fmt.Errorf("%w: weight must be positive", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx, deviceID)
	if err != nil {
		return entities.WeightSample{}, err
	}
	now := s.now()
	sample := entities.WeightSample{Weight: kg, Date: now, DateStr: Today(now)}
	l.Weights = Log[entities.WeightSample](l.Weights).Append(sample)
	s.persist(ctx, deviceID, l, store.KeyWeights)
	return sample, nil
}

func (s *ledgerService) DeleteWeight(ctx context.Context, deviceID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx, deviceID)
	if err != nil {
		return err
	}
	weights, err := Log[entities.WeightSample](l.Weights).RemoveAt(index)
	if err != nil {
		return err
	}
	l.Weights = weights
	s.persist(ctx, deviceID, l, store.KeyWeights)
	return nil
}

func (s *ledgerService) AddWater(ctx context.Context, deviceID string, ml int) (entities.WaterSample, error) {
	if ml <= 0 {
		return entities.WaterSample{}, fmt.Errorf("%w: water amount must be positive", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx, deviceID)
	if err != nil {
		return entities.WaterSample{}, err
	}
	now := s.now()
	sample := entities.WaterSample{
		Amount:  ml,
		Date:    now,
		DateStr: Today(now),
		TimeStr: now.Format(entities.TimeLayout),
	}
	l.Water = Log[entities.WaterSample](l.Water).Append(sample)
	s.persist(ctx, deviceID, l, store.KeyWater)
	return sample, nil
}

// AddFavorite appends meal to the favorites unless a favorite with the same
// dish name exists.
func (s *ledgerService) AddFavorite(ctx context.Context, deviceID string, meal entities.MealEntry) error {
	meal.Dish = strings.TrimSpace(meal.Dish)
	if meal.Dish == "" {
		return fmt.Errorf("%w: dish is required", domain.ErrInvalidInput)
	}
	if err := validate.Struct(meal); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx, deviceID)
	if err != nil {
		return err
	}
	for _, f := range l.Favorites {
		if f.Dish == meal.Dish {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateFavorite, meal.Dish)
		}
	}
	favorites := make([]entities.MealEntry, 0, len(l.Favorites)+1)
	l.Favorites = append(append(favorites, l.Favorites...), meal)
	s.persist(ctx, deviceID, l, store.KeyFavorites)
	return nil
}

func (s *ledgerService) DeleteFavorite(ctx context.Context, deviceID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx, deviceID)
	if err != nil {
		return err
	}
	favorites, err := Log[entities.MealEntry](l.Favorites).RemoveAt(index)
	if err != nil {
		return err
	}
	l.Favorites = favorites
	s.persist(ctx, deviceID, l, store.KeyFavorites)
	return nil
}

// SetGoals replaces the goals record. Every value that is set must be a
// non-negative number.
func (s *ledgerService) SetGoals(ctx context.Context, deviceID string, goals entities.Goals) (entities.Goals, error) {
	for name, v := range map[string]entities.NumericText{
		"weight":   goals.Weight,
		"calories": goals.Calories,
		"protein":  goals.Protein,
		"carbs":    goals.Carbs,
		"fat":      goals.Fat,
		"water":    goals.Water,
	} {
		if _, err := GoalNumber(v); err != nil {
			return entities.Goals{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx, deviceID)
	if err != nil {
		return entities.Goals{}, err
	}
	l.Goals = goals
	s.persist(ctx, deviceID, l, store.KeyGoals)
	return goals, nil
}

func (s *ledgerService) SetHeight(ctx context.Context, deviceID string, height entities.NumericText) error {
	if v, err := GoalNumber(height); err != nil {
		return err
	} else if height.IsSet() && v == 0 {
		return fmt.Errorf("%w: height must be positive", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx, deviceID)
	if err != nil {
		return err
	}
	l.Height = entities.NumericText(strings.TrimSpace(string(height)))
	s.persist(ctx, deviceID, l, store.KeyHeight)
	return nil
}

// GoalNumber reads a user-entered value. Unset text is 0; anything else must
// be a non-negative number.
func GoalNumber(v entities.NumericText) (float64, error) {
	if !v.IsSet() {
		return 0, nil
	}
	f, ok := v.Float()
	if !ok || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not a valid number", domain.ErrInvalidInput, string(v))
	}
	return f, nil
}

func (s *ledgerService) Dashboard(ctx context.Context, deviceID string) (domain.Dashboard, error) {
	l, err := s.State(ctx, deviceID)
	if err != nil {
		return domain.Dashboard{}, err
	}
	return BuildDashboard(l, s.now()), nil
}

func (s *ledgerService) Coaching(ctx context.Context, deviceID string) (domain.CoachingResponse, error) {
	l, err := s.State(ctx, deviceID)
	if err != nil {
		return domain.CoachingResponse{}, err
	}
	if s.coach == nil {
		return domain.CoachingResponse{Message: coach.FallbackMessage}, nil
	}
	today := Today(s.now())
	calories := TodaysCalories(l.Meals, today)
	goal, _ := GoalNumber(l.Goals.Calories)

	return s.coach.Advise(ctx, domain.CoachingInput{
		Calories:    calories,
		CalorieGoal: string(l.Goals.Calories),
		Macros:      TodaysMacros(l.Meals, today),
		ProteinGoal: string(l.Goals.Protein),
		CarbsGoal:   string(l.Goals.Carbs),
		FatGoal:     string(l.Goals.Fat),
		Remaining:   int(goal) - calories,
	}), nil
}

func (s *ledgerService) Export(ctx context.Context, deviceID string) (domain.ExportDocument, error) {
	l, err := s.State(ctx, deviceID)
	if err != nil {
		return domain.ExportDocument{}, err
	}
	return ExportDocument(l, s.now()), nil
}

// Import replaces the device's whole ledger with doc.
func (s *ledgerService) Import(ctx context.Context, deviceID string, doc domain.ExportDocument) error {
	if err := validateExport(doc); err != nil {
		return err
	}
	l := LedgerFromExport(doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[deviceID] = &l
	s.persist(ctx, deviceID, &l)
	return nil
}

func imageExtension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
