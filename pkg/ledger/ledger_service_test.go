package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"kalorikollen/domain"
	"kalorikollen/entities"
	"kalorikollen/pkg/badge"
	"kalorikollen/pkg/store"
)

const device = "device-1"

type fakeEstimator struct {
	estimate domain.NutritionEstimate
	err      error
	calls    int
}

func (f *fakeEstimator) Estimate(context.Context, domain.MealImage) (domain.NutritionEstimate, error) {
	f.calls++
	return f.estimate, f.err
}

type fakeLookup map[string]domain.BarcodeProduct

func (f fakeLookup) Lookup(_ context.Context, code string) (domain.BarcodeProduct, error) {
	p, ok := f[code]
	if !ok {
		return domain.BarcodeProduct{}, domain.ErrProductNotFound
	}
	return p, nil
}

type fakePhotos struct{ keys []string }

func (f *fakePhotos) UploadBytes(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.keys = append(f.keys, key)
	return "https://bucket.example/" + key, nil
}

// brokenStore fails every write.
type brokenStore struct{ *store.Memory }

func (b brokenStore) ForDevice(id string) store.Store {
	return brokenDevice{b.Memory.ForDevice(id)}
}

type brokenDevice struct{ store.Store }

func (brokenDevice) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T, p store.Provider, est *fakeEstimator) (*ledgerService, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewLedgerService(
		NewLedgerRepository(p),
		est,
		fakeLookup{"7310130003240": {Barcode: "7310130003240", Name: "Havregryn", Brand: "Kungsörnen", CaloriesPer100g: 370, ProteinPer100g: 13, CarbsPer100g: 58, FatPer100g: 7}},
		nil,
		nil,
		true,
	).(*ledgerService)
	svc.now = c.now
	return svc, c
}

func soup() *fakeEstimator {
	return &fakeEstimator{estimate: domain.NutritionEstimate{
		Dish: "Ärtsoppa", Items: []string{"ärtor"}, Calories: 500, Protein: 30, Carbs: 40, Fat: 10, Portion: "1 skål",
	}}
}

func TestLogMealFromImage(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	svc, _ := newTestService(t, mem, soup())
	photos := &fakePhotos{}
	svc.photos = photos

	res, err := svc.LogMealFromImage(ctx, device, domain.MealImage{Data: []byte("jpeg"), MimeType: "image/png"})
	if err != nil {
		t.Fatalf("LogMealFromImage: %v", err)
	}
	if res.Meal.Dish != "Ärtsoppa" || res.Meal.DateStr != "2024-05-10" || res.Meal.TimeStr != "12:00" {
		t.Errorf("Meal = %+v", res.Meal)
	}
	if len(photos.keys) != 1 || res.Meal.Image != "https://bucket.example/"+photos.keys[0] {
		t.Errorf("Image = %q, uploads %v", res.Meal.Image, photos.keys)
	}
	if len(res.NewBadges) != 1 || res.NewBadges[0].ID != badge.FirstMeal {
		t.Errorf("NewBadges = %+v, want first_meal", res.NewBadges)
	}

	raw, ok, _ := mem.ForDevice(device).Get(ctx, store.KeyMeals)
	if !ok {
		t.Fatal("meals not persisted")
	}
	var stored []entities.MealEntry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || len(stored) != 1 {
		t.Fatalf("stored meals = %s (%v)", raw, err)
	}
	if streak, _, _ := mem.ForDevice(device).Get(ctx, store.KeyStreak); streak != "1" {
		t.Errorf("stored streak = %q, want %q", streak, "1")
	}
}

func TestLogMealEstimatorFailureLeavesLog(t *testing.T) {
	ctx := context.Background()
	est := &fakeEstimator{err: domain.ErrEstimationFailed}
	svc, _ := newTestService(t, store.NewMemory(), est)

	_, err := svc.LogMealFromImage(ctx, device, domain.MealImage{Data: []byte("jpeg")})
	if !errors.Is(err, domain.ErrEstimationFailed) {
		t.Fatalf("err = %v, want ErrEstimationFailed", err)
	}
	l, _ := svc.State(ctx, device)
	if len(l.Meals) != 0 || len(l.Badges) != 0 {
		t.Errorf("ledger changed after failed estimate: %+v", l)
	}
}

func TestLogMealPrependsNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, c := newTestService(t, store.NewMemory(), soup())

	svc.LogMealFromImage(ctx, device, domain.MealImage{Data: []byte("a")})
	c.t = c.t.Add(time.Hour)
	product, _ := svc.LookupBarcode(ctx, "7310130003240")
	res, err := svc.LogBarcodeProduct(ctx, device, product)
	if err != nil {
		t.Fatalf("LogBarcodeProduct: %v", err)
	}
	if res.Meal.Portion != "100g" || len(res.Meal.Items) != 1 || res.Meal.Items[0] != "Kungsörnen" {
		t.Errorf("barcode meal = %+v", res.Meal)
	}

	l, _ := svc.State(ctx, device)
	if len(l.Meals) != 2 || l.Meals[0].Dish != "Havregryn" {
		t.Errorf("Meals = %+v, want barcode meal first", l.Meals)
	}
}

func TestLookupBarcodeNotFound(t *testing.T) {
	svc, _ := newTestService(t, store.NewMemory(), soup())
	if _, err := svc.LookupBarcode(context.Background(), "000"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestDeleteMeal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, store.NewMemory(), soup())
	svc.LogMealFromImage(ctx, device, domain.MealImage{Data: []byte("a")})

	if err := svc.DeleteMeal(ctx, device, 1); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Errorf("DeleteMeal(1) err = %v, want ErrIndexOutOfRange", err)
	}
	if err := svc.DeleteMeal(ctx, device, 0); err != nil {
		t.Fatalf("DeleteMeal: %v", err)
	}
	l, _ := svc.State(ctx, device)
	if len(l.Meals) != 0 || l.Streak != 0 {
		t.Errorf("after delete meals=%d streak=%d", len(l.Meals), l.Streak)
	}
	// badges are never revoked
	if len(l.Badges) != 1 {
		t.Errorf("Badges = %+v, want first_meal kept", l.Badges)
	}

	svc.allowMealDelete = false
	if err := svc.DeleteMeal(ctx, device, 0); !errors.Is(err, domain.ErrMealDeletionDisabled) {
		t.Errorf("err = %v, want ErrMealDeletionDisabled", err)
	}
}

func TestWeightsAndWater(t *testing.T) {
	ctx := context.Background()
	svc, c := newTestService(t, store.NewMemory(), soup())

	if _, err := svc.AddWeight(ctx, device, -1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("AddWeight(-1) err = %v, want ErrInvalidInput", err)
	}
	svc.AddWeight(ctx, device, 82)
	c.t = c.t.Add(24 * time.Hour)
	svc.AddWeight(ctx, device, 81)
	if err := svc.DeleteWeight(ctx, device, 1); err != nil {
		t.Fatalf("DeleteWeight: %v", err)
	}

	if _, err := svc.AddWater(ctx, device, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("AddWater(0) err = %v, want ErrInvalidInput", err)
	}
	svc.AddWater(ctx, device, 250)
	svc.AddWater(ctx, device, 500)

	l, _ := svc.State(ctx, device)
	if len(l.Weights) != 1 || l.Weights[0].Weight != 81 {
		t.Errorf("Weights = %+v, want [81]", l.Weights)
	}
	if got := TodaysWater(l.Water, Today(c.t)); got != 750 {
		t.Errorf("TodaysWater = %d, want 750", got)
	}
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, store.NewMemory(), soup())
	fav := entities.MealEntry{Dish: "Pannkakor", Calories: 450, Items: []string{"mjöl"}}

	if err := svc.AddFavorite(ctx, device, fav); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if err := svc.AddFavorite(ctx, device, fav); !errors.Is(err, domain.ErrDuplicateFavorite) {
		t.Errorf("second AddFavorite err = %v, want ErrDuplicateFavorite", err)
	}

	res, err := svc.LogFavorite(ctx, device, 0)
	if err != nil {
		t.Fatalf("LogFavorite: %v", err)
	}
	if res.Meal.Dish != "Pannkakor" || res.Meal.DateStr != "2024-05-10" || res.Meal.ID == "" {
		t.Errorf("logged favorite = %+v", res.Meal)
	}
	if _, err := svc.LogFavorite(ctx, device, 3); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Errorf("LogFavorite(3) err = %v", err)
	}

	if err := svc.DeleteFavorite(ctx, device, 0); err != nil {
		t.Fatalf("DeleteFavorite: %v", err)
	}
	l, _ := svc.State(ctx, device)
	if len(l.Favorites) != 0 || len(l.Meals) != 1 {
		t.Errorf("favorites=%d meals=%d", len(l.Favorites), len(l.Meals))
	}
}

func TestSetGoalsAndHeight(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, store.NewMemory(), soup())

	bad := entities.DefaultGoals()
	bad.Protein = "massor"
	if _, err := svc.SetGoals(ctx, device, bad); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("SetGoals err = %v, want ErrInvalidInput", err)
	}

	goals := entities.DefaultGoals()
	goals.Calories = "1800"
	if _, err := svc.SetGoals(ctx, device, goals); err != nil {
		t.Fatalf("SetGoals: %v", err)
	}
	if err := svc.SetHeight(ctx, device, "-170"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("SetHeight(-170) err = %v, want ErrInvalidInput", err)
	}
	if err := svc.SetHeight(ctx, device, " 180 "); err != nil {
		t.Fatalf("SetHeight: %v", err)
	}

	l, _ := svc.State(ctx, device)
	if l.Goals.Calories != "1800" || l.Height != "180" {
		t.Errorf("goals=%+v height=%q", l.Goals, l.Height)
	}
}

func TestGoalTodayAwardedThroughService(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, store.NewMemory(), soup())
	goals := entities.DefaultGoals()
	goals.Calories = "1000"
	svc.SetGoals(ctx, device, goals)

	svc.LogMealFromImage(ctx, device, domain.MealImage{Data: []byte("a")})
	res, _ := svc.LogMealFromImage(ctx, device, domain.MealImage{Data: []byte("b")})

	var got bool
	for _, b := range res.NewBadges {
		if b.ID == badge.GoalToday && b.Day == "2024-05-10" {
			got = true
		}
	}
	if !got {
		t.Errorf("NewBadges = %+v, want goal_today for 2024-05-10", res.NewBadges)
	}
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, store.NewMemory(), soup())
	svc.LogMealFromImage(ctx, device, domain.MealImage{Data: []byte("a")})
	svc.AddWater(ctx, device, 500)
	svc.AddWeight(ctx, device, 81)
	svc.SetHeight(ctx, device, "180")

	d, err := svc.Dashboard(ctx, device)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Calories != 500 || d.RemainingCalories != 1500 || d.Water != 500 {
		t.Errorf("Dashboard = %+v", d)
	}
	if d.Progress["calories"].Percent != 25 || d.Progress["water"].Percent != 25 {
		t.Errorf("Progress = %+v", d.Progress)
	}
	if d.BMI == nil || d.BMI.Value != 25.0 || d.BMI.Category != domain.BMIOverweight {
		t.Errorf("BMI = %+v", d.BMI)
	}
	if d.Streak != 1 || d.Weekly.MealCount != 1 || len(d.TodaysMeals) != 1 {
		t.Errorf("streak=%d weekly=%+v todays=%d", d.Streak, d.Weekly, len(d.TodaysMeals))
	}
	if d.MacroSplit.FatKcal != 90 {
		t.Errorf("MacroSplit = %+v", d.MacroSplit)
	}
}

func TestPersistenceFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, brokenStore{store.NewMemory()}, soup())

	if _, err := svc.AddWater(ctx, device, 250); err != nil {
		t.Fatalf("AddWater with failing store: %v", err)
	}
	if _, err := svc.LogMealFromImage(ctx, device, domain.MealImage{Data: []byte("a")}); err != nil {
		t.Fatalf("LogMealFromImage with failing store: %v", err)
	}
	l, _ := svc.State(ctx, device)
	if len(l.Water) != 1 || len(l.Meals) != 1 {
		t.Errorf("session state lost: water=%d meals=%d", len(l.Water), len(l.Meals))
	}
}

func TestStateLoadsFromStore(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	first, _ := newTestService(t, mem, soup())
	first.LogMealFromImage(ctx, device, domain.MealImage{Data: []byte("a")})
	first.SetHeight(ctx, device, "175")

	second, _ := newTestService(t, mem, soup())
	l, err := second.State(ctx, device)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if len(l.Meals) != 1 || l.Height != "175" || l.Streak != 1 || len(l.Badges) != 1 {
		t.Errorf("reloaded ledger = %+v", l)
	}
	if l.Goals != entities.DefaultGoals() {
		t.Errorf("Goals = %+v, want defaults", l.Goals)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, store.NewMemory(), soup())
	svc.LogMealFromImage(ctx, device, domain.MealImage{Data: []byte("a")})
	svc.AddWeight(ctx, device, 80.5)
	svc.AddWater(ctx, device, 330)
	svc.AddFavorite(ctx, device, entities.MealEntry{Dish: "Gröt"})
	svc.SetHeight(ctx, device, "172")

	doc, err := svc.Export(ctx, device)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	first, err := EncodeExport(doc)
	if err != nil {
		t.Fatalf("EncodeExport: %v", err)
	}

	decoded, err := DecodeExport(first)
	if err != nil {
		t.Fatalf("DecodeExport: %v", err)
	}
	if err := svc.Import(ctx, "device-2", decoded); err != nil {
		t.Fatalf("Import: %v", err)
	}
	again, _ := svc.Export(ctx, "device-2")
	second, _ := EncodeExport(again)

	if string(first) != string(second) {
		t.Errorf("round trip changed the export:\n%s\n---\n%s", first, second)
	}
}

func TestExportDocumentKeys(t *testing.T) {
	data, err := EncodeExport(ExportDocument(entities.NewLedger(), time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("EncodeExport: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"weights", "meals", "waterIntake", "favorites", "goals", "userHeight", "streak", "badges", "exportDate"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("export missing key %q", key)
		}
	}
	if string(doc["meals"]) != "[]" {
		t.Errorf("meals = %s, want []", doc["meals"])
	}
	if string(doc["exportDate"]) != `"2024-05-10T12:00:00Z"` {
		t.Errorf("exportDate = %s", doc["exportDate"])
	}
}

func TestImportNormalizesLegacyBadges(t *testing.T) {
	doc, err := DecodeExport([]byte(`{"meals":[],"badges":[{"id":"50_meals","name":"50 måltider","emoji":"⭐","date":"2024-01-01T10:00:00.000Z"}],"userHeight":180,"streak":3}`))
	if err != nil {
		t.Fatalf("DecodeExport: %v", err)
	}
	l := LedgerFromExport(doc)
	if len(l.Badges) != 1 || l.Badges[0].ID != badge.FiftyMeals {
		t.Errorf("Badges = %+v", l.Badges)
	}
	if l.Height != "180" || l.Streak != 3 {
		t.Errorf("height=%q streak=%d", l.Height, l.Streak)
	}
	if l.Goals != entities.DefaultGoals() {
		t.Errorf("Goals = %+v, want defaults", l.Goals)
	}
}

func TestAddFavoriteRejectsNegativeNutrition(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, store.NewMemory(), soup())

	bad := []entities.MealEntry{
		{Dish: "Minus", Calories: -500},
		{Dish: "Minus", Calories: 100, Protein: -1},
		{Dish: "Minus", Calories: 100, Carbs: -2},
		{Dish: "Minus", Calories: 100, Fat: -3},
	}
	for _, meal := range bad {
		if err := svc.AddFavorite(ctx, device, meal); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("AddFavorite(%+v) err = %v, want ErrInvalidInput", meal, err)
		}
	}

	l, _ := svc.State(ctx, device)
	if len(l.Favorites) != 0 {
		t.Fatalf("favorites = %+v, want none", l.Favorites)
	}
	if _, err := svc.LogFavorite(ctx, device, 0); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Errorf("LogFavorite err = %v, want ErrIndexOutOfRange", err)
	}
	if got := TodaysCalories(l.Meals, "2024-05-10"); got != 0 {
		t.Errorf("TodaysCalories = %d, want 0", got)
	}
}

func TestImportRejectsNegativeNutrition(t *testing.T) {
	ctx := context.Background()

	for _, body := range []string{
		`{"meals":[{"dish":"Minus","calories":-300,"dateStr":"2024-05-10"}]}`,
		`{"favorites":[{"dish":"Minus","calories":100,"fat":-4}]}`,
	} {
		if _, err := DecodeExport([]byte(body)); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("DecodeExport(%s) err = %v, want ErrInvalidInput", body, err)
		}
	}

	svc, _ := newTestService(t, store.NewMemory(), soup())
	doc := ExportDocument(entities.NewLedger(), time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	doc.Meals = []entities.MealEntry{{Dish: "Minus", Calories: -300, DateStr: "2024-05-10"}}
	if err := svc.Import(ctx, device, doc); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Import err = %v, want ErrInvalidInput", err)
	}
	l, _ := svc.State(ctx, device)
	if len(l.Meals) != 0 {
		t.Errorf("meals after rejected import = %+v", l.Meals)
	}
}

func TestImportRoundsFractionalCalories(t *testing.T) {
	doc, err := DecodeExport([]byte(`{"meals":[{"dish":"Lax","calories":450.5,"dateStr":"2024-05-10"}],"favorites":[{"dish":"Gröt","calories":"210.2"}]}`))
	if err != nil {
		t.Fatalf("DecodeExport: %v", err)
	}
	if doc.Meals[0].Calories != 451 || doc.Favorites[0].Calories != 210 {
		t.Errorf("calories = %d, %d; want 451, 210", doc.Meals[0].Calories, doc.Favorites[0].Calories)
	}
}

func TestStateLoadsFractionalCalories(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	mem.ForDevice(device).Set(ctx, store.KeyMeals, `[{"dish":"Lax","calories":612.7,"dateStr":"2024-05-10"}]`)

	svc, _ := newTestService(t, mem, soup())
	l, err := svc.State(ctx, device)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if len(l.Meals) != 1 || l.Meals[0].Calories != 613 {
		t.Errorf("meals = %+v", l.Meals)
	}
}

// Every import resets meals and puts a single favorite in place, so any meal
// present must have been logged from the favorite of that same ledger.
func TestLogFavoriteConcurrentWithImport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, store.NewMemory(), soup())

	docs := make([]domain.ExportDocument, 2)
	for i, dish := range []string{"Gröt", "Pannkakor"} {
		l := entities.NewLedger()
		l.Favorites = []entities.MealEntry{{Dish: dish, Calories: 300, Items: []string{}}}
		docs[i] = ExportDocument(l, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	}
	if err := svc.Import(ctx, device, docs[0]); err != nil {
		t.Fatalf("Import: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			svc.Import(ctx, device, docs[i%2])
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := svc.LogFavorite(ctx, device, 0); err != nil {
				t.Errorf("LogFavorite: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	l, _ := svc.State(ctx, device)
	for _, m := range l.Meals {
		if m.Dish != l.Favorites[0].Dish {
			t.Fatalf("meal %q logged into a ledger whose favorite is %q", m.Dish, l.Favorites[0].Dish)
		}
	}
}
