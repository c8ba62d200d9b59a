package estimator

import (
	"errors"
	"testing"

	"kalorikollen/domain"
)

func TestParseEstimate(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"plain", `{"dish":"Köttbullar","items":["köttbullar","potatis"],"calories":650,"protein":32,"carbs":55,"fat":30,"portion":"1 tallrik"}`},
		{"fenced", "```json\n{\"dish\":\"Köttbullar\",\"items\":[\"köttbullar\",\"potatis\"],\"calories\":650,\"protein\":32,\"carbs\":55,\"fat\":30,\"portion\":\"1 tallrik\"}\n```"},
		{"prose", `Här är analysen: {"dish":"Köttbullar","items":["köttbullar"," potatis "],"calories":649.6,"protein":32,"carbs":55,"fat":30,"portion":"1 tallrik"} Smaklig måltid!`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEstimate(tt.reply)
			if err != nil {
				t.Fatalf("ParseEstimate: %v", err)
			}
			if got.Dish != "Köttbullar" {
				t.Errorf("Dish = %q, want %q", got.Dish, "Köttbullar")
			}
			if got.Calories != 650 {
				t.Errorf("Calories = %d, want 650", got.Calories)
			}
			if len(got.Items) != 2 || got.Items[1] != "potatis" {
				t.Errorf("Items = %q", got.Items)
			}
			if got.Portion != "1 tallrik" {
				t.Errorf("Portion = %q", got.Portion)
			}
		})
	}
}

func TestParseEstimateRejects(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"empty", ""},
		{"no json", "Jag kan inte se någon mat på bilden."},
		{"broken json", `{"dish": "Soppa", "calories": }`},
		{"missing dish", `{"calories":300}`},
		{"negative calories", `{"dish":"Soppa","calories":-5}`},
		{"negative fat", `{"dish":"Soppa","calories":200,"fat":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEstimate(tt.reply)
			if !errors.Is(err, domain.ErrEstimationFailed) {
				t.Errorf("err = %v, want ErrEstimationFailed", err)
			}
		})
	}
}
