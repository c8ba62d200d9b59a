package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"kalorikollen/domain"
	"kalorikollen/entities"
	"kalorikollen/pkg/ledger"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LedgerTools holds what the tool handlers need.
type LedgerTools struct {
	Ledger   ledger.LedgerService
	DeviceID string
}

// --- Input types ---

type AddWaterInput struct {
	Amount int `json:"amount" jsonschema:"Amount of water in milliliters, e.g. 250"`
}

type AddWeightInput struct {
	Weight float64 `json:"weight" jsonschema:"Body weight in kilograms, e.g. 72.5"`
}

// --- Output types ---

type todaySummary struct {
	Date              string                         `json:"date"`
	Calories          int                            `json:"calories"`
	RemainingCalories int                            `json:"remaining_calories"`
	Macros            domain.Macros                  `json:"macros"`
	Water             int                            `json:"water"`
	Progress          map[string]domain.GoalProgress `json:"progress"`
	BMI               *domain.BMIReading             `json:"bmi,omitempty"`
	Streak            int                            `json:"streak"`
	Meals             []string                       `json:"meals"`
}

type streakResult struct {
	Streak int              `json:"streak"`
	Badges []entities.Badge `json:"badges"`
}

// --- Handlers ---

func (t *LedgerTools) TodaySummary(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	d, err := t.Ledger.Dashboard(ctx, t.DeviceID)
	if err != nil {
		return toolError("Failed to build summary: %v", err), nil, nil
	}

	meals := make([]string, 0, len(d.TodaysMeals))
	for _, m := range d.TodaysMeals {
		meals = append(meals, fmt.Sprintf("%s %s (%d kcal)", m.TimeStr, m.Dish, m.Calories))
	}
	return toolJSON(todaySummary{
		Date:              d.Date,
		Calories:          d.Calories,
		RemainingCalories: d.RemainingCalories,
		Macros:            d.Macros,
		Water:             d.Water,
		Progress:          d.Progress,
		BMI:               d.BMI,
		Streak:            d.Streak,
		Meals:             meals,
	})
}

func (t *LedgerTools) WeeklyStats(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	d, err := t.Ledger.Dashboard(ctx, t.DeviceID)
	if err != nil {
		return toolError("Failed to compute weekly stats: %v", err), nil, nil
	}
	return toolJSON(d.Weekly)
}

func (t *LedgerTools) Streak(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	d, err := t.Ledger.Dashboard(ctx, t.DeviceID)
	if err != nil {
		return toolError("Failed to compute streak: %v", err), nil, nil
	}
	return toolJSON(streakResult{Streak: d.Streak, Badges: d.Badges})
}

func (t *LedgerTools) AddWater(ctx context.Context, _ *mcp.CallToolRequest, input AddWaterInput) (*mcp.CallToolResult, any, error) {
	if input.Amount <= 0 {
		return toolError("Amount must be a positive number of milliliters"), nil, nil
	}
	sample, err := t.Ledger.AddWater(ctx, t.DeviceID, input.Amount)
	if err != nil {
		return toolError("Failed to add water: %v", err), nil, nil
	}
	return toolJSON(sample)
}

func (t *LedgerTools) AddWeight(ctx context.Context, _ *mcp.CallToolRequest, input AddWeightInput) (*mcp.CallToolResult, any, error) {
	if input.Weight <= 0 {
		return toolError("Weight must be a positive number of kilograms"), nil, nil
	}
	sample, err := t.Ledger.AddWeight(ctx, t.DeviceID, input.Weight)
	if err != nil {
		return toolError("Failed to add weight: %v", err), nil, nil
	}
	return toolJSON(sample)
}

func (t *LedgerTools) ExportData(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	doc, err := t.Ledger.Export(ctx, t.DeviceID)
	if err != nil {
		return toolError("Failed to export: %v", err), nil, nil
	}
	data, err := ledger.EncodeExport(doc)
	if err != nil {
		return toolError("Failed to encode export: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
