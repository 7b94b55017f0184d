package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mealplanner/internal/app"
	"mealplanner/internal/domain"
)

func TestSummarize(t *testing.T) {
	oats := domain.FoodItem{ID: "oats", Name: "Oats", RefAmount: 40, RefUnit: "g", PortionMultiplier: 1.5, Energy: 100, Carbohydrates: 10}
	meals := []domain.Meal{
		{ID: "m1", Name: "Breakfast", Portions: []domain.Portion{{Food: oats, Qty: 2}},
			Limits: domain.NutrientLimits{}.With(domain.Energy, domain.Between(300, 500))},
		{ID: "m2", Name: "Lunch", Portions: []domain.Portion{{Food: oats, Qty: 1}},
			Limits: domain.NutrientLimits{}.With(domain.Energy, domain.Interval{Max: domain.Bound(50)})},
	}

	got := app.NewSummaryService(&mockMealRepo{}).Summarize(meals)
	if len(got.Meals) != 2 {
		t.Fatalf("expected 2 meal summaries, got %d", len(got.Meals))
	}

	line := got.Meals[0].Portions[0]
	if line.FoodID != "oats" || line.Amount != 120 || line.Unit != "g" || line.Nutrients[domain.Carbohydrates] != 20 {
		t.Errorf("unexpected portion line %+v", line)
	}

	breakfast := got.Meals[0].Cells[0]
	if breakfast.Nutrient != domain.Energy || breakfast.Sum != 200 || !breakfast.TooLow {
		t.Errorf("unexpected breakfast energy cell %+v", breakfast)
	}
	lunch := got.Meals[1].Cells[0]
	if !lunch.TooHigh || lunch.MinLabel != "-" || lunch.MaxLabel != "< 50" {
		t.Errorf("unexpected lunch energy cell %+v", lunch)
	}

	total := got.Total[0]
	if total.Sum != 300 || total.MinLabel != "> 300" || total.MaxLabel != "< 550" {
		t.Errorf("unexpected total energy cell %+v", total)
	}
	if total.TooLow || total.TooHigh {
		t.Errorf("300 kcal is within [300, 550], got %+v", total)
	}
}

func TestDaily_BadDays(t *testing.T) {
	_, err := app.NewSummaryService(&mockMealRepo{}).Daily(context.Background(), 1, "p", 0)
	if !errors.Is(err, app.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestDaily_GroupsByDay(t *testing.T) {
	food := domain.FoodItem{ID: "f", Name: "F", PortionMultiplier: 1, Protein: 10}
	var gotBegin, gotEnd time.Time
	repo := &mockMealRepo{
		listFn: func(_ context.Context, _ int64, _ string, begin, end time.Time) ([]domain.Meal, error) {
			gotBegin, gotEnd = begin, end
			return []domain.Meal{
				{ID: "a", Date: domain.Day(end), Portions: []domain.Portion{{Food: food, Qty: 1}}},
				{ID: "b", Date: domain.Day(end), Portions: []domain.Portion{{Food: food, Qty: 2}}},
			}, nil
		},
	}

	points, err := app.NewSummaryService(repo).Daily(context.Background(), 1, "p", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if gotEnd.Sub(gotBegin) >= 72*time.Hour || gotEnd.Sub(gotBegin) < 71*time.Hour {
		t.Errorf("unexpected range %v .. %v", gotBegin, gotEnd)
	}

	last := points[2]
	if last.Meals != 2 {
		t.Errorf("expected 2 meals on the last day, got %d", last.Meals)
	}
	for _, c := range last.Cells {
		if c.Nutrient == domain.Protein && c.Sum != 30 {
			t.Errorf("expected 30g protein, got %v", c.Sum)
		}
	}
	if points[0].Meals != 0 || points[0].Cells[0].Sum != 0 {
		t.Errorf("expected an empty first day, got %+v", points[0])
	}
}
