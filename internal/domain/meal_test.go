package domain_test

import (
	"math"
	"testing"
	"time"

	"mealplanner/internal/domain"
)

func TestSortMeals(t *testing.T) {
	d1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	meals := []domain.Meal{
		{ID: "c", Date: d2, Order: 0},
		{ID: "b", Date: d1, Order: 2},
		{ID: "a", Date: d1, Order: 1},
	}
	domain.SortMeals(meals)

	got := []string{meals[0].ID, meals[1].ID, meals[2].ID}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v; want %v", got, want)
		}
	}
}

func TestSortBlueprints(t *testing.T) {
	bps := []domain.MealBlueprint{{Name: "dinner", Order: 3}, {Name: "breakfast", Order: 1}, {Name: "lunch", Order: 2}}
	domain.SortBlueprints(bps)
	if bps[0].Name != "breakfast" || bps[2].Name != "dinner" {
		t.Fatalf("unexpected order: %+v", bps)
	}
}

func TestBlueprintNewMeal(t *testing.T) {
	bp := domain.MealBlueprint{Name: "Lunch", Order: 2, Limits: domain.NutrientLimits{Energy: domain.Between(400, 700)}}
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m := bp.NewMeal("m1", date)
	if m.ID != "m1" || m.Name != "Lunch" || m.Order != 2 || !m.Date.Equal(date) {
		t.Fatalf("unexpected meal: %+v", m)
	}
	if m.Portions == nil || len(m.Portions) != 0 {
		t.Fatalf("expected empty non-nil portions, got %v", m.Portions)
	}
}

func TestBlueprintValidate(t *testing.T) {
	tests := []struct {
		name    string
		bp      domain.MealBlueprint
		wantErr bool
	}{
		{"valid", domain.MealBlueprint{Name: "x", Limits: domain.NutrientLimits{Fat: domain.Between(1, 2)}}, false},
		{"unset limits allowed", domain.MealBlueprint{Name: "x"}, false},
		{"missing name", domain.MealBlueprint{}, true},
		{"both bounds open", domain.MealBlueprint{Name: "x", Limits: domain.NutrientLimits{
			Protein: domain.Interval{Min: domain.Bound(math.Inf(-1)), Max: domain.Bound(math.Inf(1))},
		}}, true},
		{"inverted", domain.MealBlueprint{Name: "x", Limits: domain.NutrientLimits{Energy: domain.Between(5, 1)}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.bp.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v; wantErr %v", err, tc.wantErr)
			}
		})
	}
}
