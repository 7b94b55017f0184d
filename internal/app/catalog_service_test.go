package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mealplanner/internal/app"
	"mealplanner/internal/domain"
)

var catalog = []domain.FoodItem{
	{ID: "1", Name: "Rolled Oats", Category: "grain", PortionMultiplier: 1, Energy: 370, Carbohydrates: 60, Protein: 13, Fat: 7},
	{ID: "2", Name: "Chicken Breast", Category: "meat", PortionMultiplier: 1, Energy: 165, Protein: 31, Fat: 3.6},
	{ID: "3", Name: "Apple", Category: "fruit", PortionMultiplier: 1, Energy: 52, Carbohydrates: 14, Protein: 0.3, Fat: 0.2},
}

func catalogRepo() *mockFoodRepo {
	return &mockFoodRepo{
		listFn: func(context.Context, int64) ([]domain.FoodItem, error) { return catalog, nil },
	}
}

func foodIDs(foods []domain.FoodItem) []string {
	ids := make([]string, 0, len(foods))
	for _, f := range foods {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestCatalogService_Foods(t *testing.T) {
	svc := app.NewCatalogService(catalogRepo(), &mockCategoryRepo{}, nil)

	tests := []struct {
		name       string
		query      string
		categories []string
		want       []string
	}{
		{"empty query", "", nil, []string{"1", "2", "3"}},
		{"name", "chicken br", nil, []string{"2"}},
		{"constraint", "fe>10", nil, []string{"1", "2"}},
		{"constraints and category", "fe>10;sz<100", []string{"meat"}, []string{"2"}},
		{"category only", "", []string{"fruit", "grain"}, []string{"1", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Foods(context.Background(), 1, tt.query, tt.categories)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, foodIDs(got)); diff != "" {
				t.Errorf("foods mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCatalogService_AddFood_Invalid(t *testing.T) {
	svc := app.NewCatalogService(&mockFoodRepo{
		addFn: func(context.Context, int64, domain.FoodItem) (domain.FoodItem, error) {
			t.Fatal("repository must not be called for invalid food")
			return domain.FoodItem{}, nil
		},
	}, &mockCategoryRepo{}, nil)

	_, err := svc.AddFood(context.Background(), 1, domain.FoodItem{Name: "x", PortionMultiplier: 0})
	if !errors.Is(err, app.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestCatalogService_UpdateFood_RequiresID(t *testing.T) {
	svc := app.NewCatalogService(&mockFoodRepo{}, &mockCategoryRepo{}, nil)
	err := svc.UpdateFood(context.Background(), 1, domain.FoodItem{Name: "x", PortionMultiplier: 1})
	if !errors.Is(err, app.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestCatalogService_Import(t *testing.T) {
	var added []string
	foods := &mockFoodRepo{
		addFn: func(_ context.Context, _ int64, f domain.FoodItem) (domain.FoodItem, error) {
			added = append(added, f.Name)
			return f, nil
		},
	}
	svc := app.NewCatalogService(foods, &mockCategoryRepo{}, nil)

	n, err := svc.Import(context.Background(), 1,
		[]domain.FoodCategory{{ID: "fruit", Name: "Fruit"}},
		[]domain.FoodItem{{Name: "Apple", PortionMultiplier: 1}, {Name: "Pear", PortionMultiplier: 1}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported foods, got %d", n)
	}
	if diff := cmp.Diff([]string{"Apple", "Pear"}, added); diff != "" {
		t.Errorf("added mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogService_Import_SkipsNonEmptyCatalog(t *testing.T) {
	foods := catalogRepo()
	foods.addFn = func(context.Context, int64, domain.FoodItem) (domain.FoodItem, error) {
		t.Fatal("existing catalog must not be extended")
		return domain.FoodItem{}, nil
	}
	svc := app.NewCatalogService(foods, &mockCategoryRepo{}, nil)

	n, err := svc.Import(context.Background(), 1, nil, []domain.FoodItem{{Name: "Apple", PortionMultiplier: 1}})
	if err != nil || n != 0 {
		t.Errorf("expected (0, nil), got (%d, %v)", n, err)
	}
}
