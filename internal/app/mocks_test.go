package app_test

import (
	"context"
	"time"

	"mealplanner/internal/domain"
)

type mockFoodRepo struct {
	listFn   func(ctx context.Context, userID int64) ([]domain.FoodItem, error)
	addFn    func(ctx context.Context, userID int64, f domain.FoodItem) (domain.FoodItem, error)
	updateFn func(ctx context.Context, userID int64, f domain.FoodItem) error
}

func (m *mockFoodRepo) ListFoods(ctx context.Context, userID int64) ([]domain.FoodItem, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFoodRepo) AddFood(ctx context.Context, userID int64, f domain.FoodItem) (domain.FoodItem, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, f)
	}
	f.ID = "new"
	return f, nil
}

func (m *mockFoodRepo) UpdateFood(ctx context.Context, userID int64, f domain.FoodItem) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, f)
	}
	return nil
}

type mockCategoryRepo struct {
	listFn func(ctx context.Context, userID int64) ([]domain.FoodCategory, error)
	addFn  func(ctx context.Context, userID int64, c domain.FoodCategory) (domain.FoodCategory, error)
}

func (m *mockCategoryRepo) ListCategories(ctx context.Context, userID int64) ([]domain.FoodCategory, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockCategoryRepo) AddCategory(ctx context.Context, userID int64, c domain.FoodCategory) (domain.FoodCategory, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, c)
	}
	return c, nil
}

type mockMealRepo struct {
	listFn   func(ctx context.Context, userID int64, projectID string, begin, end time.Time) ([]domain.Meal, error)
	addFn    func(ctx context.Context, userID int64, projectID string, m domain.Meal) (domain.Meal, error)
	addAllFn func(ctx context.Context, userID int64, projectID string, meals []domain.Meal) ([]domain.Meal, error)
	updateFn func(ctx context.Context, userID int64, projectID string, m domain.Meal) error
}

func (m *mockMealRepo) ListMeals(ctx context.Context, userID int64, projectID string, begin, end time.Time) ([]domain.Meal, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, projectID, begin, end)
	}
	return nil, nil
}

func (m *mockMealRepo) AddMeal(ctx context.Context, userID int64, projectID string, meal domain.Meal) (domain.Meal, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, projectID, meal)
	}
	return meal, nil
}

func (m *mockMealRepo) AddMeals(ctx context.Context, userID int64, projectID string, meals []domain.Meal) ([]domain.Meal, error) {
	if m.addAllFn != nil {
		return m.addAllFn(ctx, userID, projectID, meals)
	}
	return meals, nil
}

func (m *mockMealRepo) UpdateMeal(ctx context.Context, userID int64, projectID string, meal domain.Meal) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, projectID, meal)
	}
	return nil
}
