package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mealplanner/internal/domain"
	"mealplanner/internal/filter"
)

// ErrInvalid wraps every input validation failure returned by the services.
var ErrInvalid = errors.New("invalid input")

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

// CatalogService encapsulates food catalog use cases.
type CatalogService struct {
	foods      domain.FoodRepository
	categories domain.CategoryRepository
	log        *zap.Logger
}

// NewCatalogService creates a CatalogService backed by the given repositories.
func NewCatalogService(foods domain.FoodRepository, categories domain.CategoryRepository, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{foods: foods, categories: categories, log: log}
}

// Foods returns the catalog entries matching the filter expression query.
// When categories is non-empty only foods in one of them are returned.
func (s *CatalogService) Foods(ctx context.Context, userID int64, query string, categories []string) ([]domain.FoodItem, error) {
	all, err := s.foods.ListFoods(ctx, userID)
	if err != nil {
		return nil, err
	}
	pred := filter.Parse(query)
	if len(categories) > 0 {
		checked := make(map[string]bool, len(categories))
		for _, c := range categories {
			checked[c] = true
		}
		pred = filter.And(pred, filter.Categories(checked))
	}
	return filter.Apply(all, pred), nil
}

// AddFood validates and stores a new catalog entry.
func (s *CatalogService) AddFood(ctx context.Context, userID int64, f domain.FoodItem) (domain.FoodItem, error) {
	if err := f.Validate(); err != nil {
		return domain.FoodItem{}, invalid(err)
	}
	return s.foods.AddFood(ctx, userID, f)
}

// UpdateFood replaces an existing catalog entry.
func (s *CatalogService) UpdateFood(ctx context.Context, userID int64, f domain.FoodItem) error {
	if f.ID == "" {
		return invalid(errors.New("id is required"))
	}
	if err := f.Validate(); err != nil {
		return invalid(err)
	}
	return s.foods.UpdateFood(ctx, userID, f)
}

// Categories lists the user's food categories.
func (s *CatalogService) Categories(ctx context.Context, userID int64) ([]domain.FoodCategory, error) {
	return s.categories.ListCategories(ctx, userID)
}

// AddCategory validates and stores a category.
func (s *CatalogService) AddCategory(ctx context.Context, userID int64, c domain.FoodCategory) (domain.FoodCategory, error) {
	if err := c.Validate(); err != nil {
		return domain.FoodCategory{}, invalid(err)
	}
	return s.categories.AddCategory(ctx, userID, c)
}

// Import loads a catalog into an empty account. Accounts that already have
// foods are left alone and Import reports zero imported foods.
func (s *CatalogService) Import(ctx context.Context, userID int64, categories []domain.FoodCategory, foods []domain.FoodItem) (int, error) {
	existing, err := s.foods.ListFoods(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, c := range categories {
		if _, err := s.AddCategory(ctx, userID, c); err != nil {
			return 0, fmt.Errorf("import category %q: %w", c.ID, err)
		}
	}
	for i, f := range foods {
		if _, err := s.AddFood(ctx, userID, f); err != nil {
			return i, fmt.Errorf("import food %q: %w", f.Name, err)
		}
	}
	s.log.Info("catalog imported",
		zap.Int64("user_id", userID),
		zap.Int("categories", len(categories)),
		zap.Int("foods", len(foods)),
	)
	return len(foods), nil
}
