package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique name or id is already taken.
	ErrConflict = errors.New("already exists")
)

// FoodRepository is the port for the food catalog.
type FoodRepository interface {
	ListFoods(ctx context.Context, userID int64) ([]FoodItem, error)
	AddFood(ctx context.Context, userID int64, f FoodItem) (FoodItem, error)
	UpdateFood(ctx context.Context, userID int64, f FoodItem) error
}

// CategoryRepository is the port for food categories.
type CategoryRepository interface {
	ListCategories(ctx context.Context, userID int64) ([]FoodCategory, error)
	AddCategory(ctx context.Context, userID int64, c FoodCategory) (FoodCategory, error)
}

// ProjectRepository is the port for meal-plan projects.
type ProjectRepository interface {
	ListProjects(ctx context.Context, userID int64) ([]Project, error)
	// AddProject stores the project and its blueprints, returning both with
	// their assigned ids.
	AddProject(ctx context.Context, userID int64, p Project, bps []MealBlueprint) (Project, []MealBlueprint, error)
}

// BlueprintRepository is the port for meal blueprints.
type BlueprintRepository interface {
	// ListBlueprints returns the project's blueprints sorted by order.
	ListBlueprints(ctx context.Context, userID int64, projectID string) ([]MealBlueprint, error)
	AddBlueprint(ctx context.Context, userID int64, projectID string, bp MealBlueprint) (MealBlueprint, error)
}

// MealRepository is the port for dated meals.
type MealRepository interface {
	// ListMeals returns meals dated within [begin, end], sorted by date then
	// order.
	ListMeals(ctx context.Context, userID int64, projectID string, begin, end time.Time) ([]Meal, error)
	AddMeal(ctx context.Context, userID int64, projectID string, m Meal) (Meal, error)
	// AddMeals stores all of meals or none of them.
	AddMeals(ctx context.Context, userID int64, projectID string, meals []Meal) ([]Meal, error)
	UpdateMeal(ctx context.Context, userID int64, projectID string, m Meal) error
}

// SessionInfoRepository stores the editor state of each user.
type SessionInfoRepository interface {
	GetSessionInfo(ctx context.Context, userID int64) (*SessionInfo, error)
	SaveSessionInfo(ctx context.Context, userID int64, s SessionInfo) error
}
