package plan

import (
	"time"

	"mealplanner/internal/domain"
)

// Action is a state transition request. The set of actions is closed; Reduce
// handles every type declared in this file.
type Action interface {
	isAction()
}

// Initialize replaces the whole state.
type Initialize struct {
	State State
}

// SetSelectedMeal makes MealID the target of AddPortion.
type SetSelectedMeal struct {
	MealID string
}

// SetMeals replaces the visible meals and selects the first one.
type SetMeals struct {
	Meals []domain.Meal
}

// SetBlueprints replaces the cached blueprints.
type SetBlueprints struct {
	Blueprints []domain.MealBlueprint
}

// SetFoods replaces the cached food catalog.
type SetFoods struct {
	Foods []domain.FoodItem
}

// SetCategories replaces the cached food categories.
type SetCategories struct {
	Categories []domain.FoodCategory
}

// SetProjects replaces the cached project list.
type SetProjects struct {
	Projects []domain.Project
}

// AddPortion adds one portion of Food to the selected meal.
type AddPortion struct {
	Food domain.FoodItem
}

// RemovePortion drops every portion of Portion.Food from the meal MealID.
type RemovePortion struct {
	MealID  string
	Portion domain.Portion
}

// SetPortionQty sets the quantity of Food inside the meal MealID.
type SetPortionQty struct {
	MealID string
	Food   domain.FoodItem
	Qty    float64
}

// ChangeDisplayDate switches to another day along with the meals fetched
// for it.
type ChangeDisplayDate struct {
	Date  time.Time
	Meals []domain.Meal
}

func (Initialize) isAction()        {}
func (SetSelectedMeal) isAction()   {}
func (SetMeals) isAction()          {}
func (SetBlueprints) isAction()     {}
func (SetFoods) isAction()          {}
func (SetCategories) isAction()     {}
func (SetProjects) isAction()       {}
func (AddPortion) isAction()        {}
func (RemovePortion) isAction()     {}
func (SetPortionQty) isAction()     {}
func (ChangeDisplayDate) isAction() {}
