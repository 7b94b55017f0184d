// Package plan holds the editor state of a meal plan and the pure
// transition function that updates it.
//
// Reduce never modifies the state it is given. Every slice it changes is
// copied, so callers can compare slices by identity to detect updates.
package plan

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"mealplanner/internal/domain"
	"mealplanner/internal/pure"
)

var (
	// ErrNoMealSelected is returned by AddPortion when no meal is selected.
	ErrNoMealSelected = errors.New("no meal selected")
	// ErrMealNotFound is returned when an action names a meal that is not
	// part of the state.
	ErrMealNotFound = errors.New("meal not found")
	// ErrInvalidQuantity is returned for non-positive portion quantities.
	ErrInvalidQuantity = errors.New("quantity must be > 0")
)

// State is the root aggregate of the planner.
type State struct {
	SelectedMeal   string                 `json:"selectedMeal"`
	Meals          []domain.Meal          `json:"meals"`
	Foods          []domain.FoodItem      `json:"-"`
	Categories     []domain.FoodCategory  `json:"-"`
	Blueprints     []domain.MealBlueprint `json:"blueprints"`
	Projects       []domain.Project       `json:"projects"`
	CurrentProject string                 `json:"currentProject"`
	DisplayDate    time.Time              `json:"displayDate"`
}

// Meal returns the meal with the given id.
func (s State) Meal(id string) (domain.Meal, bool) {
	i := s.mealIndex(id)
	if i < 0 {
		return domain.Meal{}, false
	}
	return s.Meals[i], true
}

// Food looks up a cached catalog entry by key.
func (s State) Food(key string) (domain.FoodItem, bool) {
	i := slices.IndexFunc(s.Foods, func(f domain.FoodItem) bool { return f.Key() == key })
	if i < 0 {
		return domain.FoodItem{}, false
	}
	return s.Foods[i], true
}

func (s State) mealIndex(id string) int {
	return slices.IndexFunc(s.Meals, func(m domain.Meal) bool { return m.ID == id })
}

// Reduce applies a to s and returns the new state. On error s is returned
// unchanged. An action type unknown to this package is a programming error
// and panics.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case Initialize:
		next := a.State
		next.Meals = slices.Clone(a.State.Meals)
		if next.mealIndex(next.SelectedMeal) < 0 {
			next.SelectedMeal = firstMealID(next.Meals)
		}
		return next, nil
	case SetSelectedMeal:
		if s.mealIndex(a.MealID) < 0 {
			return s, fmt.Errorf("select %q: %w", a.MealID, ErrMealNotFound)
		}
		s.SelectedMeal = a.MealID
		return s, nil
	case SetMeals:
		return setMeals(s, a.Meals), nil
	case ChangeDisplayDate:
		s.DisplayDate = a.Date
		return setMeals(s, a.Meals), nil
	case SetBlueprints:
		s.Blueprints = slices.Clone(a.Blueprints)
		return s, nil
	case SetFoods:
		s.Foods = slices.Clone(a.Foods)
		return s, nil
	case SetCategories:
		s.Categories = slices.Clone(a.Categories)
		return s, nil
	case SetProjects:
		s.Projects = slices.Clone(a.Projects)
		return s, nil
	case AddPortion:
		return addPortion(s, a.Food)
	case RemovePortion:
		return removePortion(s, a.MealID, a.Portion), nil
	case SetPortionQty:
		return setPortionQty(s, a.MealID, a.Food, a.Qty)
	default:
		panic(fmt.Sprintf("plan: unknown action %T", a))
	}
}

func firstMealID(meals []domain.Meal) string {
	if len(meals) == 0 {
		return ""
	}
	return meals[0].ID
}

func setMeals(s State, meals []domain.Meal) State {
	s.Meals = slices.Clone(meals)
	s.SelectedMeal = firstMealID(meals)
	return s
}

func portionIndex(ps []domain.Portion, food domain.FoodItem) int {
	key := food.Key()
	return slices.IndexFunc(ps, func(p domain.Portion) bool { return p.Food.Key() == key })
}

// addPortion adds one portion of food to the selected meal. An existing
// portion of the same food is incremented in place.
func addPortion(s State, food domain.FoodItem) (State, error) {
	if s.SelectedMeal == "" {
		return s, ErrNoMealSelected
	}
	mealIdx := s.mealIndex(s.SelectedMeal)
	if mealIdx < 0 {
		return s, fmt.Errorf("add portion to %q: %w", s.SelectedMeal, ErrMealNotFound)
	}
	meal := s.Meals[mealIdx]

	portion := domain.Portion{Food: food, Qty: 1}
	portionIdx := portionIndex(meal.Portions, food)
	if portionIdx >= 0 {
		portion.Qty = meal.Portions[portionIdx].Qty + 1
	}

	meal.Portions = pure.Insert(meal.Portions, portion, portionIdx)
	s.Meals = pure.Insert(s.Meals, meal, mealIdx)
	return s, nil
}

// removePortion drops the portion of p.Food from the meal regardless of its
// quantity. Missing meals or portions leave the content unchanged.
func removePortion(s State, mealID string, p domain.Portion) State {
	mealIdx := s.mealIndex(mealID)
	if mealIdx < 0 {
		s.Meals = slices.Clone(s.Meals)
		return s
	}
	meal := s.Meals[mealIdx]
	meal.Portions = pure.Delete(meal.Portions, portionIndex(meal.Portions, p.Food))
	s.Meals = pure.Insert(s.Meals, meal, mealIdx)
	return s
}

func setPortionQty(s State, mealID string, food domain.FoodItem, qty float64) (State, error) {
	if qty <= 0 {
		return s, ErrInvalidQuantity
	}
	mealIdx := s.mealIndex(mealID)
	if mealIdx < 0 {
		return s, fmt.Errorf("set quantity in %q: %w", mealID, ErrMealNotFound)
	}
	meal := s.Meals[mealIdx]
	portionIdx := portionIndex(meal.Portions, food)
	if portionIdx < 0 {
		s.Meals = slices.Clone(s.Meals)
		return s, nil
	}
	p := meal.Portions[portionIdx]
	p.Qty = qty
	meal.Portions = pure.Insert(meal.Portions, p, portionIdx)
	s.Meals = pure.Insert(s.Meals, meal, mealIdx)
	return s, nil
}
