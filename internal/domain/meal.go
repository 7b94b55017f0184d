package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Portion pairs a food with a count of portions (not grams).
type Portion struct {
	Food FoodItem `json:"food"`
	Qty  float64  `json:"qty"`
}

// Meal is a named, dated collection of portions belonging to one project.
// Portions keep insertion order and hold at most one entry per food.
type Meal struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Portions []Portion      `json:"portions"`
	Limits   NutrientLimits `json:"limits"`
	Date     time.Time      `json:"date"`
	Order    int            `json:"order"`
}

// MealBlueprint is a template for recurring meals.
type MealBlueprint struct {
	ID     string         `json:"id,omitempty"`
	Name   string         `json:"name"`
	Limits NutrientLimits `json:"limits"`
	Order  int            `json:"order"`
}

// Project groups blueprints and meals into one plan.
type Project struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// SessionInfo is the per-user editor state that survives reloads.
type SessionInfo struct {
	CurrentProject string    `json:"currentProject"`
	DisplayDate    time.Time `json:"displayDate"`
}

// NewMeal creates an empty meal for date from a blueprint.
func (b MealBlueprint) NewMeal(id string, date time.Time) Meal {
	return Meal{
		ID:       id,
		Name:     b.Name,
		Portions: []Portion{},
		Limits:   b.Limits,
		Date:     date,
		Order:    b.Order,
	}
}

// Validate checks that the blueprint is named and that every configured
// nutrient carries at least one bound.
func (b MealBlueprint) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("blueprint name is required")
	}
	for _, k := range Nutrients {
		in := b.Limits.Get(k)
		_, hasMin := in.FiniteMin()
		_, hasMax := in.FiniteMax()
		if !in.IsUnset() && !hasMin && !hasMax {
			return errors.New(string(k) + ": need at least one limit")
		}
		if hasMin && hasMax && *in.Min > *in.Max {
			return errors.New(string(k) + ": min is greater than max")
		}
	}
	return nil
}

// SortMeals orders meals by date, then by order within a day.
func SortMeals(meals []Meal) {
	sort.SliceStable(meals, func(i, j int) bool {
		if !meals[i].Date.Equal(meals[j].Date) {
			return meals[i].Date.Before(meals[j].Date)
		}
		return meals[i].Order < meals[j].Order
	})
}

// SortBlueprints orders blueprints by their order field.
func SortBlueprints(bps []MealBlueprint) {
	sort.SliceStable(bps, func(i, j int) bool {
		return bps[i].Order < bps[j].Order
	})
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
