package domain

import (
	"errors"
	"math"
	"strings"
)

// FoodItem is a catalog entry. Nutrient values are given per reference amount.
type FoodItem struct {
	ID                string  `json:"id,omitempty"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	RefAmount         float64 `json:"refAmount"`
	RefUnit           string  `json:"refUnit"`
	PortionMultiplier float64 `json:"portionMultiplier"`
	Energy            float64 `json:"energy"`
	Carbohydrates     float64 `json:"carbohydrates"`
	Protein           float64 `json:"protein"`
	Fat               float64 `json:"fat"`
	Comment           string  `json:"comment,omitempty"`
}

// FoodCategory is a flat tag used to filter the catalog.
type FoodCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Key identifies the food: its ID, or its name for records that were never
// persisted.
func (f FoodItem) Key() string {
	if f.ID != "" {
		return f.ID
	}
	return f.Name
}

// Nutrient returns the value of the given nutrient.
func (f FoodItem) Nutrient(k NutrientKey) float64 {
	switch k {
	case Energy:
		return f.Energy
	case Carbohydrates:
		return f.Carbohydrates
	case Protein:
		return f.Protein
	case Fat:
		return f.Fat
	}
	return 0
}

// Validate checks the invariants of a catalog entry.
func (f FoodItem) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("name is required")
	}
	if f.PortionMultiplier <= 0 || math.IsInf(f.PortionMultiplier, 0) || math.IsNaN(f.PortionMultiplier) {
		return errors.New("portionMultiplier must be > 0")
	}
	if f.RefAmount < 0 {
		return errors.New("refAmount must be >= 0")
	}
	for _, k := range Nutrients {
		v := f.Nutrient(k)
		if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return errors.New(string(k) + " must be a non-negative number")
		}
	}
	return nil
}

// Validate checks that the category has an id and a name.
func (c FoodCategory) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("category id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("category name is required")
	}
	return nil
}
