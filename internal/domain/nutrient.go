package domain

import "fmt"

// NutrientKey names one of the tracked nutrients.
type NutrientKey string

// Tracked nutrients.
const (
	Energy        NutrientKey = "energy"
	Carbohydrates NutrientKey = "carbohydrates"
	Protein       NutrientKey = "protein"
	Fat           NutrientKey = "fat"
)

// Nutrients lists every NutrientKey in display order.
var Nutrients = [...]NutrientKey{Energy, Carbohydrates, Protein, Fat}

// Unit returns the display unit of the nutrient.
func (k NutrientKey) Unit() string {
	if k == Energy {
		return "kcal"
	}
	return "g"
}

// ParseNutrientKey validates a nutrient name.
func ParseNutrientKey(s string) (NutrientKey, error) {
	for _, k := range Nutrients {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown nutrient %q", s)
}
