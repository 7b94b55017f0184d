// Package nutrition sums nutrients over portions and checks the sums
// against meal limits.
package nutrition

import "mealplanner/internal/domain"

// Sum returns Σ food[k] × qty over ps.
func Sum(ps []domain.Portion, k domain.NutrientKey) float64 {
	var sum float64
	for _, p := range ps {
		sum += p.Food.Nutrient(k) * p.Qty
	}
	return sum
}

// Totals returns Sum for every tracked nutrient.
func Totals(ps []domain.Portion) map[domain.NutrientKey]float64 {
	out := make(map[domain.NutrientKey]float64, len(domain.Nutrients))
	for _, k := range domain.Nutrients {
		out[k] = Sum(ps, k)
	}
	return out
}

// MergeLimits adds up the limits of several meals, per nutrient and per
// bound. Only finite bounds contribute; a meal with no minimum counts as a
// minimum of zero, so both bounds of the result are always present.
func MergeLimits(meals []domain.Meal) domain.NutrientLimits {
	var out domain.NutrientLimits
	for _, k := range domain.Nutrients {
		var lo, hi float64
		for _, m := range meals {
			in := m.Limits.Get(k)
			if v, ok := in.FiniteMin(); ok {
				lo += v
			}
			if v, ok := in.FiniteMax(); ok {
				hi += v
			}
		}
		out = out.With(k, domain.Between(lo, hi))
	}
	return out
}

// CombinePortions concatenates the portions of all meals. The same food in
// two meals yields two portions.
func CombinePortions(meals []domain.Meal) []domain.Portion {
	n := 0
	for _, m := range meals {
		n += len(m.Portions)
	}
	out := make([]domain.Portion, 0, n)
	for _, m := range meals {
		out = append(out, m.Portions...)
	}
	return out
}

// Combined is the aggregate of several meals, used for daily totals.
type Combined struct {
	Portions []domain.Portion
	Limits   domain.NutrientLimits
}

// Combine merges meals into one portion list and one limit set.
func Combine(meals []domain.Meal) Combined {
	return Combined{
		Portions: CombinePortions(meals),
		Limits:   MergeLimits(meals),
	}
}
