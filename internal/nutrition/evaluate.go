package nutrition

import (
	"strconv"

	"mealplanner/internal/domain"
)

// Bound labels for limits that carry no number.
const (
	LabelUnset     = "?"
	LabelUnbounded = "-"
)

// Evaluation classifies a value against an interval and carries the
// labels displayed next to it.
type Evaluation struct {
	TooLow   bool   `json:"tooLow"`
	TooHigh  bool   `json:"tooHigh"`
	MinLabel string `json:"minLabel"`
	MaxLabel string `json:"maxLabel"`
}

// Evaluate compares value with in for nutrient k. Missing or infinite bounds
// never trigger; an interval with no configured bound is labelled unset,
// while a configured but open bound is labelled unbounded.
func Evaluate(value float64, in domain.Interval, k domain.NutrientKey) Evaluation {
	ev := Evaluation{MinLabel: LabelUnset, MaxLabel: LabelUnset}
	if in.IsUnset() {
		return ev
	}
	ev.MinLabel = LabelUnbounded
	ev.MaxLabel = LabelUnbounded

	if lo, ok := in.FiniteMin(); ok {
		ev.MinLabel = "> " + FormatNutrient(lo, k, false)
		ev.TooLow = value < lo
	}
	if hi, ok := in.FiniteMax(); ok {
		ev.MaxLabel = "< " + FormatNutrient(hi, k, false)
		ev.TooHigh = value > hi
	}
	return ev
}

// FormatNutrient renders a nutrient amount: energy without decimals, the
// rest with two.
func FormatNutrient(v float64, k domain.NutrientKey, withUnit bool) string {
	prec := 2
	if k == domain.Energy {
		prec = 0
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if withUnit {
		s += k.Unit()
	}
	return s
}

// Cell is one nutrient column of a footer row.
type Cell struct {
	Nutrient domain.NutrientKey `json:"nutrient"`
	Sum      float64            `json:"sum"`
	Display  string             `json:"display"`
	Evaluation
}

// Footer evaluates every nutrient of ps against limits.
func Footer(ps []domain.Portion, limits domain.NutrientLimits) []Cell {
	cells := make([]Cell, 0, len(domain.Nutrients))
	for _, k := range domain.Nutrients {
		sum := Sum(ps, k)
		cells = append(cells, Cell{
			Nutrient:   k,
			Sum:        sum,
			Display:    FormatNutrient(sum, k, true),
			Evaluation: Evaluate(sum, limits.Get(k), k),
		})
	}
	return cells
}
