// Package filter compiles search text into predicates over catalog foods.
//
// Text without any of the characters "<>=;" matches food names. Otherwise
// the text is split at ";" and every segment is read as a nutrient
// constraint such as "fe > 5" or "sz<=12,5". Constraints are joined with a
// logical AND and segments that do not parse are ignored.
package filter

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"mealplanner/internal/domain"
)

// Predicate reports whether a food passes the filter.
type Predicate func(domain.FoodItem) bool

// Epsilon is the tolerance of the "=" and "==" comparisons.
const Epsilon = 1e-4

// Shorthands maps the tokens accepted in constraints to nutrients.
var Shorthands = map[string]domain.NutrientKey{
	"sz": domain.Carbohydrates,
	"en": domain.Energy,
	"zs": domain.Fat,
	"fe": domain.Protein,
}

type comparator func(have, want float64) bool

var comparators = map[string]comparator{
	"=":  approxEqual,
	"==": approxEqual,
	"<":  func(have, want float64) bool { return have < want },
	">":  func(have, want float64) bool { return have > want },
	"<=": func(have, want float64) bool { return have <= want },
	">=": func(have, want float64) bool { return have >= want },
}

func approxEqual(have, want float64) bool {
	return math.Abs(have-want) < Epsilon
}

// e.g. "fe<5,25" -> [fe, <, 5,25]. Trailing text after the number makes
// the whole segment malformed.
var segmentRe = regexp.MustCompile(`^(.*?)(==|<=|>=|<|>|=)((?:[1-9][0-9]*|0)(?:[.,][0-9]+)?)$`)

// All accepts every food.
func All(domain.FoodItem) bool { return true }

// Parse compiles text into a Predicate. It never fails: malformed input
// degrades to fewer constraints, and no constraints at all accept every
// food.
func Parse(text string) Predicate {
	if text == "" {
		return All
	}
	if !containsComparison(text) {
		return Name(text)
	}

	var parts []Predicate
	for _, segment := range strings.Split(text, ";") {
		if p, ok := parseConstraint(stripSpace(segment)); ok {
			parts = append(parts, p)
		}
	}
	return And(parts...)
}

func containsComparison(s string) bool {
	return strings.ContainsAny(s, "<>=;")
}

func parseConstraint(sgm string) (Predicate, bool) {
	m := segmentRe.FindStringSubmatch(sgm)
	if m == nil {
		return nil, false
	}
	name := strings.ToLower(m[1])
	key, ok := Shorthands[name]
	if !ok {
		var err error
		if key, err = domain.ParseNutrientKey(name); err != nil {
			return nil, false
		}
	}
	want, err := strconv.ParseFloat(strings.Replace(m[3], ",", ".", 1), 64)
	if err != nil {
		return nil, false
	}
	cmp := comparators[m[2]]
	return func(f domain.FoodItem) bool {
		return cmp(f.Nutrient(key), want)
	}, true
}

// Name matches foods whose name contains s, ignoring case and whitespace.
func Name(s string) Predicate {
	search := stripSpace(strings.ToLower(s))
	return func(f domain.FoodItem) bool {
		return strings.Contains(stripSpace(strings.ToLower(f.Name)), search)
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// And accepts a food when every predicate does. With no predicates it
// accepts everything.
func And(preds ...Predicate) Predicate {
	if len(preds) == 0 {
		return All
	}
	return func(f domain.FoodItem) bool {
		for _, p := range preds {
			if !p(f) {
				return false
			}
		}
		return true
	}
}

// Categories accepts foods whose category is checked.
func Categories(checked map[string]bool) Predicate {
	return func(f domain.FoodItem) bool {
		return checked[f.Category]
	}
}

// AllCategories returns a selection with every category checked.
func AllCategories(categories []domain.FoodCategory) map[string]bool {
	chk := make(map[string]bool, len(categories))
	for _, c := range categories {
		chk[c.ID] = true
	}
	return chk
}

// Apply returns the foods that pass p, keeping their order.
func Apply(foods []domain.FoodItem, p Predicate) []domain.FoodItem {
	out := make([]domain.FoodItem, 0, len(foods))
	for _, f := range foods {
		if p(f) {
			out = append(out, f)
		}
	}
	return out
}
