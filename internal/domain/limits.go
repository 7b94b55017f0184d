package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Interval is an optional [Min, Max] range. A nil bound was never configured.
// A bound holding an infinite value was explicitly left open.
type Interval struct {
	Min *float64
	Max *float64
}

// Bound returns a pointer to v, for building Interval literals.
func Bound(v float64) *float64 { return &v }

// Between returns the closed interval [min, max].
func Between(min, max float64) Interval {
	return Interval{Min: Bound(min), Max: Bound(max)}
}

// IsUnset reports whether neither bound was configured.
func (in Interval) IsUnset() bool {
	return in.Min == nil && in.Max == nil
}

// FiniteMin returns the lower bound when it is present and finite.
func (in Interval) FiniteMin() (float64, bool) {
	return finite(in.Min)
}

// FiniteMax returns the upper bound when it is present and finite.
func (in Interval) FiniteMax() (float64, bool) {
	return finite(in.Max)
}

func finite(p *float64) (float64, bool) {
	if p == nil || math.IsInf(*p, 0) || math.IsNaN(*p) {
		return 0, false
	}
	return *p, true
}

// MarshalJSON writes an explicitly open bound as null and omits unset ones.
func (in Interval) MarshalJSON() ([]byte, error) {
	m := make(map[string]*float64, 2)
	if in.Min != nil {
		m["min"] = jsonBound(*in.Min)
	}
	if in.Max != nil {
		m["max"] = jsonBound(*in.Max)
	}
	return json.Marshal(m)
}

func jsonBound(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// UnmarshalJSON reads {"min": x, "max": y}. A key present with a null value
// becomes an explicitly open bound.
func (in *Interval) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("interval: %w", err)
	}
	out := Interval{}
	for key, open := range map[string]float64{"min": math.Inf(-1), "max": math.Inf(1)} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		bound := open
		if !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			if err := json.Unmarshal(v, &bound); err != nil {
				return fmt.Errorf("interval %s: %w", key, err)
			}
		}
		if key == "min" {
			out.Min = Bound(bound)
		} else {
			out.Max = Bound(bound)
		}
	}
	*in = out
	return nil
}

// NutrientLimits constrains every tracked nutrient. All four keys are always
// present; an unconfigured nutrient holds the zero Interval.
type NutrientLimits struct {
	Energy        Interval `json:"energy"`
	Carbohydrates Interval `json:"carbohydrates"`
	Protein       Interval `json:"protein"`
	Fat           Interval `json:"fat"`
}

// Get returns the interval for k.
func (l NutrientLimits) Get(k NutrientKey) Interval {
	switch k {
	case Energy:
		return l.Energy
	case Carbohydrates:
		return l.Carbohydrates
	case Protein:
		return l.Protein
	case Fat:
		return l.Fat
	}
	return Interval{}
}

// With returns a copy of l with k set to in.
func (l NutrientLimits) With(k NutrientKey, in Interval) NutrientLimits {
	switch k {
	case Energy:
		l.Energy = in
	case Carbohydrates:
		l.Carbohydrates = in
	case Protein:
		l.Protein = in
	case Fat:
		l.Fat = in
	}
	return l
}

// UnmarshalJSON accepts both the interval object and the older bare-number
// form for each nutrient. A bare number n is read as the ceiling {max: n}.
// Missing or null nutrients are unset.
func (l *NutrientLimits) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	out := NutrientLimits{}
	for _, k := range Nutrients {
		v, ok := raw[string(k)]
		if !ok {
			continue
		}
		v = bytes.TrimSpace(v)
		if len(v) == 0 || bytes.Equal(v, []byte("null")) {
			continue
		}
		var in Interval
		if v[0] == '{' {
			if err := json.Unmarshal(v, &in); err != nil {
				return fmt.Errorf("limits %s: %w", k, err)
			}
		} else {
			var n float64
			if err := json.Unmarshal(v, &n); err != nil {
				return fmt.Errorf("limits %s: %w", k, err)
			}
			in = Interval{Max: Bound(n)}
		}
		out = out.With(k, in)
	}
	*l = out
	return nil
}
