// Package seed reads a starter food catalog from YAML.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mealplanner/internal/domain"
)

//go:embed default.yaml
var defaultCatalog []byte

// Catalog is a set of categories and foods ready to import.
type Catalog struct {
	Categories []domain.FoodCategory
	Foods      []domain.FoodItem
}

type yamlCatalog struct {
	Categories []yamlCategory `yaml:"categories"`
	Foods      []yamlFood     `yaml:"foods"`
}

type yamlCategory struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type yamlFood struct {
	Name              string   `yaml:"name"`
	Category          string   `yaml:"category"`
	RefAmount         float64  `yaml:"ref_amount"`
	RefUnit           string   `yaml:"ref_unit"`
	PortionMultiplier *float64 `yaml:"portion_multiplier"`
	Energy            float64  `yaml:"energy"`
	Carbohydrates     float64  `yaml:"carbohydrates"`
	Protein           float64  `yaml:"protein"`
	Fat               float64  `yaml:"fat"`
	Comment           string   `yaml:"comment"`
}

// Default returns the catalog bundled with the binary.
func Default() (Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path. An empty path selects the bundled
// catalog.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("seed: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML catalog. Foods must reference a
// declared category when they name one; a missing portion multiplier
// defaults to 1.
func Parse(b []byte) (Catalog, error) {
	var raw yamlCatalog
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return Catalog{}, fmt.Errorf("seed: %w", err)
	}

	var c Catalog
	known := make(map[string]bool, len(raw.Categories))
	for _, rc := range raw.Categories {
		cat := domain.FoodCategory{ID: rc.ID, Name: rc.Name}
		if err := cat.Validate(); err != nil {
			return Catalog{}, fmt.Errorf("seed: category %q: %w", rc.ID, err)
		}
		if known[cat.ID] {
			return Catalog{}, fmt.Errorf("seed: duplicate category %q", cat.ID)
		}
		known[cat.ID] = true
		c.Categories = append(c.Categories, cat)
	}

	for i, rf := range raw.Foods {
		f := domain.FoodItem{
			Name:              rf.Name,
			Category:          rf.Category,
			RefAmount:         rf.RefAmount,
			RefUnit:           rf.RefUnit,
			PortionMultiplier: 1,
			Energy:            rf.Energy,
			Carbohydrates:     rf.Carbohydrates,
			Protein:           rf.Protein,
			Fat:               rf.Fat,
			Comment:           rf.Comment,
		}
		if rf.PortionMultiplier != nil {
			f.PortionMultiplier = *rf.PortionMultiplier
		}
		if err := f.Validate(); err != nil {
			return Catalog{}, fmt.Errorf("seed: food %d (%q): %w", i+1, rf.Name, err)
		}
		if f.Category != "" && !known[f.Category] {
			return Catalog{}, fmt.Errorf("seed: food %q: unknown category %q", f.Name, f.Category)
		}
		c.Foods = append(c.Foods, f)
	}
	return c, nil
}
