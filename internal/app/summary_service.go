package app

import (
	"context"
	"errors"
	"time"

	"mealplanner/internal/domain"
	"mealplanner/internal/nutrition"
)

// SummaryService computes the nutrient footers shown under meals and days.
type SummaryService struct {
	meals domain.MealRepository
	now   func() time.Time
}

// NewSummaryService creates a SummaryService backed by the given repository.
func NewSummaryService(meals domain.MealRepository) *SummaryService {
	return &SummaryService{meals: meals, now: time.Now}
}

// PortionLine is one row of a meal table.
type PortionLine struct {
	FoodID    string                         `json:"foodId"`
	Name      string                         `json:"name"`
	Qty       float64                        `json:"qty"`
	Amount    float64                        `json:"amount"`
	Unit      string                         `json:"unit"`
	Nutrients map[domain.NutrientKey]float64 `json:"nutrients"`
}

// MealSummary is the table of one meal: its rows and its footer.
type MealSummary struct {
	MealID   string           `json:"mealId"`
	Name     string           `json:"name"`
	Portions []PortionLine    `json:"portions"`
	Cells    []nutrition.Cell `json:"cells"`
}

func portionLines(ps []domain.Portion) []PortionLine {
	out := make([]PortionLine, 0, len(ps))
	for _, p := range ps {
		out = append(out, PortionLine{
			FoodID:    p.Food.Key(),
			Name:      p.Food.Name,
			Qty:       p.Qty,
			Amount:    domain.PortionAmount(p.Food, p.Qty),
			Unit:      p.Food.RefUnit,
			Nutrients: nutrition.Totals([]domain.Portion{p}),
		})
	}
	return out
}

// DaySummary holds one footer per meal plus the combined footer of the day.
type DaySummary struct {
	Meals []MealSummary    `json:"meals"`
	Total []nutrition.Cell `json:"total"`
}

// Summarize evaluates each meal against its own limits and the whole day
// against the merged limits.
func (s *SummaryService) Summarize(meals []domain.Meal) DaySummary {
	out := DaySummary{Meals: make([]MealSummary, 0, len(meals))}
	for _, m := range meals {
		out.Meals = append(out.Meals, MealSummary{
			MealID:   m.ID,
			Name:     m.Name,
			Portions: portionLines(m.Portions),
			Cells:    nutrition.Footer(m.Portions, m.Limits),
		})
	}
	day := nutrition.Combine(meals)
	out.Total = nutrition.Footer(day.Portions, day.Limits)
	return out
}

// DayPoint is the combined footer of a single day returned by Daily.
type DayPoint struct {
	Day   string           `json:"day"`
	Meals int              `json:"meals"`
	Cells []nutrition.Cell `json:"cells"`
}

// Daily returns one point per day for the last days days of a project,
// oldest first. Days without meals evaluate against empty limits.
func (s *SummaryService) Daily(ctx context.Context, userID int64, projectID string, days int) ([]DayPoint, error) {
	if days < 1 {
		return nil, invalid(errors.New("days must be >= 1"))
	}
	if days > 366 {
		days = 366
	}

	today := domain.Day(s.now().UTC())
	begin := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1).Add(-time.Nanosecond)
	meals, err := s.meals.ListMeals(ctx, userID, projectID, begin, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]domain.Meal)
	for _, m := range meals {
		k := m.Date.Format("2006-01-02")
		byDay[k] = append(byDay[k], m)
	}

	points := make([]DayPoint, 0, days)
	for i := 0; i < days; i++ {
		dayStr := begin.AddDate(0, 0, i).Format("2006-01-02")
		combined := nutrition.Combine(byDay[dayStr])
		points = append(points, DayPoint{
			Day:   dayStr,
			Meals: len(byDay[dayStr]),
			Cells: nutrition.Footer(combined.Portions, combined.Limits),
		})
	}
	return points, nil
}
