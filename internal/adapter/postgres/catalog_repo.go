package postgres

import (
	"context"

	"github.com/google/uuid"

	"mealplanner/internal/domain"
)

const foodColumns = "id, name, category, ref_amount, ref_unit, portion_multiplier, energy, carbohydrates, protein, fat, comment"

// ListFoods returns the user's catalog ordered by name.
func (d *DB) ListFoods(ctx context.Context, userID int64) ([]domain.FoodItem, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+foodColumns+" FROM foods WHERE user_id=$1 ORDER BY name, id;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.FoodItem
	for rows.Next() {
		var f domain.FoodItem
		if err := rows.Scan(&f.ID, &f.Name, &f.Category, &f.RefAmount, &f.RefUnit, &f.PortionMultiplier,
			&f.Energy, &f.Carbohydrates, &f.Protein, &f.Fat, &f.Comment); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// AddFood stores f under a new id.
func (d *DB) AddFood(ctx context.Context, userID int64, f domain.FoodItem) (domain.FoodItem, error) {
	f.ID = uuid.NewString()
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO foods(user_id, "+foodColumns+") VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);",
		userID, f.ID, f.Name, f.Category, f.RefAmount, f.RefUnit, f.PortionMultiplier,
		f.Energy, f.Carbohydrates, f.Protein, f.Fat, f.Comment,
	)
	if err != nil {
		return domain.FoodItem{}, mapErr(err)
	}
	return f, nil
}

// UpdateFood replaces the food with the same id.
func (d *DB) UpdateFood(ctx context.Context, userID int64, f domain.FoodItem) error {
	return expectOne(d.sql.ExecContext(ctx,
		`UPDATE foods SET name=$3, category=$4, ref_amount=$5, ref_unit=$6, portion_multiplier=$7,
			energy=$8, carbohydrates=$9, protein=$10, fat=$11, comment=$12
		WHERE id=$1 AND user_id=$2;`,
		f.ID, userID, f.Name, f.Category, f.RefAmount, f.RefUnit, f.PortionMultiplier,
		f.Energy, f.Carbohydrates, f.Protein, f.Fat, f.Comment,
	))
}

// ListCategories returns the user's categories ordered by name.
func (d *DB) ListCategories(ctx context.Context, userID int64) ([]domain.FoodCategory, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, name FROM food_categories WHERE user_id=$1 ORDER BY name;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.FoodCategory
	for rows.Next() {
		var c domain.FoodCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddCategory inserts c, replacing a category with the same id.
func (d *DB) AddCategory(ctx context.Context, userID int64, c domain.FoodCategory) (domain.FoodCategory, error) {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO food_categories(user_id, id, name) VALUES($1, $2, $3)
		ON CONFLICT (user_id, id) DO UPDATE SET name = EXCLUDED.name;`,
		userID, c.ID, c.Name,
	)
	if err != nil {
		return domain.FoodCategory{}, mapErr(err)
	}
	return c, nil
}
