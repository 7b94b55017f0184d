package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mealplanner/internal/domain"
)

// ListProjects returns the user's projects ordered by name.
func (d *DB) ListProjects(ctx context.Context, userID int64) ([]domain.Project, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, name FROM projects WHERE user_id=$1 ORDER BY name;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddProject stores p and its blueprints in one transaction.
func (d *DB) AddProject(ctx context.Context, userID int64, p domain.Project, bps []domain.MealBlueprint) (domain.Project, []domain.MealBlueprint, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	p.ID = uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO projects(id, user_id, name) VALUES($1, $2, $3);", p.ID, userID, p.Name,
	); err != nil {
		return domain.Project{}, nil, mapErr(err)
	}

	out := make([]domain.MealBlueprint, len(bps))
	for i, bp := range bps {
		if bp, err = insertBlueprint(ctx, tx, p.ID, bp); err != nil {
			return domain.Project{}, nil, err
		}
		out[i] = bp
	}
	if err := tx.Commit(); err != nil {
		return domain.Project{}, nil, err
	}
	return p, out, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertBlueprint(ctx context.Context, db execer, projectID string, bp domain.MealBlueprint) (domain.MealBlueprint, error) {
	bp.ID = uuid.NewString()
	_, err := db.ExecContext(ctx,
		"INSERT INTO blueprints(id, project_id, name, limits, ord) VALUES($1, $2, $3, $4, $5);",
		bp.ID, projectID, bp.Name, asJSONB(&bp.Limits), bp.Order,
	)
	if err != nil {
		return domain.MealBlueprint{}, fmt.Errorf("blueprint %q: %w", bp.Name, mapErr(err))
	}
	return bp, nil
}

// ownsProject scopes project-level queries to the user.
const ownsProject = "project_id IN (SELECT id FROM projects WHERE id=$1 AND user_id=$2)"

// ListBlueprints returns the project's blueprints sorted by order.
func (d *DB) ListBlueprints(ctx context.Context, userID int64, projectID string) ([]domain.MealBlueprint, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, name, limits, ord FROM blueprints WHERE "+ownsProject+" ORDER BY ord, id;",
		projectID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.MealBlueprint
	for rows.Next() {
		var bp domain.MealBlueprint
		if err := rows.Scan(&bp.ID, &bp.Name, asJSONB(&bp.Limits), &bp.Order); err != nil {
			return nil, err
		}
		out = append(out, bp)
	}
	return out, rows.Err()
}

func (d *DB) checkProject(ctx context.Context, userID int64, projectID string) error {
	var one int
	err := d.sql.QueryRowContext(ctx,
		"SELECT 1 FROM projects WHERE id=$1 AND user_id=$2;", projectID, userID,
	).Scan(&one)
	return mapErr(err)
}

// AddBlueprint stores bp under a new id.
func (d *DB) AddBlueprint(ctx context.Context, userID int64, projectID string, bp domain.MealBlueprint) (domain.MealBlueprint, error) {
	if err := d.checkProject(ctx, userID, projectID); err != nil {
		return domain.MealBlueprint{}, err
	}
	return insertBlueprint(ctx, d.sql, projectID, bp)
}

// ListMeals returns meals dated within [begin, end] sorted by date and order.
func (d *DB) ListMeals(ctx context.Context, userID int64, projectID string, begin, end time.Time) ([]domain.Meal, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, name, portions, limits, day, ord FROM meals WHERE "+ownsProject+
			" AND day >= $3 AND day <= $4 ORDER BY day, ord;",
		projectID, userID, begin.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Meal
	for rows.Next() {
		var m domain.Meal
		if err := rows.Scan(&m.ID, &m.Name, asJSONB(&m.Portions), asJSONB(&m.Limits), &m.Date, &m.Order); err != nil {
			return nil, err
		}
		m.Date = m.Date.UTC()
		if m.Portions == nil {
			m.Portions = []domain.Portion{}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddMeal stores m under a new id.
func (d *DB) AddMeal(ctx context.Context, userID int64, projectID string, m domain.Meal) (domain.Meal, error) {
	if err := d.checkProject(ctx, userID, projectID); err != nil {
		return domain.Meal{}, err
	}
	return insertMeal(ctx, d.sql, projectID, m)
}

// AddMeals stores meals in one transaction.
func (d *DB) AddMeals(ctx context.Context, userID int64, projectID string, meals []domain.Meal) ([]domain.Meal, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	var one int
	if err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM projects WHERE id=$1 AND user_id=$2 FOR UPDATE;", projectID, userID,
	).Scan(&one); err != nil {
		return nil, mapErr(err)
	}

	out := make([]domain.Meal, len(meals))
	for i, m := range meals {
		if out[i], err = insertMeal(ctx, tx, projectID, m); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func insertMeal(ctx context.Context, db execer, projectID string, m domain.Meal) (domain.Meal, error) {
	m.ID = uuid.NewString()
	if m.Portions == nil {
		m.Portions = []domain.Portion{}
	}
	_, err := db.ExecContext(ctx,
		"INSERT INTO meals(id, project_id, name, portions, limits, day, ord) VALUES($1, $2, $3, $4, $5, $6, $7);",
		m.ID, projectID, m.Name, asJSONB(&m.Portions), asJSONB(&m.Limits), m.Date.UTC(), m.Order,
	)
	if err != nil {
		return domain.Meal{}, fmt.Errorf("meal %q: %w", m.Name, mapErr(err))
	}
	return m, nil
}

// UpdateMeal replaces the stored meal with the same id.
func (d *DB) UpdateMeal(ctx context.Context, userID int64, projectID string, m domain.Meal) error {
	if m.Portions == nil {
		m.Portions = []domain.Portion{}
	}
	return expectOne(d.sql.ExecContext(ctx,
		"UPDATE meals SET name=$3, portions=$4, limits=$5, day=$6, ord=$7 WHERE id=$8 AND "+ownsProject+";",
		projectID, userID, m.Name, asJSONB(&m.Portions), asJSONB(&m.Limits), m.Date.UTC(), m.Order, m.ID,
	))
}

// GetSessionInfo returns the saved editor state, or nil if none was saved.
func (d *DB) GetSessionInfo(ctx context.Context, userID int64) (*domain.SessionInfo, error) {
	var (
		info domain.SessionInfo
		date sql.NullTime
	)
	err := d.sql.QueryRowContext(ctx,
		"SELECT current_project, display_date FROM session_info WHERE user_id=$1;", userID,
	).Scan(&info.CurrentProject, &date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if date.Valid {
		info.DisplayDate = date.Time.UTC()
	}
	return &info, nil
}

// SaveSessionInfo upserts the editor state.
func (d *DB) SaveSessionInfo(ctx context.Context, userID int64, s domain.SessionInfo) error {
	var date sql.NullTime
	if !s.DisplayDate.IsZero() {
		date = sql.NullTime{Time: s.DisplayDate.UTC(), Valid: true}
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO session_info(user_id, current_project, display_date) VALUES($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET current_project = EXCLUDED.current_project, display_date = EXCLUDED.display_date;`,
		userID, s.CurrentProject, date,
	)
	return err
}
