// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"mealplanner/internal/domain"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Ensure interfaces are met.
var (
	_ domain.FoodRepository        = (*DB)(nil)
	_ domain.CategoryRepository    = (*DB)(nil)
	_ domain.ProjectRepository     = (*DB)(nil)
	_ domain.BlueprintRepository   = (*DB)(nil)
	_ domain.MealRepository        = (*DB)(nil)
	_ domain.SessionInfoRepository = (*DB)(nil)
	_ domain.UserRepository        = (*DB)(nil)
	_ domain.SessionRepository     = (*SessionRepo)(nil)
)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

var migrations = []string{
	"CREATE TABLE IF NOT EXISTS users (id BIGSERIAL PRIMARY KEY, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
	"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
	"ALTER TABLE sessions ADD COLUMN IF NOT EXISTS user_agent TEXT NOT NULL DEFAULT '';",
	"ALTER TABLE sessions ADD COLUMN IF NOT EXISTS ip TEXT NOT NULL DEFAULT '';",
	"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
	`CREATE TABLE IF NOT EXISTS food_categories (
		user_id BIGINT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	);`,
	`CREATE TABLE IF NOT EXISTS foods (
		id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		ref_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		ref_unit TEXT NOT NULL DEFAULT '',
		portion_multiplier DOUBLE PRECISION NOT NULL CHECK (portion_multiplier > 0),
		energy DOUBLE PRECISION NOT NULL DEFAULT 0,
		carbohydrates DOUBLE PRECISION NOT NULL DEFAULT 0,
		protein DOUBLE PRECISION NOT NULL DEFAULT 0,
		fat DOUBLE PRECISION NOT NULL DEFAULT 0,
		comment TEXT NOT NULL DEFAULT ''
	);`,
	"CREATE INDEX IF NOT EXISTS idx_foods_user_id ON foods(user_id);",
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL
	);`,
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_user_name ON projects(user_id, lower(name));",
	`CREATE TABLE IF NOT EXISTS blueprints (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		limits JSONB NOT NULL,
		ord INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS meals (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		portions JSONB NOT NULL,
		limits JSONB NOT NULL,
		day TIMESTAMPTZ NOT NULL,
		ord INTEGER NOT NULL
	);`,
	"CREATE INDEX IF NOT EXISTS idx_meals_project_day ON meals(project_id, day);",
	`CREATE TABLE IF NOT EXISTS session_info (
		user_id BIGINT PRIMARY KEY,
		current_project TEXT NOT NULL DEFAULT '',
		display_date TIMESTAMPTZ
	);`,
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// mapErr translates driver errors into domain errors.
func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", pqErr.Constraint, domain.ErrConflict)
		case "23503":
			return fmt.Errorf("%s: %w", pqErr.Constraint, domain.ErrNotFound)
		}
	}
	return err
}

// expectOne reports ErrNotFound when an update touched no row.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// jsonb scans and stores a value as a JSONB column.
type jsonb[T any] struct {
	v *T
}

func (j jsonb[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j jsonb[T]) Scan(src any) error {
	var b []byte
	switch s := src.(type) {
	case []byte:
		b = s
	case string:
		b = []byte(s)
	case nil:
		return nil
	default:
		return fmt.Errorf("jsonb: unsupported type %T", src)
	}
	return json.Unmarshal(b, j.v)
}

func asJSONB[T any](v *T) jsonb[T] { return jsonb[T]{v: v} }
