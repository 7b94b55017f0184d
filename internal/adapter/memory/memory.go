// Package memory implements the domain repositories in memory for
// development and testing.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mealplanner/internal/domain"
)

type projectKey struct {
	userID    int64
	projectID string
}

// DB implements an in-memory database storage.
type DB struct {
	mu         sync.Mutex
	foods      map[int64][]domain.FoodItem
	categories map[int64][]domain.FoodCategory
	projects   map[int64][]domain.Project
	blueprints map[projectKey][]domain.MealBlueprint
	meals      map[projectKey][]domain.Meal
	infos      map[int64]domain.SessionInfo
	users      []*domain.User
	sessions   map[string]*domain.Session

	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		foods:      make(map[int64][]domain.FoodItem),
		categories: make(map[int64][]domain.FoodCategory),
		projects:   make(map[int64][]domain.Project),
		blueprints: make(map[projectKey][]domain.MealBlueprint),
		meals:      make(map[projectKey][]domain.Meal),
		infos:      make(map[int64]domain.SessionInfo),
		sessions:   make(map[string]*domain.Session),
	}
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

// --- FoodRepository ---

// ListFoods returns a copy of the user's catalog.
func (db *DB) ListFoods(ctx context.Context, userID int64) ([]domain.FoodItem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.foods[userID]), nil
}

// AddFood stores f under a new id.
func (db *DB) AddFood(ctx context.Context, userID int64, f domain.FoodItem) (domain.FoodItem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	f.ID = uuid.NewString()
	db.foods[userID] = append(db.foods[userID], f)
	return f, nil
}

// UpdateFood replaces the food with the same id.
func (db *DB) UpdateFood(ctx context.Context, userID int64, f domain.FoodItem) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	list := db.foods[userID]
	i := slices.IndexFunc(list, func(x domain.FoodItem) bool { return x.ID == f.ID })
	if i < 0 {
		return domain.ErrNotFound
	}
	list[i] = f
	return nil
}

// --- CategoryRepository ---

// ListCategories returns the user's categories.
func (db *DB) ListCategories(ctx context.Context, userID int64) ([]domain.FoodCategory, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.categories[userID]), nil
}

// AddCategory inserts c, replacing a category with the same id.
func (db *DB) AddCategory(ctx context.Context, userID int64, c domain.FoodCategory) (domain.FoodCategory, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	list := db.categories[userID]
	if i := slices.IndexFunc(list, func(x domain.FoodCategory) bool { return x.ID == c.ID }); i >= 0 {
		list[i] = c
		return c, nil
	}
	db.categories[userID] = append(list, c)
	return c, nil
}

// --- ProjectRepository / BlueprintRepository ---

// ListProjects returns the user's projects.
func (db *DB) ListProjects(ctx context.Context, userID int64) ([]domain.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.projects[userID]), nil
}

// AddProject stores p with its blueprints. Project names are unique per user,
// ignoring case.
func (db *DB) AddProject(ctx context.Context, userID int64, p domain.Project, bps []domain.MealBlueprint) (domain.Project, []domain.MealBlueprint, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, x := range db.projects[userID] {
		if strings.EqualFold(x.Name, p.Name) {
			return domain.Project{}, nil, domain.ErrConflict
		}
	}
	p.ID = uuid.NewString()
	db.projects[userID] = append(db.projects[userID], p)

	out := make([]domain.MealBlueprint, len(bps))
	for i, bp := range bps {
		bp.ID = uuid.NewString()
		out[i] = bp
	}
	db.blueprints[projectKey{userID, p.ID}] = slices.Clone(out)
	return p, out, nil
}

// ListBlueprints returns the project's blueprints sorted by order.
func (db *DB) ListBlueprints(ctx context.Context, userID int64, projectID string) ([]domain.MealBlueprint, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := slices.Clone(db.blueprints[projectKey{userID, projectID}])
	domain.SortBlueprints(out)
	return out, nil
}

// AddBlueprint stores bp under a new id.
func (db *DB) AddBlueprint(ctx context.Context, userID int64, projectID string, bp domain.MealBlueprint) (domain.MealBlueprint, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.hasProject(userID, projectID) {
		return domain.MealBlueprint{}, domain.ErrNotFound
	}
	bp.ID = uuid.NewString()
	k := projectKey{userID, projectID}
	db.blueprints[k] = append(db.blueprints[k], bp)
	return bp, nil
}

func (db *DB) hasProject(userID int64, projectID string) bool {
	return slices.ContainsFunc(db.projects[userID], func(p domain.Project) bool { return p.ID == projectID })
}

// --- MealRepository ---

// ListMeals returns meals dated within [begin, end] sorted by date and order.
func (db *DB) ListMeals(ctx context.Context, userID int64, projectID string, begin, end time.Time) ([]domain.Meal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Meal
	for _, m := range db.meals[projectKey{userID, projectID}] {
		if !m.Date.Before(begin) && !m.Date.After(end) {
			m.Portions = slices.Clone(m.Portions)
			out = append(out, m)
		}
	}
	domain.SortMeals(out)
	return out, nil
}

// AddMeal stores m under a new id.
func (db *DB) AddMeal(ctx context.Context, userID int64, projectID string, m domain.Meal) (domain.Meal, error) {
	out, err := db.AddMeals(ctx, userID, projectID, []domain.Meal{m})
	if err != nil {
		return domain.Meal{}, err
	}
	return out[0], nil
}

// AddMeals stores meals under new ids while holding the lock once.
func (db *DB) AddMeals(ctx context.Context, userID int64, projectID string, meals []domain.Meal) ([]domain.Meal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.hasProject(userID, projectID) {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.Meal, len(meals))
	for i, m := range meals {
		m.ID = uuid.NewString()
		m.Portions = slices.Clone(m.Portions)
		out[i] = m
	}
	k := projectKey{userID, projectID}
	db.meals[k] = append(db.meals[k], out...)
	return slices.Clone(out), nil
}

// UpdateMeal replaces the stored meal with the same id.
func (db *DB) UpdateMeal(ctx context.Context, userID int64, projectID string, m domain.Meal) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	list := db.meals[projectKey{userID, projectID}]
	i := slices.IndexFunc(list, func(x domain.Meal) bool { return x.ID == m.ID })
	if i < 0 {
		return domain.ErrNotFound
	}
	m.Portions = slices.Clone(m.Portions)
	list[i] = m
	return nil
}

// --- SessionInfoRepository ---

// GetSessionInfo returns the saved editor state, or nil if none was saved.
func (db *DB) GetSessionInfo(ctx context.Context, userID int64) (*domain.SessionInfo, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	info, ok := db.infos[userID]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

// SaveSessionInfo stores the editor state.
func (db *DB) SaveSessionInfo(ctx context.Context, userID int64, s domain.SessionInfo) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.infos[userID] = s
	return nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, domain.ErrConflict
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
