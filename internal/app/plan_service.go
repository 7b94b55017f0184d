package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mealplanner/internal/domain"
	"mealplanner/internal/plan"
)

// PlanRepos bundles the ports PlanService reads from and writes to.
type PlanRepos struct {
	Projects   domain.ProjectRepository
	Blueprints domain.BlueprintRepository
	Meals      domain.MealRepository
	Foods      domain.FoodRepository
	Categories domain.CategoryRepository
	Sessions   domain.SessionInfoRepository
}

// PlanService owns the editor state of every user and routes all changes
// through plan.Reduce. Persistence happens only on Load, SeedDay and Save.
type PlanService struct {
	repos PlanRepos
	log   *zap.Logger
	now   func() time.Time

	mu     sync.Mutex
	states map[int64]plan.State

	// seedMu serializes SeedDay so the empty-day check and the insert
	// happen as one step.
	seedMu sync.Mutex
}

// NewPlanService creates a PlanService.
func NewPlanService(repos PlanRepos, log *zap.Logger) *PlanService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlanService{
		repos:  repos,
		log:    log,
		now:    time.Now,
		states: make(map[int64]plan.State),
	}
}

// dayRange returns the inclusive bounds of the day containing t.
func dayRange(t time.Time) (time.Time, time.Time) {
	begin := domain.Day(t)
	return begin, begin.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Load fetches everything the editor needs and replaces the user's state.
func (s *PlanService) Load(ctx context.Context, userID int64) (plan.State, error) {
	var (
		info       *domain.SessionInfo
		projects   []domain.Project
		foods      []domain.FoodItem
		categories []domain.FoodCategory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		info, err = s.repos.Sessions.GetSessionInfo(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.repos.Projects.ListProjects(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		foods, err = s.repos.Foods.ListFoods(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.repos.Categories.ListCategories(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return plan.State{}, fmt.Errorf("load plan: %w", err)
	}

	next := plan.State{
		Foods:       foods,
		Categories:  categories,
		Projects:    projects,
		DisplayDate: domain.Day(s.now().UTC()),
	}
	if info != nil {
		next.CurrentProject = info.CurrentProject
		if !info.DisplayDate.IsZero() {
			next.DisplayDate = domain.Day(info.DisplayDate)
		}
	}
	if !slices.ContainsFunc(projects, func(p domain.Project) bool { return p.ID == next.CurrentProject }) {
		next.CurrentProject = ""
		if len(projects) > 0 {
			next.CurrentProject = projects[0].ID
		}
	}

	if next.CurrentProject != "" {
		bps, meals, err := s.fetchProject(ctx, userID, next.CurrentProject, next.DisplayDate)
		if err != nil {
			return plan.State{}, fmt.Errorf("load plan: %w", err)
		}
		next.Blueprints = bps
		next.Meals = meals
	}

	return s.dispatch(userID, plan.Initialize{State: next})
}

func (s *PlanService) fetchProject(ctx context.Context, userID int64, projectID string, date time.Time) ([]domain.MealBlueprint, []domain.Meal, error) {
	var (
		bps   []domain.MealBlueprint
		meals []domain.Meal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bps, err = s.repos.Blueprints.ListBlueprints(gctx, userID, projectID)
		return err
	})
	g.Go(func() (err error) {
		begin, end := dayRange(date)
		meals, err = s.repos.Meals.ListMeals(gctx, userID, projectID, begin, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return bps, meals, nil
}

// State returns the user's current state, loading it on first access.
func (s *PlanService) State(ctx context.Context, userID int64) (plan.State, error) {
	s.mu.Lock()
	st, ok := s.states[userID]
	s.mu.Unlock()
	if ok {
		return st, nil
	}
	return s.Load(ctx, userID)
}

// Dispatch applies a to the user's state. The state must have been loaded.
func (s *PlanService) Dispatch(ctx context.Context, userID int64, a plan.Action) (plan.State, error) {
	if _, err := s.State(ctx, userID); err != nil {
		return plan.State{}, err
	}
	return s.dispatch(userID, a)
}

func (s *PlanService) dispatch(userID int64, a plan.Action) (plan.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := plan.Reduce(s.states[userID], a)
	if err != nil {
		return next, err
	}
	s.states[userID] = next
	return next, nil
}

// SelectMeal makes mealID the target of AddPortion.
func (s *PlanService) SelectMeal(ctx context.Context, userID int64, mealID string) (plan.State, error) {
	return s.Dispatch(ctx, userID, plan.SetSelectedMeal{MealID: mealID})
}

// AddPortion adds one portion of the catalog entry foodKey to the selected
// meal.
func (s *PlanService) AddPortion(ctx context.Context, userID int64, foodKey string) (plan.State, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return plan.State{}, err
	}
	food, ok := st.Food(foodKey)
	if !ok {
		return st, fmt.Errorf("food %q: %w", foodKey, domain.ErrNotFound)
	}
	return s.dispatch(userID, plan.AddPortion{Food: food})
}

func findPortion(st plan.State, mealID, foodKey string) domain.Portion {
	m, ok := st.Meal(mealID)
	if !ok {
		return domain.Portion{}
	}
	i := slices.IndexFunc(m.Portions, func(p domain.Portion) bool { return p.Food.Key() == foodKey })
	if i < 0 {
		return domain.Portion{}
	}
	return m.Portions[i]
}

// RemovePortion drops the portion of foodKey from the meal.
func (s *PlanService) RemovePortion(ctx context.Context, userID int64, mealID, foodKey string) (plan.State, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return plan.State{}, err
	}
	return s.dispatch(userID, plan.RemovePortion{MealID: mealID, Portion: findPortion(st, mealID, foodKey)})
}

// SetPortionQty changes the quantity of foodKey inside the meal.
func (s *PlanService) SetPortionQty(ctx context.Context, userID int64, mealID, foodKey string, qty float64) (plan.State, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return plan.State{}, err
	}
	p := findPortion(st, mealID, foodKey)
	return s.dispatch(userID, plan.SetPortionQty{MealID: mealID, Food: p.Food, Qty: qty})
}

// ChangeDisplayDate fetches the meals of date and switches the editor to
// it. Concurrent calls are not ordered: the last fetch to finish wins.
func (s *PlanService) ChangeDisplayDate(ctx context.Context, userID int64, date time.Time) (plan.State, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return plan.State{}, err
	}
	date = domain.Day(date)
	var meals []domain.Meal
	if st.CurrentProject != "" {
		begin, end := dayRange(date)
		meals, err = s.repos.Meals.ListMeals(ctx, userID, st.CurrentProject, begin, end)
		if err != nil {
			return st, err
		}
	}
	return s.dispatch(userID, plan.ChangeDisplayDate{Date: date, Meals: meals})
}

// SelectProject switches to another project, reloading its blueprints and
// the meals of the displayed day.
func (s *PlanService) SelectProject(ctx context.Context, userID int64, projectID string) (plan.State, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return plan.State{}, err
	}
	if !slices.ContainsFunc(st.Projects, func(p domain.Project) bool { return p.ID == projectID }) {
		return st, fmt.Errorf("project %q: %w", projectID, domain.ErrNotFound)
	}
	bps, meals, err := s.fetchProject(ctx, userID, projectID, st.DisplayDate)
	if err != nil {
		return st, err
	}
	st.CurrentProject = projectID
	st.Blueprints = bps
	st.Meals = meals
	st.SelectedMeal = ""
	return s.dispatch(userID, plan.Initialize{State: st})
}

// Refresh reloads the cached catalog, projects and blueprints, leaving the
// meals alone.
func (s *PlanService) Refresh(ctx context.Context, userID int64) (plan.State, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return plan.State{}, err
	}
	var (
		foods      []domain.FoodItem
		categories []domain.FoodCategory
		projects   []domain.Project
		bps        []domain.MealBlueprint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		foods, err = s.repos.Foods.ListFoods(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.repos.Categories.ListCategories(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.repos.Projects.ListProjects(gctx, userID)
		return err
	})
	if st.CurrentProject != "" {
		g.Go(func() (err error) {
			bps, err = s.repos.Blueprints.ListBlueprints(gctx, userID, st.CurrentProject)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return st, fmt.Errorf("refresh plan: %w", err)
	}

	for _, a := range []plan.Action{
		plan.SetFoods{Foods: foods},
		plan.SetCategories{Categories: categories},
		plan.SetProjects{Projects: projects},
		plan.SetBlueprints{Blueprints: bps},
	} {
		if st, err = s.dispatch(userID, a); err != nil {
			return st, err
		}
	}
	return st, nil
}

// SeedDay creates the meals of the displayed day from the project's
// blueprints. Days that already have stored meals are left as they are.
func (s *PlanService) SeedDay(ctx context.Context, userID int64) (plan.State, error) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	st, err := s.State(ctx, userID)
	if err != nil {
		return plan.State{}, err
	}
	if len(st.Meals) > 0 || st.CurrentProject == "" {
		return st, nil
	}

	begin, end := dayRange(st.DisplayDate)
	stored, err := s.repos.Meals.ListMeals(ctx, userID, st.CurrentProject, begin, end)
	if err != nil {
		return st, fmt.Errorf("seed day: %w", err)
	}
	if len(stored) > 0 {
		return s.dispatch(userID, plan.SetMeals{Meals: stored})
	}

	fresh := make([]domain.Meal, len(st.Blueprints))
	for i, bp := range st.Blueprints {
		fresh[i] = bp.NewMeal("", st.DisplayDate)
	}
	meals, err := s.repos.Meals.AddMeals(ctx, userID, st.CurrentProject, fresh)
	if err != nil {
		s.log.Error("seed day", zap.Int64("user_id", userID), zap.Int("blueprints", len(fresh)), zap.Error(err))
		return st, fmt.Errorf("seed day: %w", err)
	}
	return s.dispatch(userID, plan.SetMeals{Meals: meals})
}

// Save persists every visible meal and the editor position.
func (s *PlanService) Save(ctx context.Context, userID int64) error {
	st, err := s.State(ctx, userID)
	if err != nil {
		return err
	}
	for _, m := range st.Meals {
		if err := s.repos.Meals.UpdateMeal(ctx, userID, st.CurrentProject, m); err != nil {
			s.log.Error("save meal", zap.Int64("user_id", userID), zap.String("meal_id", m.ID), zap.Error(err))
			return fmt.Errorf("save meal %q: %w", m.ID, err)
		}
	}
	info := domain.SessionInfo{CurrentProject: st.CurrentProject, DisplayDate: st.DisplayDate}
	if err := s.repos.Sessions.SaveSessionInfo(ctx, userID, info); err != nil {
		return fmt.Errorf("save session info: %w", err)
	}
	s.log.Info("plan saved", zap.Int64("user_id", userID), zap.Int("meals", len(st.Meals)))
	return nil
}
