package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mealplanner/internal/domain"
)

// ProjectService encapsulates project and blueprint configuration.
type ProjectService struct {
	projects   domain.ProjectRepository
	blueprints domain.BlueprintRepository
}

// NewProjectService creates a ProjectService backed by the given repositories.
func NewProjectService(projects domain.ProjectRepository, blueprints domain.BlueprintRepository) *ProjectService {
	return &ProjectService{projects: projects, blueprints: blueprints}
}

// List returns the user's projects.
func (s *ProjectService) List(ctx context.Context, userID int64) ([]domain.Project, error) {
	return s.projects.ListProjects(ctx, userID)
}

// Create stores a new project with its blueprints. Project names are unique
// per user; blueprint orders are reassigned from their position.
func (s *ProjectService) Create(ctx context.Context, userID int64, name string, bps []domain.MealBlueprint) (domain.Project, []domain.MealBlueprint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Project{}, nil, invalid(errors.New("project name is required"))
	}
	existing, err := s.projects.ListProjects(ctx, userID)
	if err != nil {
		return domain.Project{}, nil, err
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name, name) {
			return domain.Project{}, nil, fmt.Errorf("project %q: %w", name, domain.ErrConflict)
		}
	}

	ordered := make([]domain.MealBlueprint, len(bps))
	for i, bp := range bps {
		if err := bp.Validate(); err != nil {
			return domain.Project{}, nil, invalid(fmt.Errorf("blueprint %d: %v", i+1, err))
		}
		bp.Order = i
		ordered[i] = bp
	}
	return s.projects.AddProject(ctx, userID, domain.Project{Name: name}, ordered)
}

// Blueprints returns the project's blueprints in order.
func (s *ProjectService) Blueprints(ctx context.Context, userID int64, projectID string) ([]domain.MealBlueprint, error) {
	return s.blueprints.ListBlueprints(ctx, userID, projectID)
}

// AddBlueprint appends a blueprint to the project.
func (s *ProjectService) AddBlueprint(ctx context.Context, userID int64, projectID string, bp domain.MealBlueprint) (domain.MealBlueprint, error) {
	if err := bp.Validate(); err != nil {
		return domain.MealBlueprint{}, invalid(err)
	}
	existing, err := s.blueprints.ListBlueprints(ctx, userID, projectID)
	if err != nil {
		return domain.MealBlueprint{}, err
	}
	bp.Order = len(existing)
	return s.blueprints.AddBlueprint(ctx, userID, projectID, bp)
}
