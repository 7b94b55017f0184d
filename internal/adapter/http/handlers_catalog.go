package adapthttp

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"mealplanner/internal/domain"
)

// refreshPlan keeps the cached editor state in sync after catalog or project
// changes. Failures only cost freshness, so they are logged.
func (s *Server) refreshPlan(r *http.Request) {
	if _, err := s.svc.Plan.Refresh(r.Context(), userID(r)); err != nil {
		s.log.Warn("refresh plan", zap.Int64("user_id", userID(r)), zap.Error(err))
	}
}

func (s *Server) handleFoods(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		foods, err := s.svc.Catalog.Foods(r.Context(), userID(r), q.Get("q"), q["category"])
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": foods})
		return
	}

	var f domain.FoodItem
	if err := parseJSON(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := s.svc.Catalog.AddFood(r.Context(), userID(r), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.refreshPlan(r)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleFood(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPut) {
		return
	}
	var f domain.FoodItem
	if err := parseJSON(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id := r.PathValue("id")
	if f.ID != "" && f.ID != id {
		writeError(w, http.StatusBadRequest, errors.New("id does not match the path"))
		return
	}
	f.ID = id
	if err := s.svc.Catalog.UpdateFood(r.Context(), userID(r), f); err != nil {
		s.fail(w, r, err)
		return
	}
	s.refreshPlan(r)
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		items, err := s.svc.Catalog.Categories(r.Context(), userID(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
		return
	}

	var c domain.FoodCategory
	if err := parseJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := s.svc.Catalog.AddCategory(r.Context(), userID(r), c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.refreshPlan(r)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		items, err := s.svc.Projects.List(r.Context(), userID(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
		return
	}

	var body struct {
		Name       string                 `json:"name"`
		Blueprints []domain.MealBlueprint `json:"blueprints"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, bps, err := s.svc.Projects.Create(r.Context(), userID(r), body.Name, body.Blueprints)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.refreshPlan(r)
	writeJSON(w, http.StatusCreated, map[string]any{"project": p, "blueprints": bps})
}

// projectParam returns the explicit project of the request or the one
// currently open in the editor.
func (s *Server) projectParam(r *http.Request, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	st, err := s.svc.Plan.State(r.Context(), userID(r))
	if err != nil {
		return "", err
	}
	if st.CurrentProject == "" {
		return "", errors.New("no project selected")
	}
	return st.CurrentProject, nil
}

func (s *Server) handleBlueprints(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		projectID, err := s.projectParam(r, r.URL.Query().Get("project"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		items, err := s.svc.Projects.Blueprints(r.Context(), userID(r), projectID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
		return
	}

	var body struct {
		Project   string               `json:"project"`
		Blueprint domain.MealBlueprint `json:"blueprint"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	projectID, err := s.projectParam(r, body.Project)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	bp, err := s.svc.Projects.AddBlueprint(r.Context(), userID(r), projectID, body.Blueprint)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.refreshPlan(r)
	writeJSON(w, http.StatusCreated, bp)
}
