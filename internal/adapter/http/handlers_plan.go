package adapthttp

import (
	"net/http"

	"mealplanner/internal/app"
	"mealplanner/internal/plan"
)

type planResponse struct {
	State   plan.State     `json:"state"`
	Summary app.DaySummary `json:"summary"`
}

func (s *Server) writePlan(w http.ResponseWriter, st plan.State) {
	writeJSON(w, http.StatusOK, planResponse{State: st, Summary: s.svc.Summary.Summarize(st.Meals)})
}

// planResult writes the state returned by a plan operation or its error.
func (s *Server) planResult(w http.ResponseWriter, r *http.Request, st plan.State, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writePlan(w, st)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	st, err := s.svc.Plan.State(r.Context(), userID(r))
	s.planResult(w, r, st, err)
}

func (s *Server) handlePlanReload(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	st, err := s.svc.Plan.Load(r.Context(), userID(r))
	s.planResult(w, r, st, err)
}

func (s *Server) handlePlanSelect(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		MealID string `json:"mealId"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, err := s.svc.Plan.SelectMeal(r.Context(), userID(r), body.MealID)
	s.planResult(w, r, st, err)
}

func (s *Server) handlePlanProject(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		ProjectID string `json:"projectId"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, err := s.svc.Plan.SelectProject(r.Context(), userID(r), body.ProjectID)
	s.planResult(w, r, st, err)
}

func (s *Server) handlePlanPortions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost, http.MethodDelete, http.MethodPut) {
		return
	}
	var body struct {
		MealID string  `json:"mealId"`
		FoodID string  `json:"foodId"`
		Qty    float64 `json:"qty"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var (
		st  plan.State
		err error
	)
	switch r.Method {
	case http.MethodPost:
		st, err = s.svc.Plan.AddPortion(r.Context(), userID(r), body.FoodID)
	case http.MethodDelete:
		st, err = s.svc.Plan.RemovePortion(r.Context(), userID(r), body.MealID, body.FoodID)
	case http.MethodPut:
		st, err = s.svc.Plan.SetPortionQty(r.Context(), userID(r), body.MealID, body.FoodID, body.Qty)
	}
	s.planResult(w, r, st, err)
}

func (s *Server) handlePlanDate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Date string `json:"date"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	day, err := parseDay(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, err := s.svc.Plan.ChangeDisplayDate(r.Context(), userID(r), day)
	s.planResult(w, r, st, err)
}

func (s *Server) handlePlanSeed(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	st, err := s.svc.Plan.SeedDay(r.Context(), userID(r))
	s.planResult(w, r, st, err)
}

func (s *Server) handlePlanSave(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.svc.Plan.Save(r.Context(), userID(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true})
}

func (s *Server) handleSummaryDaily(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	projectID, err := s.projectParam(r, r.URL.Query().Get("project"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	points, err := s.svc.Summary.Daily(r.Context(), userID(r), projectID, intQuery(r, "days", 7))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": points})
}
