package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	adapthttp "mealplanner/internal/adapter/http"
	"mealplanner/internal/adapter/memory"
	"mealplanner/internal/app"
	"mealplanner/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock auth repositories (function-fields pattern)
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	getByIDFn func(ctx context.Context, id int64) (*domain.User, error)
	createFn  func(ctx context.Context, username, passwordHash string) (*domain.User, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	return 0, nil
}

type mockSessionRepo struct {
	getByTokenFn func(ctx context.Context, token string) (*domain.Session, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	return nil
}

// ---------------------------------------------------------------------------
// Test-server helper
// ---------------------------------------------------------------------------

type testEnv struct {
	ts *httptest.Server
	db *memory.DB
}

func newServer(t *testing.T, users domain.UserRepository, sessions domain.SessionRepository) (*adapthttp.Server, *memory.DB) {
	t.Helper()
	db := memory.New()
	svc := adapthttp.Services{
		Auth:     app.NewAuthService(users, sessions),
		Catalog:  app.NewCatalogService(db, db, nil),
		Projects: app.NewProjectService(db, db),
		Plan: app.NewPlanService(app.PlanRepos{
			Projects: db, Blueprints: db, Meals: db, Foods: db, Categories: db, Sessions: db,
		}, nil),
		Summary: app.NewSummaryService(db),
	}

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}
	return adapthttp.New(svc, webDir, nil), db
}

func newTestServer(t *testing.T) testEnv {
	t.Helper()
	srv, db := newServer(t, &mockUserRepo{}, &mockSessionRepo{})
	ts := httptest.NewServer(srv.WithoutAuth().Handler())
	t.Cleanup(ts.Close)
	return testEnv{ts: ts, db: db}
}

func (e testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, e.ts.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected %d, got %d", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode)
	}
}

type planBody struct {
	State struct {
		SelectedMeal   string        `json:"selectedMeal"`
		Meals          []domain.Meal `json:"meals"`
		CurrentProject string        `json:"currentProject"`
	} `json:"state"`
	Summary app.DaySummary `json:"summary"`
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(t)
	resp := e.do(t, http.MethodGet, "/api/health", nil)
	expectStatus(t, resp, http.StatusOK)

	var body map[string]any
	decodeInto(t, resp, &body)
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
	if resp.Header.Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store, got %q", resp.Header.Get("Cache-Control"))
	}
}

func TestFoods_AddAndFilter(t *testing.T) {
	e := newTestServer(t)

	for _, f := range []domain.FoodItem{
		{Name: "Oats", Category: "grain", PortionMultiplier: 1, Energy: 370, Protein: 13},
		{Name: "Chicken", Category: "meat", PortionMultiplier: 1, Energy: 165, Protein: 31},
	} {
		expectStatus(t, e.do(t, http.MethodPost, "/api/foods", f), http.StatusCreated)
	}

	var got struct {
		Items []domain.FoodItem `json:"items"`
	}
	decodeInto(t, e.do(t, http.MethodGet, "/api/foods?q=fe%3E20", nil), &got)
	if len(got.Items) != 1 || got.Items[0].Name != "Chicken" {
		t.Errorf("expected only chicken, got %+v", got.Items)
	}

	decodeInto(t, e.do(t, http.MethodGet, "/api/foods?category=grain", nil), &got)
	if len(got.Items) != 1 || got.Items[0].Name != "Oats" {
		t.Errorf("expected only oats, got %+v", got.Items)
	}
}

func TestFoods_InvalidBody(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"unknown field", map[string]any{"name": "x", "portionMultiplier": 1, "bogus": true}},
		{"failed validation", domain.FoodItem{Name: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, e.do(t, http.MethodPost, "/api/foods", tt.body), http.StatusBadRequest)
		})
	}
}

func TestFood_UpdateMissing(t *testing.T) {
	e := newTestServer(t)
	resp := e.do(t, http.MethodPut, "/api/foods/nope", domain.FoodItem{Name: "x", PortionMultiplier: 1})
	expectStatus(t, resp, http.StatusNotFound)
}

func TestMethodNotAllowed(t *testing.T) {
	e := newTestServer(t)
	expectStatus(t, e.do(t, http.MethodDelete, "/api/foods", nil), http.StatusMethodNotAllowed)
}

func TestPlanFlow(t *testing.T) {
	e := newTestServer(t)
	ctx := context.Background()

	food, err := e.db.AddFood(ctx, 1, domain.FoodItem{Name: "Oats", PortionMultiplier: 1, Energy: 100})
	if err != nil {
		t.Fatal(err)
	}

	resp := e.do(t, http.MethodPost, "/api/projects", map[string]any{
		"name": "Cut",
		"blueprints": []map[string]any{
			{"name": "Breakfast", "limits": map[string]any{"energy": map[string]any{"min": 150, "max": 400}}},
			{"name": "Dinner", "limits": map[string]any{"energy": 600}},
		},
	})
	expectStatus(t, resp, http.StatusCreated)

	// No meals yet: adding a portion needs a selected meal.
	expectStatus(t, e.do(t, http.MethodPost, "/api/plan/portions", map[string]any{"foodId": food.ID}), http.StatusConflict)

	var pb planBody
	resp = e.do(t, http.MethodPost, "/api/plan/seed", nil)
	expectStatus(t, resp, http.StatusOK)
	decodeInto(t, resp, &pb)
	if len(pb.State.Meals) != 2 {
		t.Fatalf("expected 2 seeded meals, got %d", len(pb.State.Meals))
	}
	breakfast := pb.State.Meals[0].ID

	resp = e.do(t, http.MethodPost, "/api/plan/portions", map[string]any{"foodId": food.ID})
	expectStatus(t, resp, http.StatusOK)
	decodeInto(t, resp, &pb)

	cell := pb.Summary.Meals[0].Cells[0]
	if cell.Sum != 100 || !cell.TooLow || cell.MinLabel != "> 150" {
		t.Errorf("unexpected breakfast energy cell %+v", cell)
	}
	total := pb.Summary.Total[0]
	if total.MaxLabel != "< 1000" {
		t.Errorf("expected merged ceiling of 1000, got %+v", total)
	}

	resp = e.do(t, http.MethodPut, "/api/plan/portions", map[string]any{"mealId": breakfast, "foodId": food.ID, "qty": 0})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = e.do(t, http.MethodPut, "/api/plan/portions", map[string]any{"mealId": breakfast, "foodId": food.ID, "qty": 2})
	expectStatus(t, resp, http.StatusOK)

	expectStatus(t, e.do(t, http.MethodPost, "/api/plan/select", map[string]any{"mealId": "missing"}), http.StatusNotFound)
	expectStatus(t, e.do(t, http.MethodPost, "/api/plan/save", nil), http.StatusOK)

	stored, err := e.db.ListMeals(ctx, 1, pb.State.CurrentProject, time.Time{}, time.Now().AddDate(1, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 || len(stored[0].Portions) != 1 || stored[0].Portions[0].Qty != 2 {
		t.Errorf("unexpected stored meals %+v", stored)
	}

	resp = e.do(t, http.MethodGet, "/api/summary/daily?days=3", nil)
	expectStatus(t, resp, http.StatusOK)
	var daily struct {
		Days []app.DayPoint `json:"days"`
	}
	decodeInto(t, resp, &daily)
	if len(daily.Days) != 3 {
		t.Errorf("expected 3 days, got %d", len(daily.Days))
	}
}

func TestPlanDate_BadDate(t *testing.T) {
	e := newTestServer(t)
	expectStatus(t, e.do(t, http.MethodPost, "/api/plan/date", map[string]any{"date": "14.03.2024"}), http.StatusBadRequest)
}

func TestPlanDate_SwitchesDay(t *testing.T) {
	e := newTestServer(t)
	ctx := context.Background()
	p, _, err := e.db.AddProject(ctx, 1, domain.Project{Name: "P"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	m, err := e.db.AddMeal(ctx, 1, p.ID, domain.Meal{Name: "Lunch", Date: day})
	if err != nil {
		t.Fatal(err)
	}

	resp := e.do(t, http.MethodPost, "/api/plan/date", map[string]any{"date": "2024-03-14"})
	expectStatus(t, resp, http.StatusOK)
	var pb planBody
	decodeInto(t, resp, &pb)
	if pb.State.SelectedMeal != m.ID {
		t.Errorf("expected %q selected, got %q", m.ID, pb.State.SelectedMeal)
	}
}

func TestProtectedRoute_RequiresSession(t *testing.T) {
	srv, _ := newServer(t, &mockUserRepo{}, &mockSessionRepo{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/plan")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	// Public routes stay reachable.
	resp2, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp2.Body.Close() //nolint:errcheck
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp2.StatusCode)
	}
}

func TestProtectedRoute_ValidSession(t *testing.T) {
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
			return &domain.Session{Token: token, UserID: 7, UserAgent: "test-agent", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	users := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, Username: "u"}, nil
		},
	}
	srv, db := newServer(t, users, sessions)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	if _, err := db.AddCategory(context.Background(), 7, domain.FoodCategory{ID: "fruit", Name: "Fruit"}); err != nil {
		t.Fatal(err)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/categories", nil)
	req.Header.Set("User-Agent", "test-agent")
	req.AddCookie(&http.Cookie{Name: "session", Value: "tok"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got struct {
		Items []domain.FoodCategory `json:"items"`
	}
	decodeInto(t, resp, &got)
	if len(got.Items) != 1 || got.Items[0].ID != "fruit" {
		t.Errorf("expected user 7's categories, got %+v", got.Items)
	}
}

func TestForwardAuth(t *testing.T) {
	tests := []struct {
		name        string
		trust       bool
		wantStatus  int
		wantCreated []string
	}{
		{name: "header ignored by default", trust: false, wantStatus: http.StatusUnauthorized},
		{name: "header trusted when enabled", trust: true, wantStatus: http.StatusOK, wantCreated: []string{"alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created []string
			users := &mockUserRepo{
				createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
					created = append(created, username)
					return &domain.User{ID: 3, Username: username}, nil
				},
			}
			srv, _ := newServer(t, users, &mockSessionRepo{})
			if tt.trust {
				srv.WithForwardAuth()
			}
			ts := httptest.NewServer(srv.Handler())
			defer ts.Close()

			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/categories", nil)
			req.Header.Set("Remote-User", "alice")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close() //nolint:errcheck
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if len(created) != len(tt.wantCreated) || (len(created) > 0 && created[0] != tt.wantCreated[0]) {
				t.Errorf("expected users %v created, got %v", tt.wantCreated, created)
			}
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	srv, _ := newServer(t, &mockUserRepo{}, &mockSessionRepo{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := bytes.NewBufferString(`{"username":"nobody","password":"whatever"}`)
	resp, err := http.Post(ts.URL+"/api/login", "application/json", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestSSO_DisabledByDefault(t *testing.T) {
	e := newTestServer(t)
	expectStatus(t, e.do(t, http.MethodGet, "/api/sso/login", nil), http.StatusNotFound)

	var cfg map[string]any
	decodeInto(t, e.do(t, http.MethodGet, "/api/config", nil), &cfg)
	if cfg["sso_enabled"] != false {
		t.Errorf("expected sso_enabled=false, got %v", cfg["sso_enabled"])
	}
}

func TestSPAFallback(t *testing.T) {
	e := newTestServer(t)
	resp := e.do(t, http.MethodGet, "/some/client/route", nil)
	expectStatus(t, resp, http.StatusOK)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if buf.String() != "<html></html>" {
		t.Errorf("expected index.html, got %q", buf.String())
	}
}
