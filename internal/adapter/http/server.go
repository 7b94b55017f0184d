package adapthttp

import (
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"mealplanner/internal/app"
)

// OIDCConfig holds the single sign-on settings. SSO routes answer 404 while
// Enabled is false.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Services bundles the application services the adapter drives.
type Services struct {
	Auth     *app.AuthService
	Catalog  *app.CatalogService
	Projects *app.ProjectService
	Plan     *app.PlanService
	Summary  *app.SummaryService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	svc         Services
	authSvc     *app.AuthService
	webDir      string
	log         *zap.Logger
	oidcConfig  OIDCConfig
	disableAuth bool
	forwardAuth bool
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, authSvc: svc.Auth, webDir: webDir, log: log}
}

// WithOIDC enables single sign-on.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithoutAuth disables authentication; every request acts as the default
// user.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// WithForwardAuth trusts the Remote-User header set by an authenticating
// reverse proxy. Only enable it when the proxy strips the header from
// client requests.
func (s *Server) WithForwardAuth() *Server {
	s.forwardAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)
	api.HandleFunc("/login", s.handleLogin)
	api.HandleFunc("/logout", s.handleLogout)
	api.HandleFunc("/setup", s.handleSetupUser)
	api.HandleFunc("/sso/login", s.handleSSOLogin)
	api.HandleFunc("/sso/callback", s.handleSSOCallback)

	protected := http.NewServeMux()
	protected.HandleFunc("/foods", s.handleFoods)
	protected.HandleFunc("/foods/{id}", s.handleFood)
	protected.HandleFunc("/categories", s.handleCategories)
	protected.HandleFunc("/projects", s.handleProjects)
	protected.HandleFunc("/blueprints", s.handleBlueprints)

	protected.HandleFunc("/plan", s.handlePlan)
	protected.HandleFunc("/plan/reload", s.handlePlanReload)
	protected.HandleFunc("/plan/select", s.handlePlanSelect)
	protected.HandleFunc("/plan/project", s.handlePlanProject)
	protected.HandleFunc("/plan/portions", s.handlePlanPortions)
	protected.HandleFunc("/plan/date", s.handlePlanDate)
	protected.HandleFunc("/plan/seed", s.handlePlanSeed)
	protected.HandleFunc("/plan/save", s.handlePlanSave)

	protected.HandleFunc("/summary/daily", s.handleSummaryDaily)

	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
