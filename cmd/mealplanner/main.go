package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	adapthttp "mealplanner/internal/adapter/http"
	"mealplanner/internal/adapter/memory"
	"mealplanner/internal/adapter/postgres"
	"mealplanner/internal/adapter/seed"
	"mealplanner/internal/app"
	"mealplanner/internal/domain"
)

// store is implemented by both persistence adapters.
type store interface {
	domain.FoodRepository
	domain.CategoryRepository
	domain.ProjectRepository
	domain.BlueprintRepository
	domain.MealRepository
	domain.SessionInfoRepository
	domain.UserRepository
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		// A malformed .env is worth failing for; a missing one is not.
		panic(err)
	}

	log, err := newLogger(env("ENV", "development"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		log.Fatal("mealplanner stopped", zap.Error(err))
	}
}

func newLogger(mode string) (*zap.Logger, error) {
	switch strings.ToLower(mode) {
	case "prod", "production":
		return zap.NewProduction()
	default:
		return zap.NewDevelopment()
	}
}

func run(log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")

	var (
		db       store
		sessions domain.SessionRepository
	)
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		pg, err := postgres.Open(connStr)
		if err != nil {
			return err
		}
		defer func() { _ = pg.Close() }()
		db, sessions = pg, postgres.NewSessionRepo(pg)
		log.Info("using postgres storage")
	} else {
		mem := memory.New()
		db, sessions = mem, mem.NewSessionRepo()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	svc := adapthttp.Services{
		Auth:     app.NewAuthService(db, sessions),
		Catalog:  app.NewCatalogService(db, db, log.Named("catalog")),
		Projects: app.NewProjectService(db, db),
		Plan: app.NewPlanService(app.PlanRepos{
			Projects:   db,
			Blueprints: db,
			Meals:      db,
			Foods:      db,
			Categories: db,
			Sessions:   db,
		}, log.Named("plan")),
		Summary: app.NewSummaryService(db),
	}

	if err := importSeed(ctx, log, svc.Catalog); err != nil {
		return err
	}

	srv := adapthttp.New(svc, webDir, log.Named("http"))
	if envBool("DISABLE_AUTH") {
		log.Warn("authentication disabled")
		srv.WithoutAuth()
	}
	if envBool("TRUST_FORWARD_AUTH") {
		log.Info("trusting Remote-User header from reverse proxy")
		srv.WithForwardAuth()
	}
	if issuer := os.Getenv("OIDC_ISSUER"); issuer != "" {
		cfg, err := oidcConfig(ctx, issuer)
		if err != nil {
			return err
		}
		srv.WithOIDC(cfg)
		log.Info("sso enabled", zap.String("issuer", issuer))
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		pruneSessions(gctx, log, sessions)
		return nil
	})
	return g.Wait()
}

// importSeed fills the catalog of SEED_USER_ID from FOOD_SEED. "off"
// disables it; an empty value uses the bundled catalog.
func importSeed(ctx context.Context, log *zap.Logger, catalog *app.CatalogService) error {
	path := os.Getenv("FOOD_SEED")
	if path == "off" {
		return nil
	}
	c, err := seed.Load(path)
	if err != nil {
		return err
	}
	userID, err := strconv.ParseInt(env("SEED_USER_ID", "1"), 10, 64)
	if err != nil {
		return errors.New("SEED_USER_ID must be an integer")
	}
	n, err := catalog.Import(ctx, userID, c.Categories, c.Foods)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info("seeded food catalog", zap.Int64("user_id", userID), zap.Int("foods", n))
	}
	return nil
}

func oidcConfig(ctx context.Context, issuer string) (adapthttp.OIDCConfig, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// pruneSessions deletes expired sessions once an hour until ctx ends.
func pruneSessions(ctx context.Context, log *zap.Logger, sessions domain.SessionRepository) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				log.Warn("prune sessions", zap.Error(err))
			}
		}
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
