package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"recommendations-service/internal/recommendations"
	"recommendations-service/internal/services/health"
	"recommendations-service/internal/shared/config"
	"recommendations-service/internal/shared/server"
	"recommendations-service/internal/shared/storage/db"
	"recommendations-service/internal/shared/telemetry"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
)

// App holds shared dependencies.
type App struct {
	Config                 config.Config
	Router                 *gin.Engine
	DB                     *sql.DB
	StoreKind              string
	RecommendationsRepo    recommendations.Repo
	RecommendationsService *recommendations.Service
	RecommendationsHandler *recommendations.Handler
	Health                 *health.Service
}

// Build prepares dependencies and the router. Without DATABASE_URL in a
// dev-like env the in-memory store is used; a set but unreachable
// DATABASE_URL is an error in every env.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:                 app.Config,
		Health:                 app.Health,
		RecommendationsHandler: app.RecommendationsHandler,
	})
	return app, nil
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.store", map[string]any{"store": storeMemory, "reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// An explicit DATABASE_URL is never silently replaced by the memory store.
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.RecommendationsRepo = &recommendations.PGRepo{DB: app.DB}
		app.StoreKind = storePostgres
	} else {
		app.RecommendationsRepo = recommendations.NewMemoryRepo()
		app.StoreKind = storeMemory
	}

	app.RecommendationsService = recommendations.NewService(app.RecommendationsRepo)
	app.RecommendationsHandler = recommendations.NewHandler(app.RecommendationsService)
	app.Health = health.NewService(app.StoreKind)

	if app.RecommendationsHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
