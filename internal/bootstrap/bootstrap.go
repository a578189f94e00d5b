package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/hobbysphere/internal/app/controllers"
	appMigrations "github.com/yigit/hobbysphere/internal/app/migrations"
	appRepos "github.com/yigit/hobbysphere/internal/app/repositories"
	appRoutes "github.com/yigit/hobbysphere/internal/app/routes"
	appServices "github.com/yigit/hobbysphere/internal/app/services"
	"github.com/yigit/hobbysphere/internal/config"
	"github.com/yigit/hobbysphere/internal/db"
	appMiddleware "github.com/yigit/hobbysphere/internal/middleware"
	"github.com/yigit/hobbysphere/internal/pkg/helpers"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
	"github.com/yigit/hobbysphere/internal/pkg/logger"
	"github.com/yigit/hobbysphere/internal/pkg/websocket"
	"github.com/yigit/hobbysphere/internal/seed"
)

// DefaultConfigPath is used when no --config flag is given
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Gateway            kvstore.Gateway
	Repos              *appRepos.Repositories
	Services           *appServices.Services
	Hub                *websocket.Hub
	Activity           *websocket.ActivityRecorder
	EventController    *appControllers.EventController
	SurveyController   *appControllers.SurveyController
	PostController     *appControllers.PostController
	TimelineController *appControllers.TimelineController
	WSHandler          *websocket.Handler
	Logger             zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// OpenGateway opens the storage backend selected by cfg.Storage.Driver and
// scopes it under the configured key prefix. For postgres the migrations are
// applied first so the kv_entries table exists.
func OpenGateway(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (kvstore.Gateway, error) {
	var gw kvstore.Gateway

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		gw = kvstore.NewMemoryStore()

	case config.StorageDriverBolt:
		if dir := filepath.Dir(cfg.Storage.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create storage directory: %w", err)
			}
		}
		store, err := kvstore.OpenBolt(cfg.Storage.Path)
		if err != nil {
			lgr.Error().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to open bolt store")
			return nil, err
		}
		lgr.Info().Str("path", cfg.Storage.Path).Msg("Bolt store opened")
		gw = store

	case config.StorageDriverPostgres:
		database, err := SetupDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, err
		}
		gw = kvstore.NewPostgresStore(database.Pool, kvstore.PostgresOptions{
			OpTimeout:       helpers.ParseDuration(cfg.Storage.OpTimeout, 5*time.Second),
			RetryMaxElapsed: helpers.ParseDuration(cfg.Storage.RetryMaxElapsed, 2*time.Second),
			Close:           database.Close,
		}, logger.Component(lgr, "kvstore"))

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Storage.KeyPrefix != "" {
		gw = kvstore.Namespaced(gw, cfg.Storage.KeyPrefix)
	}
	return gw, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	if err := RunMigrations(ctx, cfg, database, lgr); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// RunMigrations applies the SQL files in cfg.Database.MigrationsDir
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); errors.Is(err, os.ErrNotExist) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.Component(lgr, "migrator"))
	count, err := migrator.MigrateFromDirectory(ctx, migrationsDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Int("files", count).Msg("Database migrations successfully applied.")
	return nil
}

// BuildDependencies wires repositories, services and controllers on top of gw.
// The notification hub and the activity recorder run until ctx is cancelled.
func BuildDependencies(ctx context.Context, cfg *config.Config, gw kvstore.Gateway, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Gateway: gw, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(gw, lgr)

	deps.Hub = websocket.NewHub(logger.Component(lgr, "hub"))
	go deps.Hub.Run(ctx)

	deps.Activity = websocket.NewActivityRecorder(gw, deps.Hub, websocket.DefaultActivityLimit,
		logger.Component(lgr, "activity"))
	deps.Activity.Start(ctx)

	deps.Services = appServices.NewServices(deps.Repos, deps.Hub, lgr)

	if cfg.Seed.Enabled {
		if err := seed.CreateDefaultData(ctx, deps.Repos, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	deps.EventController = appControllers.NewEventController(deps.Services.EventService)
	deps.SurveyController = appControllers.NewSurveyController(deps.Services.SurveyService)
	deps.PostController = appControllers.NewPostController(deps.Services.PostService)
	deps.TimelineController = appControllers.NewTimelineController(deps.Services.TimelineService, deps.Activity)
	deps.WSHandler = websocket.NewHandler(deps.Hub, logger.Component(lgr, "websocket"))

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router,
		deps.EventController,
		deps.SurveyController,
		deps.PostController,
		deps.TimelineController,
		deps.WSHandler,
	)

	return router
}
