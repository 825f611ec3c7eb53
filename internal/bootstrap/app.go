package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hse-backend/internal/access"
	"hse-backend/internal/massimport"
	"hse-backend/internal/ppe"
	"hse-backend/internal/records"
	"hse-backend/internal/shared/config"
	"hse-backend/internal/shared/metrics"
	"hse-backend/internal/shared/server"
	"hse-backend/internal/shared/server/middleware"
	"hse-backend/internal/shared/storage/db"
	"hse-backend/internal/shared/storage/object"
	localstore "hse-backend/internal/shared/storage/object/local"
	s3store "hse-backend/internal/shared/storage/object/s3"
	"hse-backend/internal/shared/telemetry"
	"hse-backend/internal/workers"
)

// App holds shared dependencies.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	DB            *sql.DB
	Store         object.ObjectStore
	WorkersRepo   workers.Repo
	RecordsRepo   records.Repo
	Access        *access.Service
	Ledger        ppe.Ledger
	Progress      massimport.ProgressStore
	ImportService *massimport.Service
	ImportHandler *massimport.Handler
	PPEHandler    *ppe.Handler
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg, db.DefaultServerOptions())
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        app.Config,
		ImportHandler: app.ImportHandler,
		PPEHandler:    app.PPEHandler,
		Limiter:       middleware.NewRateLimiter(nil),
	})
	return app, nil
}

// BuildCLI prepares the import service for command-line runs. A database is
// required: without one there are no workers to reconcile against.
func BuildCLI(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	app := &App{Config: cfg, DB: sqlDB, Store: store}
	if err := buildServices(app); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config, defaults db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(defaults))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	metrics.RegisterDB("hse", sqlDB)
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var (
		workerRepo workers.Repo
		recordRepo records.Repo
		memberRepo access.MembershipRepo
		ledger     ppe.Ledger
	)
	if app.DB != nil {
		workerRepo = &workers.PGRepo{DB: app.DB}
		recordRepo = &records.PGRepo{DB: app.DB}
		memberRepo = &access.PGRepo{DB: app.DB}
		ledger = &ppe.PGLedger{DB: app.DB}
	} else {
		workerRepo = workers.NewMemoryRepo()
		recordRepo = records.NewMemoryRepo()
		memberRepo = access.NewMemoryRepo()
		ledger = ppe.NewMemoryLedger()
	}

	accessSvc := access.NewService(memberRepo)
	progress := massimport.NewMemoryProgressStore(app.Config.Import.ProgressTTL)
	importSvc := &massimport.Service{
		Workers:  workerRepo,
		Access:   accessSvc,
		Records:  recordRepo,
		Ledger:   ledger,
		Store:    app.Store,
		Progress: progress,
		Reports: &massimport.ReportRenderer{
			Store:         app.Store,
			PublicBaseURL: app.Config.PublicBaseURL,
		},
		Now:           time.Now,
		Location:      app.Config.Import.Location(),
		DefaultLocale: app.Config.Import.ReportLocale,
	}

	app.WorkersRepo = workerRepo
	app.RecordsRepo = recordRepo
	app.Access = accessSvc
	app.Ledger = ledger
	app.Progress = progress
	app.ImportService = importSvc
	app.ImportHandler = massimport.NewHandler(importSvc, app.Config.Import.MaxUploadBytes)
	app.PPEHandler = ppe.NewHandler(ledger, accessSvc)

	if app.ImportHandler == nil || app.PPEHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}
