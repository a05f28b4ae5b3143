package cmd

import (
	"fmt"
	"net/http"

	"taskflow/api"
	"taskflow/api/health"
	apitask "taskflow/api/task"
	taskapp "taskflow/application/task"
	"taskflow/config"
	"taskflow/domain/task"
	"taskflow/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppBuilder wires configuration, store, services and controllers into an App.
type AppBuilder struct {
	cfg         *config.Config
	controllers []api.ControllerRegister
	repo        task.Repository
}

func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{
		cfg:         cfg,
		controllers: []api.ControllerRegister{},
	}
}

// WithController mounts an additional controller under /api.
func (b *AppBuilder) WithController(c api.ControllerRegister) *AppBuilder {
	b.controllers = append(b.controllers, c)
	return b
}

// WithRepository replaces the store selected by database.type.
func (b *AppBuilder) WithRepository(repo task.Repository) *AppBuilder {
	b.repo = repo
	return b
}

// Build initializes the logger, opens the store and assembles the HTTP server.
func (b *AppBuilder) Build() (*App, error) {
	if err := logger.Init(&b.cfg.Log, b.cfg.App.Env); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Starting application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env),
		zap.String("store", b.cfg.Database.Type))

	var db *gorm.DB
	repo := b.repo
	if repo == nil {
		var err error
		repo, db, err = b.initStore()
		if err != nil {
			return nil, err
		}
	}

	taskService := taskapp.NewService(repo)

	controllers := append([]api.ControllerRegister{
		b.newHealthController(db),
		apitask.NewController(taskService),
	}, b.controllers...)

	router := api.NewRouter(b.cfg, controllers...)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}

	return &App{
		config: b.cfg,
		server: server,
		db:     db,
	}, nil
}

func (b *AppBuilder) newHealthController(db *gorm.DB) *health.Controller {
	if db == nil {
		return health.NewController(b.cfg, nil)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("Health check will not ping the database", zap.Error(err))
		return health.NewController(b.cfg, nil)
	}
	return health.NewController(b.cfg, sqlDB)
}
