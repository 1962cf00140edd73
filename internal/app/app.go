package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/templui/betterme/internal/config"
	"github.com/templui/betterme/internal/db"
	"github.com/templui/betterme/internal/markdown"
	"github.com/templui/betterme/internal/repository"
	"github.com/templui/betterme/internal/service"
	"github.com/templui/betterme/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	AuthService     *service.AuthService
	IdentityService *service.IdentityService
	UserService     *service.UserService
	EmailService    *service.EmailService
	FileService     *service.FileService
	GoalService     *service.GoalService
	StepService     *service.StepService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a, err := build(cfg, database)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

// build wires repositories and services on top of an open, migrated database.
func build(cfg *config.Config, database *sqlx.DB) (*App, error) {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	stepRepository := repository.NewStepRepository(database)

	// Storage is optional; without a bucket picture uploads are disabled
	fileStorage, err := storage.New(cfg)
	if err != nil {
		if !errors.Is(err, storage.ErrNotConfigured) {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		slog.Info("S3 storage not configured, picture uploads disabled")
		fileStorage = nil
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	fileService := service.NewFileService(fileStorage)
	guard := service.NewOwnershipGuard(goalRepository, stepRepository)

	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry, cfg.SecureCookies())
	identityService := service.NewIdentityService(userRepository, emailService)
	userService := service.NewUserService(userRepository, fileService, emailService)
	goalService := service.NewGoalService(goalRepository, stepRepository, markdown.NewRenderer())
	stepService := service.NewStepService(stepRepository, guard)

	return &App{
		Cfg:             cfg,
		DB:              database,
		AuthService:     authService,
		IdentityService: identityService,
		UserService:     userService,
		EmailService:    emailService,
		FileService:     fileService,
		GoalService:     goalService,
		StepService:     stepService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
