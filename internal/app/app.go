package app

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/unitnode/unitnode/internal/codestore"
	"github.com/unitnode/unitnode/internal/config"
	"github.com/unitnode/unitnode/internal/db"
	"github.com/unitnode/unitnode/internal/repository"
	"github.com/unitnode/unitnode/internal/service"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Codes           codestore.Store
	UserRepository  repository.UserRepository
	AuthService     *service.AuthService
	SessionService  *service.SessionService
	OAuthService    *service.OAuthService
	EmailService    *service.EmailService
	PropertyService *service.PropertyService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	propertyRepository := repository.NewPropertyRepository(database)

	// Code store: in-process by default, Redis when shared across instances
	var codes codestore.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		codes = codestore.NewRedis(client)
		slog.Info("code store backed by redis", "addr", cfg.RedisAddr)
	} else {
		codes = codestore.NewMemory()
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.SupportEmail,
		cfg.IsDevelopment(),
	)
	verifier := service.NewVerifier(
		codes,
		cfg.VerifyTokenSecret,
		cfg.VerifyTokenExpiry,
		cfg.AuthCodeTTL,
		cfg.AuthCodeAcceptAny,
		cfg.IsProduction(),
	)
	authService := service.NewAuthService(userRepository, verifier, emailService)
	sessionService := service.NewSessionService(cfg.SessionSecret, cfg.SessionExpiry, cfg.IsProduction())
	oauthService := service.NewOAuthService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	propertyService := service.NewPropertyService(propertyRepository)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Codes:           codes,
		UserRepository:  userRepository,
		AuthService:     authService,
		SessionService:  sessionService,
		OAuthService:    oauthService,
		EmailService:    emailService,
		PropertyService: propertyService,
	}, nil
}

func (a *App) Close() error {
	if a.Codes != nil {
		err := a.Codes.Close()
		if err != nil {
			slog.Warn("failed to close code store", "error", err)
		}
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
