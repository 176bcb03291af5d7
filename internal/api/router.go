package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/safestreet/account-service/docs"
	"github.com/safestreet/account-service/internal/api/handler"
	"github.com/safestreet/account-service/internal/api/middleware"
	"github.com/safestreet/account-service/internal/core/ports"
	"github.com/safestreet/account-service/internal/core/service"
	mongostore "github.com/safestreet/account-service/internal/infrastructure/db/mongo"
	redisstore "github.com/safestreet/account-service/internal/infrastructure/db/redis"
	"github.com/safestreet/account-service/internal/infrastructure/mail"
	"github.com/safestreet/account-service/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit ports.AuditRecorder, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("safestreet"))

	// --- Dependencies ---
	users := mongostore.NewUserRepository(db)
	tokens := service.NewTokenService(cfg.JWTSecret)
	mailer := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
		Timeout:  cfg.SMTP.Timeout,
		Disabled: cfg.SMTP.Disabled,
	}, log)
	accounts := service.NewAccountService(
		users, tokens, mailer, audit,
		cfg.BaseURL, cfg.VerifyTokenTTL, cfg.SessionTokenTTL, log,
	)

	accountHandler := handler.NewAccountHandler(accounts)
	limiter := redisstore.NewLimiter(rdb, cfg.AuthRateLimit, cfg.AuthRateWindow)
	throttle := middleware.RateLimit(limiter, log)
	sessionGuard := middleware.Session(tokens)

	// --- Account routes ---
	e.POST("/signup", accountHandler.Signup, throttle)
	e.GET("/verify-email", accountHandler.VerifyEmail)
	e.POST("/login", accountHandler.Login, throttle)
	e.GET("/me", accountHandler.Me, sessionGuard)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
