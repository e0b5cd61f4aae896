package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"fitpack_admin/internal/config"
	"fitpack_admin/internal/dashboard"
	"fitpack_admin/internal/data"
	"fitpack_admin/internal/handlers"
	authMiddleware "fitpack_admin/internal/middleware"
	"fitpack_admin/internal/services"
	"fitpack_admin/internal/session"
	"fitpack_admin/web/templates"
	"fitpack_admin/web/templates/pages"
)

func main() {
	cfg := config.Load()

	logger, err := services.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Firebase
	fbApp, authClient, err := services.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.Storage.Bucket)
	if err != nil {
		logger.Warn("firebase initialization failed; auth features will not work until valid credentials are provided", zap.Error(err))
	}

	// interfaces stay nil, not typed nil, when firebase is unavailable
	var (
		sessions handlers.SessionIssuer
		cookies  authMiddleware.SessionVerifier
		tokens   authMiddleware.IDTokenVerifier
	)
	if authClient != nil {
		sessions, cookies, tokens = authClient, authClient, authClient
	}

	// Initialize Database
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	db, err := services.InitDB(cfg.DatabaseURL, !cfg.IsProduction(), logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := services.AutoMigrate(db, logger); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}
	store := data.NewStore(db)

	// Redis keeps the dashboard state, flashes and signals
	cache, err := services.NewRedisCache(cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer cache.Close()

	files, err := services.NewFileStorage(ctx, cfg.Storage, fbApp, logger)
	if err != nil {
		logger.Fatal("failed to initialize file storage", zap.Error(err))
	}

	dash := dashboard.New(store, files, services.NewImageProcessor(cfg.ImageMaxDimension), services.NewBcryptHasher(), logger)
	states := session.NewStates(cache, cfg.SessionTTL)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = authMiddleware.NewErrorHandler(logger)
	e.Renderer = templates.Default()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(authMiddleware.RequestLogger(logger))
	e.Use(middleware.BodyLimit("8M"))

	// Static file serving
	e.Static("/static", "web/static")
	if local, ok := files.(*services.LocalStorage); ok {
		e.Static(strings.TrimSuffix(local.PublicPrefix(), "/"), local.Root())
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessions, states, pages.LoginProps{
		FirebaseAPIKey:     cfg.FirebaseAPIKey,
		FirebaseAuthDomain: cfg.FirebaseAuthDomain,
		FirebaseProjectID:  cfg.FirebaseProjectID,
	}, cfg.SessionTTL, cfg.IsProduction(), logger)
	adminHandler := handlers.NewAdminHandler(dash, states, session.NewFlashes(cache),
		session.NewSignalBus(cache, logger), cache, store, cfg.CurrencySymbol, logger)
	ordersHandler := handlers.NewOrdersHandler(store, cfg.CurrencySymbol)

	// Public routes
	e.GET("/login", authHandler.LoginPage)
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)

	// Protected routes
	protected := e.Group("")
	protected.Use(authMiddleware.RequireAuth(cookies, store, logger))
	protected.GET("/orders", ordersHandler.List)

	admin := protected.Group("/admin", authMiddleware.RequireAdmin)
	admin.GET("", adminHandler.Show)
	admin.POST("/actions/:action", adminHandler.Action)
	admin.GET("/orders/export", adminHandler.Export)
	admin.GET("/signals", adminHandler.Signals)

	// API routes
	api := e.Group("/api", authMiddleware.RequireToken(tokens))
	api.GET("/ssp-data", handlers.SampleData)

	// Redirect root to the dashboard (or login if not authenticated)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/admin")
	})

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
