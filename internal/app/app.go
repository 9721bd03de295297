package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms-backend/internal/cache"
	"lms-backend/internal/config"
	"lms-backend/internal/database"
	"lms-backend/internal/handler"
	"lms-backend/internal/mailer"
	"lms-backend/internal/middleware"
	"lms-backend/internal/objectstore"
	"lms-backend/internal/repository"
	"lms-backend/internal/router"
	"lms-backend/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, database.PoolSettings{
		MaxConns:          cfg.DBMaxConns,
		MinConns:          cfg.DBMinConns,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	sessionCache, err := cache.New(context.Background(), cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to session cache: %w", err)
	}

	smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, slog.Default())
	if err != nil {
		sessionCache.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	objects, err := objectstore.NewS3Store(context.Background(), objectstore.Options{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		sessionCache.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	layoutRepo := repository.NewLayoutRepository(pool)
	slog.Info("database ready")

	tokenService := service.NewTokenService(cfg)
	userService := service.NewUserService(tokenService, userRepo, sessionCache, smtpMailer, objects, cfg.SessionTTL)
	courseService := service.NewCourseService(courseRepo, sessionCache, objects, notificationRepo)
	orderService := service.NewOrderService(orderRepo, courseRepo, userService, notificationRepo, smtpMailer)
	notificationService := service.NewNotificationService(notificationRepo)
	layoutService := service.NewLayoutService(layoutRepo, objects)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, userService)

	userHandler := handler.NewUserHandler(userService, tokenService)
	courseHandler := handler.NewCourseHandler(courseService)
	orderHandler := handler.NewOrderHandler(orderService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	layoutHandler := handler.NewLayoutHandler(layoutService)

	appRouter := router.New(cfg, authMiddleware, userHandler, courseHandler, orderHandler, notificationHandler, layoutHandler)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				if err := sessionCache.Close(); err != nil {
					slog.Warn("closing session cache", "error", err)
				}
			},
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
