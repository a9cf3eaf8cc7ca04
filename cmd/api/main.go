package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/greengrocer/grocery-api/internal/config"
	"github.com/greengrocer/grocery-api/internal/handler"
	"github.com/greengrocer/grocery-api/internal/repository"
	"github.com/greengrocer/grocery-api/internal/service"
	"github.com/greengrocer/grocery-api/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	var store repository.Store
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dbPool, err := openPostgres(ctx, cfg.DB)
		if err != nil {
			log.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		store = repository.NewPostgresStore(dbPool)
		log.Info("connected to PostgreSQL")
	default:
		store = repository.NewMemoryStore()
		log.Info("using in-memory storage")
	}

	// Sessions
	var sessions session.Store
	switch cfg.Session.Driver {
	case config.DriverRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("connect to Redis", "error", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(redisClient)
		log.Info("connected to Redis")
	default:
		sessions = session.NewMemoryStore()
		log.Info("using in-memory sessions")
	}

	// Services
	authSvc := service.NewAuthService(store.Users(), sessions, cfg.Session.Secret, cfg.Session.TTL)
	svc := handler.Services{
		Auth:       authSvc,
		Categories: service.NewCategoryService(store.Categories()),
		Products:   service.NewProductService(store.Products()),
		Carts:      service.NewCartService(store.Carts(), store.Products()),
		Favorites:  service.NewFavoriteService(store.Favorites(), store.Products()),
		Orders: service.NewOrderService(store, service.OrderOptions{
			TaxRate:           cfg.Orders.TaxRate,
			StrictTransitions: cfg.Orders.StrictTransitions,
		}),
		Admin: service.NewAdminService(store),
	}

	if cfg.Admin.Enabled() {
		created, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email)
		if err != nil {
			log.Error("bootstrap admin", "error", err)
			os.Exit(1)
		}
		if created {
			log.Info("created admin user", "username", cfg.Admin.Username)
		}
	}

	// Router
	router := handler.NewRouter(svc, handler.RouterConfig{
		Cookie: handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure,
			TTL:    cfg.Session.TTL,
		},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         log,
		Store:          store,
		Sessions:       sessions,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port, "storage", cfg.Storage.Driver, "sessions", cfg.Session.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	cancel()
	log.Info("server stopped")
}

func openPostgres(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := repository.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pool, nil
}
