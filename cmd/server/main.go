package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/library-engine/internal/cache"
	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/handler"
	"github.com/segyhp/library-engine/internal/repository"
	"github.com/segyhp/library-engine/internal/service"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis only backs the dashboard cache; the API runs without it
	redisClient := initRedis(cfg, logger)
	var dashboardCache cache.Cache
	if redisClient != nil {
		defer redisClient.Close()
		dashboardCache = cache.NewRedisCache(redisClient)
	}

	store := repository.NewStore(db)
	repos := store.Repositories

	catalog := service.NewCatalogService(repos, store, logger)
	membership := service.NewMembershipService(repos, cfg, logger)
	circulation := service.NewCirculationService(repos, store, cfg, logger)
	reservations := service.NewReservationService(repos, store, logger)
	passes := service.NewPassService(repos, cfg, logger)
	users := service.NewUserService(repos, logger)
	dashboard := service.NewDashboardService(repos, dashboardCache, cfg.GetCacheTTL(), logger)

	router := handler.NewRouter(handler.Handlers{
		Health:       handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout()),
		Books:        handler.NewBookHandler(catalog, reservations),
		Customers:    handler.NewCustomerHandler(membership, reservations),
		Loans:        handler.NewLoanHandler(circulation),
		Reservations: handler.NewReservationHandler(reservations),
		Passes:       handler.NewPassHandler(passes),
		Users:        handler.NewUserHandler(users),
		Dashboard:    handler.NewDashboardHandler(dashboard),
	}, logger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	return db, nil
}

// initRedis returns nil when redis is misconfigured or unreachable
func initRedis(cfg *config.Config, logger *slog.Logger) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
	}
	if cfg.Redis.URL != "" {
		parsed, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Warn("invalid REDIS_URL, dashboard cache disabled", "error", err)
			return nil
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetHealthTimeout())
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, dashboard cache disabled", "addr", opts.Addr, "error", err)
		client.Close()
		return nil
	}
	return client
}
