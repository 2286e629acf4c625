package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/task-service/internal/cache"
	"github.com/taskhive/task-service/internal/config"
	"github.com/taskhive/task-service/internal/handler"
	"github.com/taskhive/task-service/internal/notify"
	"github.com/taskhive/task-service/internal/repository"
	"github.com/taskhive/task-service/internal/service"
	"github.com/taskhive/task-service/internal/token"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	godotenv.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	repo := repository.NewRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repo.Migrate(ctx); err != nil {
		cancel()
		logger.Fatalf("Failed to migrate schema: %v", err)
	}
	cancel()

	// Initialize cache backend
	var taskCache cache.Cache
	switch cfg.CacheBackend {
	case "memory":
		mem := cache.NewMemory()
		defer mem.Close()
		taskCache = mem
	default:
		rdb := cache.NewRedis(cfg.RedisAddr)
		defer rdb.Close()
		taskCache = rdb
	}

	// Initialize layers
	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	var notifier service.Notifier
	if cfg.SMTPHost != "" {
		notifier = notify.NewSender(cfg, logger)
	}
	svc := service.NewService(repo, taskCache, tokens, notifier, logger, cfg.CacheTTL)
	h := handler.NewHandler(svc, logger)

	// Setup router
	r := handler.NewRouter(h, tokens)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
