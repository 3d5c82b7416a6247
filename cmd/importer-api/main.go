package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Maksimka7878/fixnew-importer/internal/api"
	"github.com/Maksimka7878/fixnew-importer/internal/browser"
	"github.com/Maksimka7878/fixnew-importer/internal/config"
	"github.com/Maksimka7878/fixnew-importer/internal/database"
	"github.com/Maksimka7878/fixnew-importer/internal/jobs"
	"github.com/Maksimka7878/fixnew-importer/internal/kvstore"
	"github.com/Maksimka7878/fixnew-importer/internal/scraper"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	metrics := scraper.NewMetrics()
	store := kvstore.New(redisClient)
	repo := database.NewProductRepo(db, logger)

	site := scraper.Site{
		BaseURL:          cfg.Scraper.BaseURL,
		CatalogPath:      cfg.Scraper.CatalogPath,
		ChallengeTimeout: time.Duration(cfg.Scraper.ChallengeTimeoutSeconds) * time.Second,
	}
	browserOpts := browser.DefaultOptions()
	browserOpts.Headless = cfg.Scraper.Headless
	browserOpts.CookieDomain = cfg.Scraper.CookieDomain
	browserOpts.CookieName = cfg.Scraper.CookieName
	browserOpts.CookieValue = cfg.Scraper.CookieValue

	newRunner := func(opts scraper.Options) jobs.Runner {
		if opts.CategoriesLimit <= 0 {
			opts.CategoriesLimit = cfg.Scraper.CategoriesLimit
		}
		if opts.ProductsPerCategory <= 0 {
			opts.ProductsPerCategory = cfg.Scraper.ProductsPerCategory
		}
		if opts.MaxPagesPerCategory <= 0 {
			opts.MaxPagesPerCategory = cfg.Scraper.MaxPagesPerCategory
		}
		opts.AutoSaveEvery = cfg.Scraper.AutoSaveEvery
		opts.AutoSavePath = cfg.Scraper.AutoSavePath
		return scraper.NewRunner(site, browserOpts, opts, logger, metrics)
	}

	manager := jobs.NewManager(newRunner, store, repo, cfg.Scraper.OutputPath, logger)
	handlers := api.NewHandlers(manager, logger)
	router := api.NewRouter(handlers, metrics.Registry)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
