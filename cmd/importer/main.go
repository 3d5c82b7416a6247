package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Maksimka7878/fixnew-importer/internal/browser"
	"github.com/Maksimka7878/fixnew-importer/internal/config"
	"github.com/Maksimka7878/fixnew-importer/internal/models"
	"github.com/Maksimka7878/fixnew-importer/internal/scraper"
	"github.com/Maksimka7878/fixnew-importer/internal/storage"
)

func main() {
	productURL := flag.String("product", "", "fetch a single product page and print it as JSON")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	site := siteFromConfig(cfg)
	browserOpts := browserOptionsFromConfig(cfg)

	if *productURL != "" {
		fetchOne(ctx, logger, site, browserOpts, *productURL)
		return
	}

	existing, err := storage.LoadProducts(cfg.Scraper.AutoSavePath)
	if err != nil {
		logger.Warn("failed to load checkpoint, starting fresh", "error", err)
	} else if len(existing) > 0 {
		logger.Info("resuming from checkpoint", "count", len(existing))
	}

	runner := scraper.NewRunner(site, browserOpts, scraper.Options{
		CategoriesLimit:     cfg.Scraper.CategoriesLimit,
		ProductsPerCategory: cfg.Scraper.ProductsPerCategory,
		MaxPagesPerCategory: cfg.Scraper.MaxPagesPerCategory,
		UseMock:             cfg.Scraper.UseMock,
		AutoSaveEvery:       cfg.Scraper.AutoSaveEvery,
		AutoSavePath:        cfg.Scraper.AutoSavePath,
		ExistingProducts:    existing,
		OnProgress: func(p models.Progress) {
			logger.Info("progress",
				"phase", p.Phase,
				"category", p.Category,
				"found", p.Found,
				"error", p.Error,
			)
		},
	}, logger, scraper.NewMetrics())

	products := runner.Run(ctx)

	if err := storage.WriteProducts(cfg.Scraper.OutputPath, products); err != nil {
		logger.Error("failed to write output", "error", err)
		os.Exit(1)
	}
	logger.Info("import complete", "count", len(products), "output", cfg.Scraper.OutputPath)
}

func fetchOne(ctx context.Context, logger *slog.Logger, site scraper.Site, opts *browser.Options, url string) {
	b, err := browser.New(opts)
	if err != nil {
		logger.Error("failed to launch browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	product, err := scraper.FetchProductDetail(ctx, b, site, url)
	if err != nil {
		logger.Error("failed to fetch product", "url", url, "error", err)
		os.Exit(1)
	}
	if product == nil {
		logger.Error("page has no recognizable product", "url", url)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(product, "", "  ")
	os.Stdout.Write(append(out, '\n'))
}

func siteFromConfig(cfg *config.Config) scraper.Site {
	return scraper.Site{
		BaseURL:          cfg.Scraper.BaseURL,
		CatalogPath:      cfg.Scraper.CatalogPath,
		ChallengeTimeout: time.Duration(cfg.Scraper.ChallengeTimeoutSeconds) * time.Second,
	}
}

func browserOptionsFromConfig(cfg *config.Config) *browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = cfg.Scraper.Headless
	opts.CookieDomain = cfg.Scraper.CookieDomain
	opts.CookieName = cfg.Scraper.CookieName
	opts.CookieValue = cfg.Scraper.CookieValue
	return opts
}
