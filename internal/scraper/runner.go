package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Maksimka7878/fixnew-importer/internal/browser"
	"github.com/Maksimka7878/fixnew-importer/internal/models"
	"github.com/Maksimka7878/fixnew-importer/internal/storage"
)

// Options configures one import run. Zero values fall back to the
// defaults below.
type Options struct {
	CategoriesLimit     int
	ProductsPerCategory int
	MaxPagesPerCategory int

	// UseMock short-circuits the whole pipeline and returns fixture data,
	// for development without network access.
	UseMock bool

	OnProgress func(models.Progress)

	// AutoSaveEvery > 0 checkpoints the full accumulated array to
	// AutoSavePath whenever the running total crosses a multiple of it.
	AutoSaveEvery int
	AutoSavePath  string

	// ExistingProducts seeds the seen-id set, typically from a previous
	// run's checkpoint, so re-runs are incremental.
	ExistingProducts []models.ScrapedProduct
}

const (
	defaultCategoriesLimit     = 3
	defaultProductsPerCategory = 20
	defaultMaxPagesPerCategory = 5

	mockDelay = 800 * time.Millisecond
)

// Runner orchestrates a full import: challenge gate, category discovery,
// pagination, dedup, checkpointing, browser-crash recovery.
type Runner struct {
	opts    Options
	site    Site
	logger  *slog.Logger
	metrics *Metrics

	// newSession is a seam for tests; the default launches a real browser.
	newSession func(ctx context.Context) (session, error)
}

func NewRunner(site Site, browserOpts *browser.Options, opts Options, logger *slog.Logger, metrics *Metrics) *Runner {
	if opts.CategoriesLimit <= 0 {
		opts.CategoriesLimit = defaultCategoriesLimit
	}
	if opts.ProductsPerCategory <= 0 {
		opts.ProductsPerCategory = defaultProductsPerCategory
	}
	if opts.MaxPagesPerCategory <= 0 {
		opts.MaxPagesPerCategory = defaultMaxPagesPerCategory
	}
	if site.ChallengeTimeout <= 0 {
		site.ChallengeTimeout = 30 * time.Second
	}

	r := &Runner{
		opts:    opts,
		site:    site,
		logger:  logger.With("component", "runner"),
		metrics: metrics,
	}
	r.newSession = func(ctx context.Context) (session, error) {
		// Returning the concrete pair directly would wrap a nil *liveSession
		// in a non-nil session interface on launch failure.
		s, err := newLiveSession(browserOpts, r.site, logger, metrics)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return r
}

// Run executes the import and never fails: any unrecoverable error is
// reported through the progress callback and masked by returning the
// fixture list, so a caller always gets a usable array. Cancellation is
// not failure: an interrupted run returns whatever real products it
// collected instead of fixture data.
func (r *Runner) Run(ctx context.Context) []models.ScrapedProduct {
	if r.opts.UseMock {
		r.progress(models.Progress{Phase: models.PhaseStarting, Message: "mock mode"})
		select {
		case <-ctx.Done():
		case <-time.After(mockDelay):
		}
		fixtures := Fixtures()
		r.progress(models.Progress{Phase: models.PhaseComplete, Found: len(fixtures)})
		return fixtures
	}

	products, err := r.run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			r.logger.Warn("run cancelled, keeping partial results", "count", len(products), "error", err)
			r.progress(models.Progress{Phase: models.PhaseError, Found: len(products), Error: err.Error()})
			return products
		}
		r.metrics.IncError("run")
		r.logger.Error("run failed, falling back to fixture data", "error", err)
		r.progress(models.Progress{Phase: models.PhaseFallbackToMock, Error: err.Error()})
		return Fixtures()
	}
	return products
}

func (r *Runner) run(ctx context.Context) ([]models.ScrapedProduct, error) {
	r.progress(models.Progress{Phase: models.PhaseStarting})

	sess, err := r.newSession(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if sess != nil {
			sess.Close()
		}
	}()

	r.progress(models.Progress{Phase: models.PhaseCloudflare})
	if err := sess.Warm(ctx); err != nil {
		return nil, err
	}

	r.progress(models.Progress{Phase: models.PhaseCategories})
	categories, err := sess.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, errors.New("no categories discovered")
	}
	if len(categories) > r.opts.CategoriesLimit {
		categories = categories[:r.opts.CategoriesLimit]
	}
	r.metrics.SetCategories(len(categories))
	r.logger.Info("categories selected", "count", len(categories))

	seen := make(map[string]bool, len(r.opts.ExistingProducts))
	for _, p := range r.opts.ExistingProducts {
		seen[p.SourceID] = true
	}

	var results []models.ScrapedProduct
	for _, cat := range categories {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		r.progress(models.Progress{Phase: models.PhaseExtracting, Category: cat.Name})

		found, err := sess.CategoryProducts(ctx, cat, r.opts.MaxPagesPerCategory)
		if err != nil && IsBrowserGone(err) {
			// The browser process died. In-page state cannot be trusted, so
			// relaunch from scratch, re-warm, and retry this category once.
			r.metrics.IncRelaunch()
			r.logger.Warn("browser died, relaunching", "category", cat.Name, "error", err)

			sess.Close()
			sess = nil
			next, nerr := r.newSession(ctx)
			if nerr != nil {
				return nil, nerr
			}
			sess = next
			if err = sess.Warm(ctx); err != nil {
				return nil, err
			}
			found, err = sess.CategoryProducts(ctx, cat, r.opts.MaxPagesPerCategory)
		}
		if err != nil {
			r.metrics.IncError("category")
			r.logger.Error("category failed, skipping", "category", cat.Name, "error", err)
			continue
		}

		r.progress(models.Progress{Phase: models.PhaseParsing, Category: cat.Name, Found: len(found)})

		before := len(results)
		added := 0
		for _, p := range found {
			if p.SourceID == "" || seen[p.SourceID] {
				continue
			}
			if added >= r.opts.ProductsPerCategory {
				break
			}
			seen[p.SourceID] = true
			results = append(results, p)
			added++
		}
		r.metrics.AddProducts(added)
		r.logger.Info("category done", "category", cat.Name, "added", added, "total", len(results))

		r.autosave(before, results)
	}

	results = dedupeBySourceID(results)
	r.progress(models.Progress{Phase: models.PhaseComplete, Found: len(results)})
	return results, nil
}

// autosave writes a full-array checkpoint when the running total crossed a
// multiple of AutoSaveEvery during the last category.
func (r *Runner) autosave(before int, results []models.ScrapedProduct) {
	n := r.opts.AutoSaveEvery
	if n <= 0 || r.opts.AutoSavePath == "" {
		return
	}
	if len(results)/n == before/n {
		return
	}

	if err := storage.WriteProducts(r.opts.AutoSavePath, results); err != nil {
		r.logger.Error("checkpoint write failed", "path", r.opts.AutoSavePath, "error", err)
		return
	}
	r.metrics.IncCheckpoint()
	r.logger.Info("checkpoint written", "path", r.opts.AutoSavePath, "count", len(results))
}

// dedupeBySourceID is a defensive final pass; the seen-set makes it a
// no-op in the normal flow.
func dedupeBySourceID(products []models.ScrapedProduct) []models.ScrapedProduct {
	seen := make(map[string]bool, len(products))
	out := products[:0]
	for _, p := range products {
		if seen[p.SourceID] {
			continue
		}
		seen[p.SourceID] = true
		out = append(out, p)
	}
	return out
}

func (r *Runner) progress(p models.Progress) {
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(p)
	}
}
