package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/Maksimka7878/fixnew-importer/internal/browser"
	"github.com/Maksimka7878/fixnew-importer/internal/models"
	"github.com/Maksimka7878/fixnew-importer/internal/parser"
)

// Site describes the scrape target. Everything here is an external,
// undocumented contract of the competitor site.
type Site struct {
	BaseURL          string
	CatalogPath      string
	ChallengeTimeout time.Duration
}

func (s Site) catalogURL() string {
	return s.BaseURL + s.CatalogPath
}

// session is what the orchestrator needs from one browser lifetime. The
// live implementation drives playwright; tests substitute fakes.
type session interface {
	Warm(ctx context.Context) error
	Categories(ctx context.Context) ([]models.LeafCategory, error)
	CategoryProducts(ctx context.Context, cat models.LeafCategory, maxPages int) ([]models.ScrapedProduct, error)
	Close() error
}

type liveSession struct {
	browser *browser.Browser
	site    Site
	logger  *slog.Logger
	metrics *Metrics
}

func newLiveSession(opts *browser.Options, site Site, logger *slog.Logger, metrics *Metrics) (*liveSession, error) {
	b, err := browser.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return &liveSession{
		browser: b,
		site:    site,
		logger:  logger.With("component", "session"),
		metrics: metrics,
	}, nil
}

// Warm loads the site root once so the anti-bot clearance cookie lands on
// the shared context before any catalog navigation.
func (s *liveSession) Warm(ctx context.Context) error {
	page, err := s.browser.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := s.browser.NavigateWithRetry(page, s.site.BaseURL, 2); err != nil {
		return err
	}

	start := time.Now()
	cleared := WaitForChallenge(ctx, page, s.site.ChallengeTimeout)
	s.metrics.ObserveChallengeWait(time.Since(start))
	if !cleared {
		s.logger.Warn("challenge did not clear within timeout, proceeding anyway")
	}
	return nil
}

func (s *liveSession) Close() error {
	return s.browser.Close()
}

// fetchListing opens a fresh tab for one listing page. Tab reuse is
// deliberately avoided: the target's client framework corrupts shared-tab
// state across in-app navigations. The tab always closes with the call.
func (s *liveSession) fetchListing(ctx context.Context, pageURL string) ([]models.ScrapedProduct, error) {
	page, err := s.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := s.browser.NavigateWithRetry(page, pageURL, 2); err != nil {
		return nil, err
	}

	WaitForChallenge(ctx, page, s.site.ChallengeTimeout)

	// Tolerant wait: an empty last page legitimately has no cards.
	if _, err := page.WaitForSelector(parser.CardSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		s.logger.Debug("product cards did not appear", "url", pageURL)
	}

	if _, err := page.Evaluate(autoScrollJS); err != nil {
		s.logger.Debug("auto-scroll failed", "error", err)
	}
	pause(ctx)

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}

	return parser.ParseProductCards(html, s.site.BaseURL)
}

func (s *liveSession) CategoryProducts(ctx context.Context, cat models.LeafCategory, maxPages int) ([]models.ScrapedProduct, error) {
	w := &walker{
		fetch:   s.fetchListing,
		logger:  s.logger.With("category", cat.Name),
		metrics: s.metrics,
	}
	return w.walk(ctx, cat.URL, maxPages)
}

// FetchProductDetail loads a single product page and parses the full
// product: title, price, description, gallery, specs. Returns nil product
// when the page has no recognizable title, which reads as a failed fetch.
func FetchProductDetail(ctx context.Context, b *browser.Browser, site Site, productURL string) (*models.ScrapedProduct, error) {
	page, err := b.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := b.NavigateWithRetry(page, productURL, 2); err != nil {
		return nil, err
	}

	WaitForChallenge(ctx, page, site.ChallengeTimeout)

	if _, err := page.WaitForSelector("h1", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		return nil, nil
	}

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}

	return parser.ParseProductDetail(html, productURL), nil
}

// autoScrollJS forces lazy-loaded cards to render by scrolling in 300 px
// steps, capped at 8000 px total.
const autoScrollJS = `async () => {
	await new Promise(resolve => {
		let total = 0;
		const step = 300;
		const timer = setInterval(() => {
			window.scrollBy(0, step);
			total += step;
			if (total >= 8000 || total >= document.body.scrollHeight) {
				clearInterval(timer);
				resolve();
			}
		}, 150);
	});
}`

// resolveAgainst resolves a possibly relative URL from hydration state.
func resolveAgainst(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
