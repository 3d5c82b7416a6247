package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/Maksimka7878/fixnew-importer/internal/models"
)

// walker drives pagination for one category. The per-page fetch is a seam
// so the termination rules can be exercised without a live browser.
type walker struct {
	fetch   func(ctx context.Context, pageURL string) ([]models.ScrapedProduct, error)
	logger  *slog.Logger
	metrics *Metrics
}

// walk visits pages 1..maxPages and aggregates parsed products. An empty
// page means the end of pagination; no further page is requested. A failed
// page is abandoned and the walk continues, except when the browser
// process itself died, which is escalated to the caller along with
// whatever was collected so far.
func (w *walker) walk(ctx context.Context, categoryURL string, maxPages int) ([]models.ScrapedProduct, error) {
	var all []models.ScrapedProduct

	for n := 1; n <= maxPages; n++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		pageURL, err := listingPageURL(categoryURL, n)
		if err != nil {
			return all, err
		}

		products, err := w.fetch(ctx, pageURL)
		if err != nil {
			if IsBrowserGone(err) {
				return all, fmt.Errorf("page %d: %w", n, err)
			}
			w.metrics.IncError("page")
			w.logger.Error("page fetch failed, skipping", "url", pageURL, "page", n, "error", err)
			continue
		}

		w.metrics.IncPage()
		if len(products) == 0 {
			w.logger.Info("empty page, stopping pagination", "page", n)
			break
		}

		all = append(all, products...)
	}

	return all, nil
}

// listingPageURL leaves page 1 unparameterized; subsequent pages get
// ?page=N.
func listingPageURL(categoryURL string, page int) (string, error) {
	if page <= 1 {
		return categoryURL, nil
	}

	u, err := url.Parse(categoryURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse category URL: %w", err)
	}

	q := u.Query()
	q.Set("page", fmt.Sprintf("%d", page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
