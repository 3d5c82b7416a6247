package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maksimka7878/fixnew-importer/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pageOf(ids ...string) []models.ScrapedProduct {
	products := make([]models.ScrapedProduct, 0, len(ids))
	for _, id := range ids {
		products = append(products, models.ScrapedProduct{SourceID: id, Title: "t-" + id, Price: 100})
	}
	return products
}

func TestListingPageURL(t *testing.T) {
	u, err := listingPageURL("https://shop.test/catalog/dreli/", 1)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.test/catalog/dreli/", u, "first page is unparameterized")

	u, err = listingPageURL("https://shop.test/catalog/dreli/", 3)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.test/catalog/dreli/?page=3", u)
}

func TestWalkStopsOnEmptyPage(t *testing.T) {
	pages := map[string][]models.ScrapedProduct{
		"https://shop.test/catalog/dreli/":        pageOf("1", "2"),
		"https://shop.test/catalog/dreli/?page=2": pageOf("3"),
		"https://shop.test/catalog/dreli/?page=3": nil,
	}

	var requested []string
	w := &walker{
		logger: testLogger(),
		fetch: func(ctx context.Context, pageURL string) ([]models.ScrapedProduct, error) {
			requested = append(requested, pageURL)
			return pages[pageURL], nil
		},
	}

	products, err := w.walk(context.Background(), "https://shop.test/catalog/dreli/", 10)
	require.NoError(t, err)
	assert.Len(t, products, 3, "pages before the empty one are aggregated")
	assert.Len(t, requested, 3, "no request is made past the empty page")
}

func TestWalkHonorsPageCap(t *testing.T) {
	calls := 0
	w := &walker{
		logger: testLogger(),
		fetch: func(ctx context.Context, pageURL string) ([]models.ScrapedProduct, error) {
			calls++
			return pageOf(fmt.Sprintf("p%d", calls)), nil
		},
	}

	products, err := w.walk(context.Background(), "https://shop.test/catalog/dreli/", 2)
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 2, calls)
}

func TestWalkSkipsFailedPage(t *testing.T) {
	calls := 0
	w := &walker{
		logger: testLogger(),
		fetch: func(ctx context.Context, pageURL string) ([]models.ScrapedProduct, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("timeout 30000ms exceeded")
			}
			return pageOf(fmt.Sprintf("p%d", calls)), nil
		},
	}

	products, err := w.walk(context.Background(), "https://shop.test/catalog/dreli/", 3)
	require.NoError(t, err)
	assert.Len(t, products, 2, "a failed page is abandoned without aborting the category")
	assert.Equal(t, 3, calls)
}

func TestWalkEscalatesDeadBrowser(t *testing.T) {
	calls := 0
	w := &walker{
		logger: testLogger(),
		fetch: func(ctx context.Context, pageURL string) ([]models.ScrapedProduct, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("Connection closed")
			}
			return pageOf(fmt.Sprintf("p%d", calls)), nil
		},
	}

	products, err := w.walk(context.Background(), "https://shop.test/catalog/dreli/", 5)
	require.Error(t, err)
	assert.True(t, IsBrowserGone(err), "browser death passes through for the orchestrator to handle")
	assert.Len(t, products, 1, "partial results are returned alongside the error")
	assert.Equal(t, 2, calls, "the walk stops immediately on a dead browser")
}
