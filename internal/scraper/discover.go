package scraper

import (
	"context"
	"fmt"
	"sort"

	"github.com/playwright-community/playwright-go"

	"github.com/Maksimka7878/fixnew-importer/internal/models"
	"github.com/Maksimka7878/fixnew-importer/internal/parser"
)

// hydrationSubcategoriesJS walks the server-rendering framework's global
// state for the current category's subcategory map. The shape is an
// unstable external contract: every access is capability-checked and a
// missing shape yields null, which triggers the card-count fallback.
const hydrationSubcategoriesJS = `() => {
	const state = window.__NUXT__ && window.__NUXT__.state;
	const current = state && state.categoryData && state.categoryData.currentCategory;
	if (!current || !current.items) return null;
	const out = [];
	for (const key of Object.keys(current.items)) {
		const item = current.items[key];
		if (item && item.productCount > 0) {
			out.push({
				name: String(item.name || key),
				url: String(item.url || ''),
				count: Number(item.productCount)
			});
		}
	}
	return out;
}`

// Categories discovers leaf categories: catalog root anchors give the
// top-level list, then each top-level page either exposes subcategories
// through hydration state (those are the leaves, with authoritative
// product counts) or is probed for product cards and treated as a leaf
// itself. Leaves come back sorted by product count descending so a
// category-limited run captures the largest categories first.
func (s *liveSession) Categories(ctx context.Context) ([]models.LeafCategory, error) {
	page, err := s.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := s.browser.NavigateWithRetry(page, s.site.catalogURL(), 2); err != nil {
		return nil, fmt.Errorf("failed to open catalog root: %w", err)
	}
	WaitForChallenge(ctx, page, s.site.ChallengeTimeout)

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog root: %w", err)
	}

	topLevel, err := parser.ParseCategoryLinks(html, s.site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category links: %w", err)
	}
	s.logger.Info("found top-level categories", "count", len(topLevel))

	var leaves []models.LeafCategory
	for _, top := range topLevel {
		if err := ctx.Err(); err != nil {
			return leaves, err
		}

		found, err := s.leavesFor(ctx, page, top)
		if err != nil {
			if IsBrowserGone(err) {
				return leaves, err
			}
			s.metrics.IncError("category")
			s.logger.Error("failed to process category, skipping", "category", top.Name, "error", err)
			continue
		}
		leaves = append(leaves, found...)
		pause(ctx)
	}

	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].ProductCount > leaves[j].ProductCount
	})

	return leaves, nil
}

func (s *liveSession) leavesFor(ctx context.Context, page playwright.Page, top models.LeafCategory) ([]models.LeafCategory, error) {
	if err := s.browser.NavigateWithRetry(page, top.URL, 2); err != nil {
		return nil, err
	}
	WaitForChallenge(ctx, page, s.site.ChallengeTimeout)

	if subs := s.hydrationSubcategories(page); len(subs) > 0 {
		s.logger.Info("subcategories from hydration state", "category", top.Name, "count", len(subs))
		return subs, nil
	}

	// No subcategories: probe the page itself for product cards. A nonzero
	// count means the top-level category is the leaf.
	html, err := page.Content()
	if err != nil {
		return nil, err
	}
	if count := parser.CountProductCards(html); count > 0 {
		top.ProductCount = count
		return []models.LeafCategory{top}, nil
	}

	s.logger.Info("category has neither subcategories nor products", "category", top.Name)
	return nil, nil
}

// hydrationSubcategories evaluates the hydration global and converts the
// result the way the driver hands it back: untyped maps and float64s.
func (s *liveSession) hydrationSubcategories(page playwright.Page) []models.LeafCategory {
	result, err := page.Evaluate(hydrationSubcategoriesJS)
	if err != nil || result == nil {
		return nil
	}

	items, ok := result.([]interface{})
	if !ok {
		return nil
	}

	var subs []models.LeafCategory
	for _, raw := range items {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		name, _ := entry["name"].(string)
		href, _ := entry["url"].(string)
		count, _ := entry["count"].(float64)
		if href == "" || count <= 0 {
			continue
		}

		subs = append(subs, models.LeafCategory{
			Name:         name,
			URL:          resolveAgainst(s.site.BaseURL, href),
			ProductCount: int(count),
		})
	}
	return subs
}
