package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Maksimka7878/fixnew-importer/internal/models"
)

const catalogPrefix = "/catalog/"

// ParseCategoryLinks extracts the top-level category list from the catalog
// root page. Categories are keyed (and deduplicated) by the first path
// segment after /catalog/; product counts are unknown at this level.
func ParseCategoryLinks(html, baseURL string) ([]models.LeafCategory, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(baseURL)
	seen := make(map[string]bool)
	var categories []models.LeafCategory

	doc.Find(`a[href*="` + catalogPrefix + `"]`).Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		slug := categorySlug(href)
		if slug == "" || seen[slug] {
			return
		}

		name := strings.TrimSpace(a.Text())
		if name == "" {
			name = slug
		}

		seen[slug] = true
		categories = append(categories, models.LeafCategory{
			Name: name,
			URL:  absoluteURL(base, catalogPrefix+slug+"/"),
		})
	})

	return categories, nil
}

// categorySlug returns the first path segment after /catalog/, or "" when
// the href does not point at a category listing.
func categorySlug(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	path := u.Path
	i := strings.Index(path, catalogPrefix)
	if i < 0 {
		return ""
	}
	rest := path[i+len(catalogPrefix):]
	if j := strings.Index(rest, "/"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
