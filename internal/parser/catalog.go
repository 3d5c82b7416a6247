package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Maksimka7878/fixnew-importer/internal/models"
)

// Selectors for the target site's listing markup. The markup is an external
// contract that can change without notice; keeping every selector in one
// place is the only mitigation available.
// CardSelector matches one product card in listing markup. Exported so the
// live session can wait on it before parsing.
const CardSelector = "[data-product-id]"

const (
	selProductCard  = CardSelector
	selCardTitle    = `meta[itemprop="name"]`
	selCardLink     = "a.product-card__name"
	selCardImage    = "img.product-card__image"
	selPriceSpecial = ".product-card__price--special"
	selPriceRegular = ".product-card__price--regular"
	selOutOfStock   = ".product-card__out-of-stock"
)

// thumbResize matches the CDN's thumbnail-resize path segment. Rewriting it
// requests a larger render of the same image.
var thumbResize = regexp.MustCompile(`/resize/\d+x\d+/`)

const fullResize = "/resize/1100x1100/"

// UpscaleImageURL rewrites a thumbnail URL to its full-resolution variant.
func UpscaleImageURL(src string) string {
	return thumbResize.ReplaceAllString(src, fullResize)
}

// ParseProductCards extracts product summaries from a static listing-page
// HTML string. Cards missing both an id and a title are skipped: they are
// non-product markup accidentally matching the card selector.
func ParseProductCards(html, baseURL string) ([]models.ScrapedProduct, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(baseURL)
	var products []models.ScrapedProduct

	doc.Find(selProductCard).Each(func(_ int, card *goquery.Selection) {
		id := strings.TrimSpace(card.AttrOr("data-product-id", ""))
		title := strings.TrimSpace(card.Find(selCardTitle).AttrOr("content", ""))
		if title == "" {
			title = strings.TrimSpace(card.Find(selCardLink).Text())
		}
		if id == "" && title == "" {
			return
		}

		p := models.ScrapedProduct{
			SourceID: id,
			Title:    title,
			InStock:  card.Find(selOutOfStock).Length() == 0,
		}

		if href, ok := card.Find(selCardLink).Attr("href"); ok {
			p.SourceURL = absoluteURL(base, href)
		}
		if id == "" {
			p.SourceID = idFromURL(p.SourceURL)
		}

		if src := imageSource(card.Find(selCardImage)); src != "" {
			p.Images = []string{UpscaleImageURL(absoluteURL(base, src))}
		}

		p.Price, p.OldPrice = cardPrices(card)
		products = append(products, p)
	})

	return products, nil
}

// cardPrices applies the fixed precedence rule: a present "special"
// (discounted) price wins and the struck-through regular price becomes the
// old price; otherwise the regular price is current and there is no old
// price.
func cardPrices(card *goquery.Selection) (float64, *float64) {
	regular := card.Find(selPriceRegular).First()
	regularPrice, regularOK := ParsePrice(regular.Text())

	if special, ok := ParsePrice(card.Find(selPriceSpecial).First().Text()); ok {
		if regularOK && isStruck(regular) {
			return special, &regularPrice
		}
		return special, nil
	}
	if regularOK {
		return regularPrice, nil
	}
	return 0, nil
}

func isStruck(s *goquery.Selection) bool {
	return s.Is("s, del, .product-card__price--crossed") ||
		s.ParentsFiltered("s, del").Length() > 0
}

// CountProductCards probes a page for product cards. Used as the fallback
// when the hydration state exposes no subcategories.
func CountProductCards(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	return doc.Find(selProductCard).Length()
}

func imageSource(img *goquery.Selection) string {
	if src := strings.TrimSpace(img.AttrOr("data-src", "")); src != "" {
		return src
	}
	return strings.TrimSpace(img.AttrOr("src", ""))
}

func absoluteURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func idFromURL(u string) string {
	trimmed := strings.TrimRight(u, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
