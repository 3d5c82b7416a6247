package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Maksimka7878/fixnew-importer/internal/models"
)

const (
	selDetailTitle        = "h1"
	selDetailPriceSpecial = ".product-detail__price--special"
	selDetailPriceRegular = ".product-detail__price--regular"
	selDetailGallery      = ".product-gallery img"
	selDetailSpecRow      = ".product-specs__row"
	selDetailSpecName     = ".product-specs__name"
	selDetailSpecValue    = ".product-specs__value"
	selDetailBuy          = ".product-detail__buy"
)

// Description blocks vary between product templates; the first selector
// that yields text wins.
var detailDescriptionSelectors = []string{
	".product-detail__description",
	`[itemprop="description"]`,
	".product-about__text",
}

// ParseProductDetail extracts a full product from a detail-page HTML
// string. Returns nil when no title is present, which is treated as a
// failed fetch. A missing description degrades to nil rather than failing
// the whole parse.
func ParseProductDetail(html, sourceURL string) *models.ScrapedProduct {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	title := strings.TrimSpace(doc.Find(selDetailTitle).First().Text())
	if title == "" {
		return nil
	}

	p := &models.ScrapedProduct{
		SourceID:  detailSourceID(doc, sourceURL),
		SourceURL: sourceURL,
		Title:     title,
		InStock:   doc.Find(selDetailBuy).Length() > 0,
	}

	for _, sel := range detailDescriptionSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			p.Description = &text
			break
		}
	}

	p.Price, p.OldPrice = detailPrices(doc)
	p.Images = galleryImages(doc, sourceURL)
	p.Specs = specRows(doc)

	return p
}

func detailSourceID(doc *goquery.Document, sourceURL string) string {
	if id := strings.TrimSpace(doc.Find(selProductCard).First().AttrOr("data-product-id", "")); id != "" {
		return id
	}
	return idFromURL(sourceURL)
}

// detailPrices applies the same precedence rule as the listing parser.
func detailPrices(doc *goquery.Document) (float64, *float64) {
	regular := doc.Find(selDetailPriceRegular).First()
	regularPrice, regularOK := ParsePrice(regular.Text())

	if special, ok := ParsePrice(doc.Find(selDetailPriceSpecial).First().Text()); ok {
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

// galleryImages collects deduplicated, upscaled gallery URLs, skipping
// inline-data and placeholder images.
func galleryImages(doc *goquery.Document, sourceURL string) []string {
	base, _ := url.Parse(sourceURL)
	seen := make(map[string]bool)
	var images []string

	doc.Find(selDetailGallery).Each(func(_ int, img *goquery.Selection) {
		src := imageSource(img)
		if src == "" || strings.HasPrefix(src, "data:") || strings.Contains(src, "placeholder") {
			return
		}
		full := UpscaleImageURL(absoluteURL(base, src))
		if seen[full] {
			return
		}
		seen[full] = true
		images = append(images, full)
	})

	return images
}

// specRows reads table-like spec rows, falling back to definition lists.
// Rows where the name and value text coincide are layout artifacts and are
// dropped.
func specRows(doc *goquery.Document) []models.Spec {
	var specs []models.Spec

	appendSpec := func(name, value string) {
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" || name == value {
			return
		}
		specs = append(specs, models.Spec{Name: name, Value: value})
	}

	doc.Find(selDetailSpecRow).Each(func(_ int, row *goquery.Selection) {
		appendSpec(row.Find(selDetailSpecName).Text(), row.Find(selDetailSpecValue).Text())
	})

	if len(specs) == 0 {
		doc.Find(".product-specs dt").Each(func(i int, dt *goquery.Selection) {
			dd := dt.NextFiltered("dd")
			appendSpec(dt.Text(), dd.Text())
		})
	}

	return specs
}
