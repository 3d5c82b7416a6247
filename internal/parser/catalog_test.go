package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingFixture = `
<html><body>
<div class="catalog-grid">
	<div class="product-card" data-product-id="100500">
		<meta itemprop="name" content="Дрель ударная 750 Вт">
		<a class="product-card__name" href="/product/drel-udarnaya-100500/">Дрель ударная</a>
		<img class="product-card__image" src="https://cdn.shop.test/resize/280x280/img/100500.jpg">
		<span class="product-card__price--special">5 990 ₽</span>
		<s><span class="product-card__price--regular">7 490 ₽</span></s>
	</div>
	<div class="product-card" data-product-id="100501">
		<a class="product-card__name" href="/product/bur-sds-100501/">Бур SDS-plus 8x160</a>
		<img class="product-card__image" data-src="/images/resize/280x280/100501.jpg">
		<span class="product-card__price--regular">1 290 ₽</span>
	</div>
	<div class="product-card" data-product-id="100502">
		<a class="product-card__name" href="/product/koronka-100502/">Коронка по бетону</a>
		<span class="product-card__price--special">990 ₽</span>
		<span class="product-card__price--regular">1 190 ₽</span>
		<span class="product-card__out-of-stock">Нет в наличии</span>
	</div>
	<div class="promo-banner" data-product-id=""></div>
</div>
</body></html>`

func TestParseProductCards(t *testing.T) {
	products, err := ParseProductCards(listingFixture, "https://shop.test")
	require.NoError(t, err)
	require.Len(t, products, 3, "banner without id and title must be skipped")

	t.Run("special price with struck regular", func(t *testing.T) {
		p := products[0]
		assert.Equal(t, "100500", p.SourceID)
		assert.Equal(t, "Дрель ударная 750 Вт", p.Title, "structured-data title wins over link text")
		assert.Equal(t, "https://shop.test/product/drel-udarnaya-100500/", p.SourceURL)
		assert.InDelta(t, 5990, p.Price, 0.001)
		require.NotNil(t, p.OldPrice)
		assert.InDelta(t, 7490, *p.OldPrice, 0.001)
		require.Len(t, p.Images, 1)
		assert.Equal(t, "https://cdn.shop.test/resize/1100x1100/img/100500.jpg", p.Images[0])
		assert.True(t, p.InStock)
	})

	t.Run("regular price only", func(t *testing.T) {
		p := products[1]
		assert.Equal(t, "Бур SDS-plus 8x160", p.Title, "falls back to link text")
		assert.InDelta(t, 1290, p.Price, 0.001)
		assert.Nil(t, p.OldPrice)
		require.Len(t, p.Images, 1)
		assert.Equal(t, "https://shop.test/images/resize/1100x1100/100501.jpg", p.Images[0])
	})

	t.Run("special without struck regular has no old price", func(t *testing.T) {
		p := products[2]
		assert.InDelta(t, 990, p.Price, 0.001)
		assert.Nil(t, p.OldPrice, "regular price not struck through is not an old price")
		assert.False(t, p.InStock)
	})
}

func TestParseProductCardsEmptyPage(t *testing.T) {
	products, err := ParseProductCards(`<html><body><div class="catalog-grid"></div></body></html>`, "https://shop.test")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCountProductCards(t *testing.T) {
	assert.Equal(t, 4, CountProductCards(listingFixture))
	assert.Equal(t, 0, CountProductCards("<html><body></body></html>"))
}

func TestUpscaleImageURL(t *testing.T) {
	assert.Equal(t,
		"https://cdn.shop.test/resize/1100x1100/img/1.jpg",
		UpscaleImageURL("https://cdn.shop.test/resize/120x120/img/1.jpg"))
	assert.Equal(t,
		"https://cdn.shop.test/img/1.jpg",
		UpscaleImageURL("https://cdn.shop.test/img/1.jpg"),
		"URLs without a resize segment pass through")
}
