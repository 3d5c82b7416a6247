package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogRootFixture = `
<html><body>
<nav class="catalog-menu">
	<a href="/catalog/elektroinstrument/">Электроинструмент</a>
	<a href="/catalog/elektroinstrument/dreli/">Дрели</a>
	<a href="https://shop.test/catalog/sadovaya-tehnika/">Садовая техника</a>
	<a href="/catalog/krepezh/">Крепёж</a>
	<a href="/about/">О компании</a>
	<a href="/catalog/">Каталог</a>
</nav>
</body></html>`

func TestParseCategoryLinks(t *testing.T) {
	categories, err := ParseCategoryLinks(catalogRootFixture, "https://shop.test")
	require.NoError(t, err)
	require.Len(t, categories, 3, "deduplicated by first path segment; non-catalog links skipped")

	assert.Equal(t, "Электроинструмент", categories[0].Name)
	assert.Equal(t, "https://shop.test/catalog/elektroinstrument/", categories[0].URL)

	assert.Equal(t, "Садовая техника", categories[1].Name)
	assert.Equal(t, "https://shop.test/catalog/sadovaya-tehnika/", categories[1].URL)

	assert.Equal(t, "Крепёж", categories[2].Name)
}

func TestParseCategoryLinksNone(t *testing.T) {
	categories, err := ParseCategoryLinks(`<html><body><a href="/about/">About</a></body></html>`, "https://shop.test")
	require.NoError(t, err)
	assert.Empty(t, categories)
}
