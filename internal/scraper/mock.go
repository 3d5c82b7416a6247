package scraper

import (
	"fmt"

	"github.com/Maksimka7878/fixnew-importer/internal/models"
)

var fixtureSeed = []struct {
	title    string
	price    float64
	oldPrice float64
	spec     models.Spec
}{
	{"Дрель-шуруповёрт аккумуляторная 18В", 5490, 6990, models.Spec{Name: "Напряжение", Value: "18 В"}},
	{"Перфоратор сетевой 850 Вт", 7290, 0, models.Spec{Name: "Мощность", Value: "850 Вт"}},
	{"Углошлифовальная машина 125 мм", 3190, 3990, models.Spec{Name: "Диаметр диска", Value: "125 мм"}},
	{"Лобзик электрический 650 Вт", 4450, 0, models.Spec{Name: "Мощность", Value: "650 Вт"}},
	{"Набор бит и свёрл, 108 предметов", 1890, 2490, models.Spec{Name: "Количество", Value: "108 шт"}},
	{"Лазерный уровень 2 линии", 2990, 0, models.Spec{Name: "Дальность", Value: "15 м"}},
	{"Сварочный аппарат инверторный 200А", 8990, 10990, models.Spec{Name: "Ток", Value: "200 А"}},
	{"Компрессор поршневой 24 л", 11490, 0, models.Spec{Name: "Ресивер", Value: "24 л"}},
	{"Пила циркулярная 1200 Вт", 6190, 7490, models.Spec{Name: "Глубина пропила", Value: "55 мм"}},
	{"Мультиметр цифровой", 990, 0, models.Spec{Name: "Категория", Value: "CAT III 600V"}},
}

// Fixtures returns the fixed placeholder catalog used when UseMock is set
// and as the never-fail fallback for unrecoverable runs. Source ids follow
// the mock-N pattern so a caller can recognize and discard them.
func Fixtures() []models.ScrapedProduct {
	products := make([]models.ScrapedProduct, 0, len(fixtureSeed))
	for i, seed := range fixtureSeed {
		id := fmt.Sprintf("mock-%d", i+1)
		desc := "Демонстрационный товар. Данные не получены с сайта-источника."
		p := models.ScrapedProduct{
			SourceID:    id,
			SourceURL:   fmt.Sprintf("https://example.invalid/product/%s", id),
			Title:       seed.title,
			Description: &desc,
			Price:       seed.price,
			Images:      []string{fmt.Sprintf("https://example.invalid/images/%s.jpg", id)},
			Specs:       []models.Spec{seed.spec},
			InStock:     true,
		}
		if seed.oldPrice > 0 {
			old := seed.oldPrice
			p.OldPrice = &old
		}
		products = append(products, p)
	}
	return products
}
