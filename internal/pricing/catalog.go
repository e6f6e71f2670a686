package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CatalogEntry представляет запись справочника базовых цен
type CatalogEntry struct {
	Brand     string
	Model     string
	BasePrice decimal.Decimal
}

// StaticPriceTable реализует PriceTable на статическом справочнике в памяти
// Каталог принадлежит внешнему провайдеру; здесь он read-only снимок
type StaticPriceTable struct {
	prices map[string]decimal.Decimal // ключ = brand|model (в нижнем регистре)
	brands []string
}

// NewStaticPriceTable создаёт справочник из списка записей
func NewStaticPriceTable(entries []CatalogEntry) *StaticPriceTable {
	prices := make(map[string]decimal.Decimal, len(entries))
	seen := make(map[string]struct{})
	brands := make([]string, 0)

	for _, e := range entries {
		prices[catalogKey(e.Brand, e.Model)] = e.BasePrice
		if _, ok := seen[e.Brand]; !ok {
			seen[e.Brand] = struct{}{}
			brands = append(brands, e.Brand)
		}
	}
	sort.Strings(brands)

	return &StaticPriceTable{
		prices: prices,
		brands: brands,
	}
}

// BasePrice возвращает базовую цену модели
// Поиск нечувствителен к регистру бренда и модели
func (t *StaticPriceTable) BasePrice(brand, model string) (decimal.Decimal, bool) {
	price, ok := t.prices[catalogKey(brand, model)]
	return price, ok
}

// ListBrands возвращает отсортированный список известных брендов
func (t *StaticPriceTable) ListBrands() []string {
	out := make([]string, len(t.brands))
	copy(out, t.brands)
	return out
}

func catalogKey(brand, model string) string {
	return strings.ToLower(strings.TrimSpace(brand)) + "|" + strings.ToLower(strings.TrimSpace(model))
}

// DefaultCatalog возвращает снимок каталога, который сервис использует
// пока внешний провайдер недоступен как отдельная зависимость
func DefaultCatalog() *StaticPriceTable {
	return NewStaticPriceTable([]CatalogEntry{
		{Brand: "Toyota", Model: "Corolla", BasePrice: decimal.NewFromInt(25000)},
		{Brand: "Toyota", Model: "Hilux", BasePrice: decimal.NewFromInt(42000)},
		{Brand: "Honda", Model: "Civic", BasePrice: decimal.NewFromInt(27000)},
		{Brand: "Honda", Model: "CR-V", BasePrice: decimal.NewFromInt(35000)},
		{Brand: "Hyundai", Model: "Tucson", BasePrice: decimal.NewFromInt(31000)},
		{Brand: "Hyundai", Model: "Accent", BasePrice: decimal.NewFromInt(20000)},
		{Brand: "Nissan", Model: "Frontier", BasePrice: decimal.NewFromInt(38000)},
		{Brand: "Nissan", Model: "Versa", BasePrice: decimal.NewFromInt(19000)},
		{Brand: "Kia", Model: "Sportage", BasePrice: decimal.NewFromInt(30000)},
		{Brand: "Kia", Model: "Rio", BasePrice: decimal.NewFromInt(18000)},
	})
}
