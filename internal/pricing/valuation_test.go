package pricing

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testTable() *StaticPriceTable {
	return NewStaticPriceTable([]CatalogEntry{
		{Brand: "Toyota", Model: "Corolla", BasePrice: decimal.NewFromInt(20000)},
		{Brand: "Honda", Model: "Civic", BasePrice: decimal.NewFromInt(27000)},
	})
}

func TestCalculateValue(t *testing.T) {
	const currentYear = 2026
	table := testTable()

	t.Run("depreciates five percent per year", func(t *testing.T) {
		// Возраст 4 года: 20000 * (1 - 0.20) = 16000
		value := CalculateValue(table, "Toyota", "Corolla", "2022", currentYear)
		require.True(t, decimal.NewFromInt(16000).Equal(value), "got %s", value)
	})

	t.Run("current year has no depreciation", func(t *testing.T) {
		value := CalculateValue(table, "Toyota", "Corolla", "2026", currentYear)
		require.True(t, decimal.NewFromInt(20000).Equal(value), "got %s", value)
	})

	t.Run("floor clamps old vehicles at twenty percent of base", func(t *testing.T) {
		// Возраст 25 лет: дробь износа 125% > 100%, без пола стоимость была бы
		// отрицательной; результат - ровно пол 20000 * 0.20 = 4000
		value := CalculateValue(table, "Toyota", "Corolla", strconv.Itoa(currentYear-25), currentYear)
		require.True(t, decimal.NewFromInt(4000).Equal(value), "got %s", value)
		require.False(t, value.IsNegative())
	})

	t.Run("exactly at floor boundary", func(t *testing.T) {
		// Возраст 16 лет: 20000 * (1 - 0.80) = 4000 == пол
		value := CalculateValue(table, "Toyota", "Corolla", strconv.Itoa(currentYear-16), currentYear)
		require.True(t, decimal.NewFromInt(4000).Equal(value), "got %s", value)
	})

	t.Run("future model year returns base price unmodified", func(t *testing.T) {
		value := CalculateValue(table, "Honda", "Civic", strconv.Itoa(currentYear+1), currentYear)
		require.True(t, decimal.NewFromInt(27000).Equal(value), "got %s", value)
	})

	t.Run("blank model returns zero", func(t *testing.T) {
		value := CalculateValue(table, "Toyota", "   ", "2022", currentYear)
		require.True(t, value.IsZero())
	})

	t.Run("non-integer year returns zero", func(t *testing.T) {
		for _, year := range []string{"", "abc", "20-22", "2022.5"} {
			value := CalculateValue(table, "Toyota", "Corolla", year, currentYear)
			require.True(t, value.IsZero(), "year %q", year)
		}
	})

	t.Run("unknown brand or model returns zero", func(t *testing.T) {
		value := CalculateValue(table, "Lada", "Niva", "2022", currentYear)
		require.True(t, value.IsZero())
	})

	t.Run("lookup is case insensitive", func(t *testing.T) {
		value := CalculateValue(table, "toyota", "COROLLA", "2026", currentYear)
		require.True(t, decimal.NewFromInt(20000).Equal(value))
	})
}

func TestStaticPriceTable_ListBrands(t *testing.T) {
	brands := testTable().ListBrands()
	require.Equal(t, []string{"Honda", "Toyota"}, brands)
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	require.NotEmpty(t, catalog.ListBrands())
	price, ok := catalog.BasePrice("Toyota", "Corolla")
	require.True(t, ok)
	require.True(t, price.IsPositive())
}
