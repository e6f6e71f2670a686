package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceTable определяет интерфейс каталога базовых цен (внешний коллаборатор)
// Справочник read-only: (brand, model) -> базовая цена
type PriceTable interface {
	// BasePrice возвращает базовую цену модели и признак её наличия в каталоге
	BasePrice(brand, model string) (decimal.Decimal, bool)

	// ListBrands возвращает список известных брендов
	ListBrands() []string
}

var (
	depreciationPerYear = decimal.RequireFromString("0.05")
	residualFloorRate   = decimal.RequireFromString("0.20")
)

// CalculateValue рассчитывает текущую рыночную стоимость автомобиля с учётом износа
// Возвращает 0, если year не целое число, model пустая или пары (brand, model) нет в каталоге.
// Год выпуска в будущем (ещё не выпущенная модель) - базовая цена без износа.
// Иначе износ age*5% вычитается БЕЗ верхней границы, и только затем результат
// прижимается к полу 20% от базовой цены: для старых машин дробь износа может
// превысить 100%, и именно пол спасает от отрицательной стоимости.
// Двухшаговость (вычитание без капа, затем пол) сохраняется намеренно
func CalculateValue(table PriceTable, brand, model, year string, currentYear int) decimal.Decimal {
	if strings.TrimSpace(model) == "" {
		return decimal.Zero
	}

	modelYear, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return decimal.Zero
	}

	basePrice, ok := table.BasePrice(brand, model)
	if !ok {
		return decimal.Zero
	}

	if modelYear > currentYear {
		return basePrice
	}

	age := currentYear - modelYear
	fraction := depreciationPerYear.Mul(decimal.NewFromInt(int64(age)))
	discounted := basePrice.Mul(decimal.NewFromInt(1).Sub(fraction))
	floor := basePrice.Mul(residualFloorRate)

	if discounted.LessThan(floor) {
		return floor
	}
	return discounted
}
