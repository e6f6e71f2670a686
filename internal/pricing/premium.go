package pricing

import (
	"github.com/shopspring/decimal"
)

// CoverageType представляет тип покрытия полиса
type CoverageType string

const (
	// CoverageFull - полное покрытие
	CoverageFull CoverageType = "FULL"
	// CoverageThirdParty - покрытие ответственности перед третьими лицами
	CoverageThirdParty CoverageType = "THIRD_PARTY"
	// CoverageLiabilityOnly - только гражданская ответственность
	CoverageLiabilityOnly CoverageType = "LIABILITY_ONLY"
)

// Годовые базовые ставки по типу покрытия
var annualRates = map[CoverageType]decimal.Decimal{
	CoverageFull:          decimal.RequireFromString("0.025"),
	CoverageThirdParty:    decimal.RequireFromString("0.015"),
	CoverageLiabilityOnly: decimal.RequireFromString("0.01"),
}

var (
	twelve  = decimal.NewFromInt(12)
	taxRate = decimal.RequireFromString("0.18")
)

// PremiumBreakdown представляет месячную разбивку премии
// Value object, не персистентен; все значения неотрицательны
type PremiumBreakdown struct {
	NetPremium decimal.Decimal
	Taxes      decimal.Decimal
	Total      decimal.Decimal
}

// CalculatePremium рассчитывает месячную премию по рыночной стоимости и типу покрытия
// Неизвестный тип покрытия трактуется как FULL - разрешительный fallback, не ошибка.
// Округление здесь не применяется: презентационный слой округляет для отображения
func CalculatePremium(marketValue decimal.Decimal, coverage CoverageType) PremiumBreakdown {
	if marketValue.IsNegative() {
		marketValue = decimal.Zero
	}

	rate, ok := annualRates[coverage]
	if !ok {
		rate = annualRates[CoverageFull]
	}

	annualNet := marketValue.Mul(rate)
	monthlyNet := annualNet.Div(twelve)
	taxes := monthlyNet.Mul(taxRate)

	return PremiumBreakdown{
		NetPremium: monthlyNet,
		Taxes:      taxes,
		Total:      monthlyNet.Add(taxes),
	}
}
