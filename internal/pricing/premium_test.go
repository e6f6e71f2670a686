package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// tolerance для сравнения значений после decimal-деления
var tolerance = decimal.RequireFromString("0.01")

func requireWithinTolerance(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	diff := actual.Sub(decimal.RequireFromString(expected)).Abs()
	require.True(t, diff.LessThanOrEqual(tolerance),
		"expected %s within %s, got %s", expected, tolerance, actual)
}

func TestCalculatePremium(t *testing.T) {
	t.Run("full coverage for 100000 market value", func(t *testing.T) {
		breakdown := CalculatePremium(decimal.NewFromInt(100000), CoverageFull)

		// Годовая премия 2500 -> месячная 208.33..., налог 18% -> 37.50, итого 245.83
		requireWithinTolerance(t, "208.33", breakdown.NetPremium)
		requireWithinTolerance(t, "37.50", breakdown.Taxes)
		requireWithinTolerance(t, "245.83", breakdown.Total)
	})

	t.Run("third party rate is 1.5 percent", func(t *testing.T) {
		breakdown := CalculatePremium(decimal.NewFromInt(100000), CoverageThirdParty)

		requireWithinTolerance(t, "125.00", breakdown.NetPremium)
		requireWithinTolerance(t, "147.50", breakdown.Total)
	})

	t.Run("liability only rate is 1 percent", func(t *testing.T) {
		breakdown := CalculatePremium(decimal.NewFromInt(120000), CoverageLiabilityOnly)

		requireWithinTolerance(t, "100.00", breakdown.NetPremium)
		requireWithinTolerance(t, "118.00", breakdown.Total)
	})

	t.Run("unknown coverage type falls back to full rate", func(t *testing.T) {
		known := CalculatePremium(decimal.NewFromInt(100000), CoverageFull)
		unknown := CalculatePremium(decimal.NewFromInt(100000), CoverageType("PLATINUM"))

		require.True(t, known.NetPremium.Equal(unknown.NetPremium))
		require.True(t, known.Taxes.Equal(unknown.Taxes))
		require.True(t, known.Total.Equal(unknown.Total))
	})

	t.Run("zero market value yields zero breakdown", func(t *testing.T) {
		breakdown := CalculatePremium(decimal.Zero, CoverageFull)

		require.True(t, breakdown.NetPremium.IsZero())
		require.True(t, breakdown.Taxes.IsZero())
		require.True(t, breakdown.Total.IsZero())
	})

	t.Run("total is net plus taxes", func(t *testing.T) {
		breakdown := CalculatePremium(decimal.NewFromInt(83500), CoverageThirdParty)

		require.True(t, breakdown.Total.Equal(breakdown.NetPremium.Add(breakdown.Taxes)))
		require.False(t, breakdown.NetPremium.IsNegative())
		require.False(t, breakdown.Taxes.IsNegative())
		require.False(t, breakdown.Total.IsNegative())
	})

	t.Run("repeated monthly computation does not drift", func(t *testing.T) {
		first := CalculatePremium(decimal.NewFromInt(100000), CoverageFull)
		for i := 0; i < 1000; i++ {
			again := CalculatePremium(decimal.NewFromInt(100000), CoverageFull)
			require.True(t, first.Total.Equal(again.Total))
		}
	})
}
