package boleto_test

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Accordous/bb-client/pkg/boleto"
)

func mustDiscountPct(t *testing.T, pct string) boleto.DiscountRule {
	t.Helper()
	d, err := boleto.NewDiscountByPercentage(boleto.DiscountPercentUntilDate, boleto.Date{}, dec(pct))
	require.NoError(t, err)
	return d
}

func mustDiscountFixed(t *testing.T, amount string) boleto.DiscountRule {
	t.Helper()
	d, err := boleto.NewDiscountByFixedAmount(boleto.DiscountFixedUntilDate, boleto.Date{}, dec(amount))
	require.NoError(t, err)
	return d
}

func TestBoleto_SettlementScenario(t *testing.T) {
	today := boleto.Today()

	penalty, err := boleto.NewPenaltyByPercentage(boleto.PenaltyPercent, boleto.Date{}, dec("2"))
	require.NoError(t, err)
	interest, err := boleto.NewInterestByFixedAmount(boleto.InterestPerDay, dec("2.00"))
	require.NoError(t, err)

	b, err := validBuilder(t).
		IssueOn(today.AddDays(-30)).
		DueOn(today).
		PrincipalAmount(dec("1000.00")).
		Discount(mustDiscountPct(t, "5")).
		Penalty(penalty).
		Interest(interest).
		Build()
	require.NoError(t, err)

	assertDecimal(t, "950.00", b.AmountAfterDiscounts())
	assert.False(t, b.IsOverdue(today))
	assert.Equal(t, 0, b.DaysToDue(today))
	assertDecimal(t, "950.00", b.AmountWithInterestAndPenalty(today, nil))

	daysLate := 5
	assertDecimal(t, "980.00", b.AmountWithInterestAndPenalty(today, &daysLate))
}

func TestBoleto_AmountWithInterestAndPenalty_DerivesDaysLate(t *testing.T) {
	due := boleto.MustParseDate("10.03.2026")
	asOf := due.AddDays(3)

	penalty, err := boleto.NewPenaltyByFixedAmount(boleto.PenaltyFixed, boleto.Date{}, dec("10"))
	require.NoError(t, err)
	interest, err := boleto.NewInterestByFixedAmount(boleto.InterestPerDay, dec("1"))
	require.NoError(t, err)

	b, err := validBuilder(t).DueOn(due).Penalty(penalty).Interest(interest).Build()
	require.NoError(t, err)

	assert.True(t, b.IsOverdue(asOf))
	assert.Equal(t, -3, b.DaysToDue(asOf))
	assertDecimal(t, "1013", b.AmountWithInterestAndPenalty(asOf, nil))

	zero := 0
	assertDecimal(t, "1000", b.AmountWithInterestAndPenalty(asOf, &zero))
}

func TestBoleto_PenaltyEffectiveDateIsNotConsulted(t *testing.T) {
	due := boleto.MustParseDate("10.03.2026")
	penalty, err := boleto.NewPenaltyByPercentage(boleto.PenaltyPercent, due.AddDays(-10), dec("2"))
	require.NoError(t, err)
	require.False(t, penalty.AppliesTo(due))

	b, err := validBuilder(t).DueOn(due).Penalty(penalty).Build()
	require.NoError(t, err)

	assertDecimal(t, "1020", b.AmountWithInterestAndPenalty(due.AddDays(1), nil))
}

func TestBoleto_AmountAfterDiscounts_AllTiersAndAbatement(t *testing.T) {
	b, err := validBuilder(t).
		Discount(mustDiscountPct(t, "10")).
		SecondDiscount(mustDiscountFixed(t, "50")).
		ThirdDiscount(mustDiscountPct(t, "1")).
		AbatementAmount(dec("40")).
		Build()
	require.NoError(t, err)

	// 1000 - 100 - 50 - 10 - 40
	assertDecimal(t, "800", b.AmountAfterDiscounts())

	second, ok := b.Discount(2)
	require.True(t, ok)
	assert.True(t, second.IsFixedAmount())
	_, ok = b.Discount(4)
	assert.False(t, ok)
}

func TestBoleto_AmountAfterDiscounts_NeverNegative(t *testing.T) {
	rng := rand.New(rand.NewPCG(2026, 3))
	for i := 0; i < 300; i++ {
		principal := decimal.New(rng.Int64N(100_000)+1, -2)
		b, err := validBuilder(t).
			PrincipalAmount(principal).
			Discount(mustDiscountPct(t, decimal.New(rng.Int64N(10_001), -2).String())).
			SecondDiscount(mustDiscountFixed(t, decimal.New(rng.Int64N(200_000), -2).String())).
			ThirdDiscount(mustDiscountPct(t, decimal.New(rng.Int64N(10_001), -2).String())).
			AbatementAmount(decimal.New(rng.Int64N(200_000), -2)).
			Build()
		require.NoError(t, err)

		got := b.AmountAfterDiscounts()
		assert.False(t, got.IsNegative(), "principal %s produced %s", principal, got)
		assert.True(t, got.Equal(b.AmountAfterDiscounts()))
	}
}

func TestBoleto_CalculationsAreIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	due := boleto.MustParseDate("31.03.2026")
	for i := 0; i < 200; i++ {
		interest, err := boleto.NewInterestByPercentage(boleto.InterestMonthlyRate, decimal.New(rng.Int64N(1_000), -2))
		require.NoError(t, err)
		penalty, err := boleto.NewPenaltyByPercentage(boleto.PenaltyPercent, boleto.Date{}, decimal.New(rng.Int64N(1_000), -2))
		require.NoError(t, err)

		b, err := validBuilder(t).
			PrincipalAmount(decimal.New(rng.Int64N(1_000_000)+1, -2)).
			Interest(interest).
			Penalty(penalty).
			Build()
		require.NoError(t, err)

		asOf := due.AddDays(rng.IntN(120) - 60)
		first := b.AmountWithInterestAndPenalty(asOf, nil)
		second := b.AmountWithInterestAndPenalty(asOf, nil)
		assert.True(t, first.Equal(second))
		assert.Equal(t, b.DaysToDue(asOf), b.DaysToDue(asOf))
	}
}
