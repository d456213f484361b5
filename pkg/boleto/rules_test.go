package boleto_test

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Accordous/bb-client/pkg/boleto"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}

func TestDiscountRule_Amount(t *testing.T) {
	principal := dec("1000.00")
	expiry := boleto.MustParseDate("10.01.2026")

	pct, err := boleto.NewDiscountByPercentage(boleto.DiscountPercentUntilDate, expiry, dec("5"))
	require.NoError(t, err)
	assert.True(t, pct.IsPercentage())
	assert.False(t, pct.IsFixedAmount())
	assertDecimal(t, "50", pct.Amount(principal))
	assert.Equal(t, expiry, pct.ExpirationDate())

	fixed, err := boleto.NewDiscountByFixedAmount(boleto.DiscountFixedUntilDate, expiry, dec("30"))
	require.NoError(t, err)
	assert.True(t, fixed.IsFixedAmount())
	assertDecimal(t, "30", fixed.Amount(principal))

	capped, err := boleto.NewDiscountByFixedAmount(boleto.DiscountFixedUntilDate, expiry, dec("5000"))
	require.NoError(t, err)
	assertDecimal(t, "1000", capped.Amount(principal))

	assertDecimal(t, "0", boleto.NoDiscount().Amount(principal))
	assert.True(t, boleto.NoDiscount().Value().IsNone())
}

func TestDiscountRule_Validation(t *testing.T) {
	_, err := boleto.NewDiscountByPercentage(boleto.DiscountKind(4), boleto.Date{}, dec("5"))
	assert.ErrorIs(t, err, boleto.ErrInvalidEnumValue)

	_, err = boleto.NewDiscountByPercentage(boleto.DiscountPercentUntilDate, boleto.Date{}, dec("100.01"))
	assert.ErrorIs(t, err, boleto.ErrInvalidAmount)

	_, err = boleto.NewDiscountByFixedAmount(boleto.DiscountFixedUntilDate, boleto.Date{}, dec("-1"))
	assert.ErrorIs(t, err, boleto.ErrInvalidAmount)
}

func TestDiscountRule_MonotonicAndCapped(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		principal := decimal.New(rng.Int64N(1_000_000)+1, -2)
		a := decimal.New(rng.Int64N(10_001), -2)
		b := a.Add(decimal.New(rng.Int64N(1_000), -2))

		lowPct, err := boleto.NewDiscountByPercentage(boleto.DiscountPercentUntilDate, boleto.Date{}, decimal.Min(a, dec("100")))
		require.NoError(t, err)
		highPct, err := boleto.NewDiscountByPercentage(boleto.DiscountPercentUntilDate, boleto.Date{}, decimal.Min(b, dec("100")))
		require.NoError(t, err)
		assert.True(t, lowPct.Amount(principal).LessThanOrEqual(highPct.Amount(principal)))

		lowFixed, err := boleto.NewDiscountByFixedAmount(boleto.DiscountFixedUntilDate, boleto.Date{}, a)
		require.NoError(t, err)
		highFixed, err := boleto.NewDiscountByFixedAmount(boleto.DiscountFixedUntilDate, boleto.Date{}, b)
		require.NoError(t, err)
		assert.True(t, lowFixed.Amount(principal).LessThanOrEqual(highFixed.Amount(principal)))
		assert.True(t, highFixed.Amount(principal).LessThanOrEqual(principal))
	}
}

func TestInterestRule_Amount(t *testing.T) {
	principal := dec("1000")

	perDay, err := boleto.NewInterestByFixedAmount(boleto.InterestPerDay, dec("2.00"))
	require.NoError(t, err)
	assertDecimal(t, "10", perDay.Amount(principal, 5))

	monthly, err := boleto.NewInterestByPercentage(boleto.InterestMonthlyRate, dec("2.0"))
	require.NoError(t, err)
	assert.Equal(t, "3.3333", monthly.Amount(principal, 5).Round(4).String())
	assertDecimal(t, "20", monthly.Amount(principal, 30))

	dailyPct, err := boleto.NewInterestByPercentage(boleto.InterestPerDay, dec("0.1"))
	require.NoError(t, err)
	assertDecimal(t, "5", dailyPct.Amount(principal, 5))

	exempt, err := boleto.NewInterestByFixedAmount(boleto.InterestExempt, dec("2.00"))
	require.NoError(t, err)
	assertDecimal(t, "0", exempt.Amount(principal, 5))

	assertDecimal(t, "0", boleto.NoInterest().Amount(principal, 5))

	_, err = boleto.NewInterestByPercentage(boleto.InterestKind(4), dec("1"))
	assert.ErrorIs(t, err, boleto.ErrInvalidEnumValue)
}

func TestPenaltyRule_Amount(t *testing.T) {
	principal := dec("1000")

	pct, err := boleto.NewPenaltyByPercentage(boleto.PenaltyPercent, boleto.Date{}, dec("2"))
	require.NoError(t, err)
	assertDecimal(t, "20", pct.Amount(principal))

	fixed, err := boleto.NewPenaltyByFixedAmount(boleto.PenaltyFixed, boleto.Date{}, dec("15.50"))
	require.NoError(t, err)
	assertDecimal(t, "15.50", fixed.Amount(principal))

	assertDecimal(t, "0", boleto.NoPenalty().Amount(principal))

	_, err = boleto.NewPenaltyByPercentage(boleto.PenaltyKind(3), boleto.Date{}, dec("2"))
	assert.ErrorIs(t, err, boleto.ErrInvalidEnumValue)
}

func TestPenaltyRule_AppliesTo(t *testing.T) {
	due := boleto.MustParseDate("15.03.2026")

	undated, err := boleto.NewPenaltyByPercentage(boleto.PenaltyPercent, boleto.Date{}, dec("2"))
	require.NoError(t, err)
	assert.True(t, undated.AppliesTo(due))

	sameDay, err := boleto.NewPenaltyByPercentage(boleto.PenaltyPercent, due, dec("2"))
	require.NoError(t, err)
	assert.True(t, sameDay.AppliesTo(due))

	later, err := boleto.NewPenaltyByPercentage(boleto.PenaltyPercent, due.AddDays(1), dec("2"))
	require.NoError(t, err)
	assert.True(t, later.AppliesTo(due))

	earlier, err := boleto.NewPenaltyByPercentage(boleto.PenaltyPercent, due.AddDays(-1), dec("2"))
	require.NoError(t, err)
	assert.False(t, earlier.AppliesTo(due))
}

func TestRuleAmounts_AreIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	for i := 0; i < 200; i++ {
		principal := decimal.New(rng.Int64N(10_000_000)+1, -2)
		pct := decimal.New(rng.Int64N(10_001), -2)
		days := rng.IntN(365)

		d, err := boleto.NewDiscountByPercentage(boleto.DiscountPercentUntilDate, boleto.Date{}, pct)
		require.NoError(t, err)
		in, err := boleto.NewInterestByPercentage(boleto.InterestMonthlyRate, pct)
		require.NoError(t, err)
		p, err := boleto.NewPenaltyByFixedAmount(boleto.PenaltyFixed, boleto.Date{}, pct)
		require.NoError(t, err)

		assert.True(t, d.Amount(principal).Equal(d.Amount(principal)))
		assert.True(t, in.Amount(principal, days).Equal(in.Amount(principal, days)))
		assert.True(t, p.Amount(principal).Equal(p.Amount(principal)))
	}
}
