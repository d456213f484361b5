package boleto

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var monthlyRateDivisor = decimal.NewFromInt(100 * 30)

// InterestRule is the late-payment interest (juros de mora) charged per day
// overdue.
type InterestRule struct {
	kind  InterestKind
	value RuleValue
}

// NewInterestByPercentage creates a percentage-based interest rule. With
// InterestMonthlyRate the percentage is a monthly rate spread over 30 days;
// otherwise it is applied per day.
func NewInterestByPercentage(kind InterestKind, pct decimal.Decimal) (InterestRule, error) {
	return newInterest(kind, Percentage(pct))
}

// NewInterestByFixedAmount creates an interest rule charging amount per day.
func NewInterestByFixedAmount(kind InterestKind, amount decimal.Decimal) (InterestRule, error) {
	return newInterest(kind, FixedAmount(amount))
}

// NoInterest returns the kind 0 rule.
func NoInterest() InterestRule {
	return InterestRule{kind: InterestNone}
}

func newInterest(kind InterestKind, value RuleValue) (InterestRule, error) {
	if !IsValidInterestKind(int(kind)) {
		return InterestRule{}, invalidEnum("interest kind", int(kind))
	}
	if err := value.validate(); err != nil {
		return InterestRule{}, fmt.Errorf("interest: %w", err)
	}
	return InterestRule{kind: kind, value: value}, nil
}

// Amount returns the interest accrued on principal after daysLate days.
// Kinds 0 and 3 never accrue interest.
func (r InterestRule) Amount(principal decimal.Decimal, daysLate int) decimal.Decimal {
	if r.kind == InterestNone || r.kind == InterestExempt {
		return decimal.Zero
	}
	days := decimal.NewFromInt(int64(daysLate))

	if r.value.IsFixedAmount() {
		return r.value.amount.Mul(days)
	}
	if r.value.IsPercentage() {
		if r.kind == InterestMonthlyRate {
			return principal.Mul(r.value.amount).Mul(days).Div(monthlyRateDivisor)
		}
		return principal.Mul(r.value.amount).Div(hundred).Mul(days)
	}
	return decimal.Zero
}

func (r InterestRule) Kind() InterestKind      { return r.kind }
func (r InterestRule) Value() RuleValue        { return r.value }
func (r InterestRule) IsPercentage() bool      { return r.value.IsPercentage() }
func (r InterestRule) IsFixedAmount() bool     { return r.value.IsFixedAmount() }
func (r InterestRule) KindDescription() string { return r.kind.Description() }

func (r InterestRule) wire() map[string]any {
	m := map[string]any{"tipo": int(r.kind)}
	r.value.putWire(m)
	return m
}
