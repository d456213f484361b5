package boleto

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DiscountRule is one of up to three early-payment discount tiers.
type DiscountRule struct {
	kind       DiscountKind
	expiration Date
	value      RuleValue
}

// NewDiscountByPercentage creates a discount worth pct percent of the principal
// until expiration (which may be the zero Date).
func NewDiscountByPercentage(kind DiscountKind, expiration Date, pct decimal.Decimal) (DiscountRule, error) {
	return newDiscount(kind, expiration, Percentage(pct))
}

// NewDiscountByFixedAmount creates a discount of a fixed amount until expiration.
func NewDiscountByFixedAmount(kind DiscountKind, expiration Date, amount decimal.Decimal) (DiscountRule, error) {
	return newDiscount(kind, expiration, FixedAmount(amount))
}

// NoDiscount returns the kind 0 rule.
func NoDiscount() DiscountRule {
	return DiscountRule{kind: DiscountNone}
}

func newDiscount(kind DiscountKind, expiration Date, value RuleValue) (DiscountRule, error) {
	if !IsValidDiscountKind(int(kind)) {
		return DiscountRule{}, invalidEnum("discount kind", int(kind))
	}
	if err := value.validate(); err != nil {
		return DiscountRule{}, fmt.Errorf("discount: %w", err)
	}
	return DiscountRule{kind: kind, expiration: expiration, value: value}, nil
}

// Amount returns the discount applied to principal. A fixed discount never
// exceeds the principal.
func (d DiscountRule) Amount(principal decimal.Decimal) decimal.Decimal {
	if d.value.IsPercentage() {
		return principal.Mul(d.value.amount).Div(hundred)
	}
	if d.value.IsFixedAmount() {
		return decimal.Min(d.value.amount, principal)
	}
	return decimal.Zero
}

func (d DiscountRule) Kind() DiscountKind      { return d.kind }
func (d DiscountRule) ExpirationDate() Date    { return d.expiration }
func (d DiscountRule) Value() RuleValue        { return d.value }
func (d DiscountRule) IsPercentage() bool      { return d.value.IsPercentage() }
func (d DiscountRule) IsFixedAmount() bool     { return d.value.IsFixedAmount() }
func (d DiscountRule) KindDescription() string { return d.kind.Description() }

func (d DiscountRule) wire() map[string]any {
	m := map[string]any{"tipo": int(d.kind)}
	if !d.expiration.IsZero() {
		m["dataExpiracao"] = d.expiration.String()
	}
	d.value.putWire(m)
	return m
}
