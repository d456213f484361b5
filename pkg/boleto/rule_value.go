package boleto

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type valueBasis uint8

const (
	basisNone valueBasis = iota
	basisPercentage
	basisFixedAmount
)

// RuleValue is either a percentage of the principal, a fixed amount, or
// nothing. Exactly one variant holds at a time.
type RuleValue struct {
	basis  valueBasis
	amount decimal.Decimal
}

// Percentage returns a RuleValue holding pct percent (e.g. 2 means 2%).
func Percentage(pct decimal.Decimal) RuleValue {
	return RuleValue{basis: basisPercentage, amount: pct}
}

// FixedAmount returns a RuleValue holding a fixed monetary amount.
func FixedAmount(amount decimal.Decimal) RuleValue {
	return RuleValue{basis: basisFixedAmount, amount: amount}
}

// IsPercentage reports whether v holds a percentage.
func (v RuleValue) IsPercentage() bool { return v.basis == basisPercentage }

// IsFixedAmount reports whether v holds a fixed amount.
func (v RuleValue) IsFixedAmount() bool { return v.basis == basisFixedAmount }

// IsNone reports whether v holds neither variant.
func (v RuleValue) IsNone() bool { return v.basis == basisNone }

// Value returns the held percentage or amount, zero for none.
func (v RuleValue) Value() decimal.Decimal {
	if v.IsNone() {
		return decimal.Zero
	}
	return v.amount
}

func (v RuleValue) validate() error {
	switch v.basis {
	case basisPercentage:
		if v.amount.IsNegative() || v.amount.GreaterThan(hundred) {
			return fmt.Errorf("%w: percentage must be between 0 and 100, got %s", ErrInvalidAmount, v.amount)
		}
	case basisFixedAmount:
		if v.amount.IsNegative() {
			return fmt.Errorf("%w: fixed amount must not be negative, got %s", ErrInvalidAmount, v.amount)
		}
	}
	return nil
}

// putWire writes porcentagem or valor into m.
func (v RuleValue) putWire(m map[string]any) {
	switch {
	case v.IsPercentage():
		m["porcentagem"] = v.amount.InexactFloat64()
	case v.IsFixedAmount():
		m["valor"] = wireAmount(v.amount)
	}
}
