package boleto

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PenaltyRule is the one-time charge (multa) applied once a boleto is overdue.
type PenaltyRule struct {
	kind      PenaltyKind
	effective Date
	value     RuleValue
}

// NewPenaltyByPercentage creates a flat percentage penalty, effective from
// the given date (zero Date for none).
func NewPenaltyByPercentage(kind PenaltyKind, effective Date, pct decimal.Decimal) (PenaltyRule, error) {
	return newPenalty(kind, effective, Percentage(pct))
}

// NewPenaltyByFixedAmount creates a flat fixed-amount penalty.
func NewPenaltyByFixedAmount(kind PenaltyKind, effective Date, amount decimal.Decimal) (PenaltyRule, error) {
	return newPenalty(kind, effective, FixedAmount(amount))
}

// NoPenalty returns the kind 0 rule.
func NoPenalty() PenaltyRule {
	return PenaltyRule{kind: PenaltyNone}
}

func newPenalty(kind PenaltyKind, effective Date, value RuleValue) (PenaltyRule, error) {
	if !IsValidPenaltyKind(int(kind)) {
		return PenaltyRule{}, invalidEnum("penalty kind", int(kind))
	}
	if err := value.validate(); err != nil {
		return PenaltyRule{}, fmt.Errorf("penalty: %w", err)
	}
	return PenaltyRule{kind: kind, effective: effective, value: value}, nil
}

// Amount returns the penalty on principal. It is not prorated.
func (p PenaltyRule) Amount(principal decimal.Decimal) decimal.Decimal {
	if p.kind == PenaltyNone {
		return decimal.Zero
	}
	if p.value.IsPercentage() {
		return principal.Mul(p.value.amount).Div(hundred)
	}
	if p.value.IsFixedAmount() {
		return p.value.amount
	}
	return decimal.Zero
}

// AppliesTo reports whether the penalty's effective date gates it in for a
// boleto due on dueDate. A penalty without an effective date always applies.
// Boleto calculations do not call this.
func (p PenaltyRule) AppliesTo(dueDate Date) bool {
	if p.effective.IsZero() {
		return true
	}
	return !p.effective.Before(dueDate)
}

func (p PenaltyRule) Kind() PenaltyKind       { return p.kind }
func (p PenaltyRule) EffectiveDate() Date     { return p.effective }
func (p PenaltyRule) Value() RuleValue        { return p.value }
func (p PenaltyRule) IsPercentage() bool      { return p.value.IsPercentage() }
func (p PenaltyRule) IsFixedAmount() bool     { return p.value.IsFixedAmount() }
func (p PenaltyRule) KindDescription() string { return p.kind.Description() }

func (p PenaltyRule) wire() map[string]any {
	m := map[string]any{"tipo": int(p.kind)}
	if !p.effective.IsZero() {
		m["data"] = p.effective.String()
	}
	p.value.putWire(m)
	return m
}
