// Package boleto models Banco do Brasil billing documents (boletos): the
// payer and beneficiary parties, discount, interest and penalty rules, the
// Builder that validates and assembles them, and the derived amounts a
// boleto is worth at a given date.
package boleto

import (
	"github.com/shopspring/decimal"
)

// Boleto is an immutable billing document. Create one with NewBuilder.
type Boleto struct {
	agreementNumber int64
	walletNumber    int
	walletVariation int
	modality        BillingModality
	issueDate       Date
	dueDate         Date
	principal       decimal.Decimal
	titleType       TitleType
	payer           Party

	finalBeneficiary *Party
	discounts        [3]*DiscountRule
	interest         *InterestRule
	penalty          *PenaltyRule
	abatement        decimal.Decimal

	pixEnabled          bool
	acceptPastDue       bool
	allowPartialPayment bool
	accepted            bool

	daysUntilProtest          int
	daysUntilNegativeRegistry int
	maxDaysToReceive          int

	titleTypeDescription   string
	beneficiaryTitleNumber string
	clientTitleNumber      string
	slipMessage            string
	negativeRegistryAgency string
}

func (b Boleto) AgreementNumber() int64           { return b.agreementNumber }
func (b Boleto) WalletNumber() int                { return b.walletNumber }
func (b Boleto) WalletVariation() int             { return b.walletVariation }
func (b Boleto) Modality() BillingModality        { return b.modality }
func (b Boleto) IssueDate() Date                  { return b.issueDate }
func (b Boleto) DueDate() Date                    { return b.dueDate }
func (b Boleto) PrincipalAmount() decimal.Decimal { return b.principal }
func (b Boleto) TitleType() TitleType             { return b.titleType }
func (b Boleto) Payer() Party                     { return b.payer }
func (b Boleto) AbatementAmount() decimal.Decimal { return b.abatement }

func (b Boleto) IsPixEnabled() bool         { return b.pixEnabled }
func (b Boleto) AcceptsPastDue() bool       { return b.acceptPastDue }
func (b Boleto) AllowsPartialPayment() bool { return b.allowPartialPayment }
func (b Boleto) IsAccepted() bool           { return b.accepted }

func (b Boleto) DaysUntilProtest() int          { return b.daysUntilProtest }
func (b Boleto) DaysUntilNegativeRegistry() int { return b.daysUntilNegativeRegistry }
func (b Boleto) MaxDaysToReceive() int          { return b.maxDaysToReceive }

func (b Boleto) TitleTypeDescription() string   { return b.titleTypeDescription }
func (b Boleto) BeneficiaryTitleNumber() string { return b.beneficiaryTitleNumber }
func (b Boleto) ClientTitleNumber() string      { return b.clientTitleNumber }
func (b Boleto) SlipMessage() string            { return b.slipMessage }
func (b Boleto) NegativeRegistryAgency() string { return b.negativeRegistryAgency }

// FinalBeneficiary returns the beneficiarioFinal, if one was set.
func (b Boleto) FinalBeneficiary() (Party, bool) {
	if b.finalBeneficiary == nil {
		return Party{}, false
	}
	return *b.finalBeneficiary, true
}

// Discount returns the discount tier n (1, 2 or 3), if set.
func (b Boleto) Discount(n int) (DiscountRule, bool) {
	if n < 1 || n > len(b.discounts) || b.discounts[n-1] == nil {
		return DiscountRule{}, false
	}
	return *b.discounts[n-1], true
}

func (b Boleto) Interest() (InterestRule, bool) {
	if b.interest == nil {
		return InterestRule{}, false
	}
	return *b.interest, true
}

func (b Boleto) Penalty() (PenaltyRule, bool) {
	if b.penalty == nil {
		return PenaltyRule{}, false
	}
	return *b.penalty, true
}

// AmountAfterDiscounts is the principal less every discount tier and the
// abatement, never below zero.
func (b Boleto) AmountAfterDiscounts() decimal.Decimal {
	amount := b.principal
	for _, d := range b.discounts {
		if d != nil {
			amount = amount.Sub(d.Amount(b.principal))
		}
	}
	amount = amount.Sub(b.abatement)
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// IsOverdue reports whether the due date is strictly before asOf.
func (b Boleto) IsOverdue(asOf Date) bool {
	return b.dueDate.Before(asOf)
}

// DaysToDue is the signed number of days from asOf to the due date; it is
// negative once the boleto is overdue.
func (b Boleto) DaysToDue(asOf Date) int {
	return asOf.DaysUntil(b.dueDate)
}

// AmountWithInterestAndPenalty is the amount due at asOf. When daysLate is
// nil it is derived from the due date. The penalty's effective date is not
// consulted; see PenaltyRule.AppliesTo.
func (b Boleto) AmountWithInterestAndPenalty(asOf Date, daysLate *int) decimal.Decimal {
	if !b.IsOverdue(asOf) && daysLate == nil {
		return b.AmountAfterDiscounts()
	}

	days := abs(b.DaysToDue(asOf))
	if daysLate != nil {
		days = *daysLate
	}

	total := b.AmountAfterDiscounts()
	if days > 0 {
		if b.penalty != nil {
			total = total.Add(b.penalty.Amount(b.principal))
		}
		if b.interest != nil {
			total = total.Add(b.interest.Amount(b.principal, days))
		}
	}
	return total
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
