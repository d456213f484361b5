package boleto

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var minPrincipal = decimal.New(1, -2)

const maxDayLimit = 999

// Builder accumulates boleto fields and validates them in Build. A Builder
// must not be used from more than one goroutine at a time.
//
// Setters never fail; the first invalid input is recorded and returned by
// Build.
type Builder struct {
	agreementNumber *int64
	walletNumber    *int
	walletVariation *int
	modality        *BillingModality
	issueDate       *Date
	dueDate         *Date
	principal       *decimal.Decimal
	titleType       *TitleType
	payer           *Party

	b   Boleto
	err error
}

// NewBuilder returns a Builder with PIX enabled and every other flag off.
func NewBuilder() *Builder {
	return &Builder{b: Boleto{pixEnabled: true}}
}

func (bd *Builder) fail(err error) *Builder {
	if bd.err == nil {
		bd.err = err
	}
	return bd
}

// AgreementNumber sets the convênio (numeroConvenio).
func (bd *Builder) AgreementNumber(n int64) *Builder {
	bd.agreementNumber = &n
	return bd
}

// WalletNumber sets the carteira (numeroCarteira).
func (bd *Builder) WalletNumber(n int) *Builder {
	bd.walletNumber = &n
	return bd
}

// WalletVariation sets the carteira variation (numeroVariacaoCarteira).
func (bd *Builder) WalletVariation(n int) *Builder {
	bd.walletVariation = &n
	return bd
}

func (bd *Builder) Modality(m BillingModality) *Builder {
	if !IsValidBillingModality(m.Code()) {
		return bd.fail(invalidEnum("billing modality", m.Code()))
	}
	bd.modality = &m
	return bd
}

// ModalityCode sets the modality from a raw code such as "01" or "4".
func (bd *Builder) ModalityCode(code string) *Builder {
	m, err := NewBillingModality(code)
	if err != nil {
		return bd.fail(err)
	}
	bd.modality = &m
	return bd
}

// IssueDate parses a dd.mm.yyyy issue date.
func (bd *Builder) IssueDate(s string) *Builder {
	d, err := parseDate("issueDate", s)
	if err != nil {
		return bd.fail(err)
	}
	return bd.IssueOn(d)
}

func (bd *Builder) IssueOn(d Date) *Builder {
	if d.IsZero() {
		return bd.fail(&DateParseError{Field: "issueDate"})
	}
	bd.issueDate = &d
	return bd
}

// DueDate parses a dd.mm.yyyy due date.
func (bd *Builder) DueDate(s string) *Builder {
	d, err := parseDate("dueDate", s)
	if err != nil {
		return bd.fail(err)
	}
	return bd.DueOn(d)
}

func (bd *Builder) DueOn(d Date) *Builder {
	if d.IsZero() {
		return bd.fail(&DateParseError{Field: "dueDate"})
	}
	bd.dueDate = &d
	return bd
}

// PrincipalAmount sets valorOriginal, which must be at least 0.01.
func (bd *Builder) PrincipalAmount(amount decimal.Decimal) *Builder {
	if amount.LessThan(minPrincipal) {
		return bd.fail(fmt.Errorf("%w: principal amount must be at least 0.01, got %s", ErrInvalidAmount, amount))
	}
	bd.principal = &amount
	return bd
}

func (bd *Builder) TitleType(t TitleType) *Builder {
	if !IsValidTitleType(t.Code()) {
		return bd.fail(invalidEnum("title type", t.Code()))
	}
	bd.titleType = &t
	return bd
}

// TitleTypeCode sets the title type from a raw codigoTipoTitulo.
func (bd *Builder) TitleTypeCode(code int) *Builder {
	t, err := NewTitleType(code)
	if err != nil {
		return bd.fail(err)
	}
	bd.titleType = &t
	return bd
}

func (bd *Builder) Payer(p Party) *Builder {
	if p.IsZero() {
		return bd.fail(fmt.Errorf("%w: payer", ErrInvalidDocumentType))
	}
	bd.payer = &p
	return bd
}

func (bd *Builder) FinalBeneficiary(p Party) *Builder {
	if p.IsZero() {
		return bd.fail(fmt.Errorf("%w: final beneficiary", ErrInvalidDocumentType))
	}
	bd.b.finalBeneficiary = &p
	return bd
}

// Discount sets the first discount tier (desconto).
func (bd *Builder) Discount(d DiscountRule) *Builder {
	bd.b.discounts[0] = &d
	return bd
}

// SecondDiscount sets segundoDesconto.
func (bd *Builder) SecondDiscount(d DiscountRule) *Builder {
	bd.b.discounts[1] = &d
	return bd
}

// ThirdDiscount sets terceiroDesconto.
func (bd *Builder) ThirdDiscount(d DiscountRule) *Builder {
	bd.b.discounts[2] = &d
	return bd
}

func (bd *Builder) Interest(r InterestRule) *Builder {
	bd.b.interest = &r
	return bd
}

func (bd *Builder) Penalty(p PenaltyRule) *Builder {
	bd.b.penalty = &p
	return bd
}

// AbatementAmount sets valorAbatimento.
func (bd *Builder) AbatementAmount(amount decimal.Decimal) *Builder {
	if amount.IsNegative() {
		return bd.fail(fmt.Errorf("%w: abatement must not be negative, got %s", ErrInvalidAmount, amount))
	}
	bd.b.abatement = amount
	return bd
}

// PixEnabled maps to indicadorPix: true is "S", false is "N".
func (bd *Builder) PixEnabled(enabled bool) *Builder {
	bd.b.pixEnabled = enabled
	return bd
}

// AcceptPastDue maps to indicadorAceiteTituloVencido: true is "S", false is "N".
func (bd *Builder) AcceptPastDue(accept bool) *Builder {
	bd.b.acceptPastDue = accept
	return bd
}

// AllowPartialPayment maps to indicadorPermissaoRecebimentoParcial: true is
// "S", false is "N".
func (bd *Builder) AllowPartialPayment(allow bool) *Builder {
	bd.b.allowPartialPayment = allow
	return bd
}

// Acceptance maps to codigoAceite: true is "A" (accepted), false is "N".
func (bd *Builder) Acceptance(accepted bool) *Builder {
	bd.b.accepted = accepted
	return bd
}

// DaysUntilProtest sets quantidadeDiasProtesto (0..999).
func (bd *Builder) DaysUntilProtest(days int) *Builder {
	if err := checkDayLimit("days until protest", days); err != nil {
		return bd.fail(err)
	}
	bd.b.daysUntilProtest = days
	return bd
}

// DaysUntilNegativeRegistry sets quantidadeDiasNegativacao (0..999).
func (bd *Builder) DaysUntilNegativeRegistry(days int) *Builder {
	if err := checkDayLimit("days until negative registry", days); err != nil {
		return bd.fail(err)
	}
	bd.b.daysUntilNegativeRegistry = days
	return bd
}

// MaxDaysToReceive sets numeroDiasLimiteRecebimento (0..999).
func (bd *Builder) MaxDaysToReceive(days int) *Builder {
	if err := checkDayLimit("max days to receive", days); err != nil {
		return bd.fail(err)
	}
	bd.b.maxDaysToReceive = days
	return bd
}

func (bd *Builder) TitleTypeDescription(s string) *Builder {
	return bd.text("title type description", s, 100, &bd.b.titleTypeDescription)
}

func (bd *Builder) BeneficiaryTitleNumber(s string) *Builder {
	return bd.text("beneficiary title number", s, 15, &bd.b.beneficiaryTitleNumber)
}

func (bd *Builder) ClientTitleNumber(s string) *Builder {
	return bd.text("client title number", s, 50, &bd.b.clientTitleNumber)
}

// SlipMessage sets mensagemBloquetoOcorrencia, printed on the slip.
func (bd *Builder) SlipMessage(s string) *Builder {
	return bd.text("slip message", s, 500, &bd.b.slipMessage)
}

func (bd *Builder) NegativeRegistryAgency(s string) *Builder {
	return bd.text("negative registry agency", s, 50, &bd.b.negativeRegistryAgency)
}

func (bd *Builder) text(field, value string, max int, dst *string) *Builder {
	if err := checkLength(field, value, max); err != nil {
		return bd.fail(err)
	}
	*dst = value
	return bd
}

// Build returns the first setter error, if any, then checks required fields
// in declaration order and reports only the first one missing.
func (bd *Builder) Build() (Boleto, error) {
	if bd.err != nil {
		return Boleto{}, bd.err
	}

	required := []struct {
		field string
		set   bool
	}{
		{"agreementNumber", bd.agreementNumber != nil},
		{"walletNumber", bd.walletNumber != nil},
		{"walletVariation", bd.walletVariation != nil},
		{"modality", bd.modality != nil},
		{"issueDate", bd.issueDate != nil},
		{"dueDate", bd.dueDate != nil},
		{"principalAmount", bd.principal != nil},
		{"titleType", bd.titleType != nil},
		{"payer", bd.payer != nil},
	}
	for _, r := range required {
		if !r.set {
			return Boleto{}, &MissingRequiredFieldError{Field: r.field}
		}
	}

	b := bd.b
	b.agreementNumber = *bd.agreementNumber
	b.walletNumber = *bd.walletNumber
	b.walletVariation = *bd.walletVariation
	b.modality = *bd.modality
	b.issueDate = *bd.issueDate
	b.dueDate = *bd.dueDate
	b.principal = *bd.principal
	b.titleType = *bd.titleType
	b.payer = *bd.payer
	return b, nil
}

func checkDayLimit(field string, days int) error {
	if days < 0 || days > maxDayLimit {
		return fmt.Errorf("%w: %s must be between 0 and %d, got %d", ErrInvalidAmount, field, maxDayLimit, days)
	}
	return nil
}
