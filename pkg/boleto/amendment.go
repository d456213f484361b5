package boleto

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amendment describes changes to an already registered boleto. The zero
// value of each change means "leave unchanged".
type Amendment struct {
	agreementNumber int64

	newDueDate        Date
	newNominalValue   *decimal.Decimal
	includeAbatement  *decimal.Decimal
	changeAbatement   *decimal.Decimal
	protestDays       int
	cancelProtest     bool
	negativeRegistry  *negativeRegistry
	pastDueAcceptDays int
	payerAddress      *PartyDetails
}

type negativeRegistry struct {
	days   int
	agency int
}

// NewAmendment starts an empty amendment for a boleto of the given convênio.
func NewAmendment(agreementNumber int64) Amendment {
	return Amendment{agreementNumber: agreementNumber}
}

func (a Amendment) AgreementNumber() int64 { return a.agreementNumber }

func (a Amendment) WithNewDueDate(d Date) Amendment {
	a.newDueDate = d
	return a
}

func (a Amendment) WithNewNominalValue(v decimal.Decimal) Amendment {
	a.newNominalValue = &v
	return a
}

// WithAbatement adds an abatement to a boleto that has none.
func (a Amendment) WithAbatement(v decimal.Decimal) Amendment {
	a.includeAbatement = &v
	return a
}

// WithChangedAbatement replaces an existing abatement.
func (a Amendment) WithChangedAbatement(v decimal.Decimal) Amendment {
	a.changeAbatement = &v
	return a
}

func (a Amendment) WithProtestDays(days int) Amendment {
	a.protestDays = days
	return a
}

func (a Amendment) WithProtestCancelled() Amendment {
	a.cancelProtest = true
	return a
}

// WithNegativeRegistry sends the payer to a credit bureau after days.
func (a Amendment) WithNegativeRegistry(days, agency int) Amendment {
	a.negativeRegistry = &negativeRegistry{days: days, agency: agency}
	return a
}

// WithPastDueAcceptDays changes how long an overdue boleto is still accepted.
func (a Amendment) WithPastDueAcceptDays(days int) Amendment {
	a.pastDueAcceptDays = days
	return a
}

func (a Amendment) WithPayerAddress(d PartyDetails) Amendment {
	a.payerAddress = &d
	return a
}

// IsEmpty reports whether the amendment changes nothing.
func (a Amendment) IsEmpty() bool {
	return a.newDueDate.IsZero() && a.newNominalValue == nil &&
		a.includeAbatement == nil && a.changeAbatement == nil &&
		a.protestDays == 0 && !a.cancelProtest && a.negativeRegistry == nil &&
		a.pastDueAcceptDays == 0 && a.payerAddress == nil
}

// Validate checks amounts, day limits and address field lengths.
func (a Amendment) Validate() error {
	if a.agreementNumber <= 0 {
		return &MissingRequiredFieldError{Field: "agreementNumber"}
	}
	if a.newNominalValue != nil && a.newNominalValue.LessThan(minPrincipal) {
		return fmt.Errorf("%w: new nominal value must be at least 0.01", ErrInvalidAmount)
	}
	for _, v := range []*decimal.Decimal{a.includeAbatement, a.changeAbatement} {
		if v != nil && v.IsNegative() {
			return fmt.Errorf("%w: abatement must not be negative", ErrInvalidAmount)
		}
	}
	if err := checkDayLimit("protest days", a.protestDays); err != nil {
		return err
	}
	if err := checkDayLimit("past due accept days", a.pastDueAcceptDays); err != nil {
		return err
	}
	if a.negativeRegistry != nil {
		if err := checkDayLimit("negative registry days", a.negativeRegistry.days); err != nil {
			return err
		}
	}
	if a.payerAddress != nil {
		// Reuse the party limits; the name is not part of an address change.
		if _, err := NewParty(DocumentIndividual.Code(), "", "", *a.payerAddress); err != nil {
			return err
		}
	}
	return nil
}

// ToWireFormat serializes the amendment into the PATCH request body. Every
// change carries its own indicador flag set to "S".
func (a Amendment) ToWireFormat() map[string]any {
	m := map[string]any{"numeroConvenio": a.agreementNumber}

	if !a.newDueDate.IsZero() {
		m["indicadorNovaDataVencimento"] = "S"
		m["alteracaoData"] = map[string]any{"novaDataVencimento": a.newDueDate.String()}
	}
	if a.newNominalValue != nil {
		m["indicadorNovoValorNominal"] = "S"
		m["alteracaoValor"] = map[string]any{"novoValorNominal": wireAmount(*a.newNominalValue)}
	}
	if a.includeAbatement != nil {
		m["indicadorIncluirAbatimento"] = "S"
		m["abatimento"] = map[string]any{"valorAbatimento": wireAmount(*a.includeAbatement)}
	}
	if a.changeAbatement != nil {
		m["indicadorAlterarAbatimento"] = "S"
		m["alteracaoAbatimento"] = map[string]any{"novoValorAbatimento": wireAmount(*a.changeAbatement)}
	}
	if a.protestDays > 0 {
		m["indicadorProtestar"] = "S"
		m["protesto"] = map[string]any{"quantidadeDiasProtesto": a.protestDays}
	}
	if a.cancelProtest {
		m["indicadorSustacaoProtesto"] = "S"
	}
	if a.negativeRegistry != nil {
		m["indicadorNegativar"] = "S"
		m["negativacao"] = map[string]any{
			"quantidadeDiasNegativacao": a.negativeRegistry.days,
			"tipoNegativacao":           1,
			"orgaoNegativador":          a.negativeRegistry.agency,
		}
	}
	if a.pastDueAcceptDays > 0 {
		m["indicadorAlterarPrazoBoletoVencido"] = "S"
		m["alteracaoPrazo"] = map[string]any{"quantidadeDiasAceite": a.pastDueAcceptDays}
	}
	if a.payerAddress != nil {
		addr := map[string]any{}
		putString(addr, "enderecoPagador", a.payerAddress.Address)
		putString(addr, "bairroPagador", a.payerAddress.District)
		putString(addr, "cidadePagador", a.payerAddress.City)
		putString(addr, "UFPagador", a.payerAddress.StateCode)
		putString(addr, "CEPPagador", onlyDigits(a.payerAddress.PostalCode))
		m["indicadorAlterarEnderecoPagador"] = "S"
		m["alteracaoEndereco"] = addr
	}
	return m
}

// WriteOffRequest is the body of a baixa (write-off) request.
type WriteOffRequest struct {
	AgreementNumber int64 `json:"numeroConvenio"`
}

// PixRequest is the body of the gerar-pix and cancelar-pix requests.
type PixRequest struct {
	AgreementNumber int64 `json:"numeroConvenio"`
}
