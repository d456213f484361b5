// Package webhook decodes and validates the operational write-off
// (baixa operacional) notifications the bank posts when a boleto is settled
// or a settlement is reversed.
package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Accordous/bb-client/pkg/boleto"
	"github.com/Accordous/bb-client/pkg/money"
)

var (
	ErrEmptyPayload        = errors.New("webhook: empty payload")
	ErrInvalidNotification = errors.New("webhook: invalid notification")
)

// SettlementLayout is the layout of dataLiquidacao.
const SettlementLayout = "02/01/2006 15:04:05"

// Settlement timestamps are Brasília local time, which has no daylight saving.
var brasilia = time.FixedZone("BRT", -3*60*60)

// Notification is one settlement notification.
type Notification struct {
	ID                  string           `json:"id"`
	RegistrationDate    string           `json:"dataRegistro"`
	DueDate             string           `json:"dataVencimento"`
	OriginalAmount      *decimal.Decimal `json:"valorOriginal"`
	PaidAmount          *decimal.Decimal `json:"valorPagoSacado"`
	AgreementNumber     *int64           `json:"numeroConvenio"`
	OperationNumber     *int64           `json:"numeroOperacao"`
	WalletNumber        *int             `json:"carteiraConvenio"`
	WalletVariation     *int             `json:"variacaoCarteiraConvenio"`
	StateCode           *int             `json:"codigoEstadoBaixaOperacional"`
	ModalityCode        *int             `json:"codigoModalidadeBoleto"`
	SettlementTime      string           `json:"dataLiquidacao,omitempty"`
	SettlingInstitution Text             `json:"instituicaoLiquidacao,omitempty"`
	SettlementChannel   *int             `json:"canalLiquidacao,omitempty"`
	PayerPersonType     *int             `json:"tipoPessoaPortador,omitempty"`
	PayerDocument       Text             `json:"identidadePortador,omitempty"`
	PayerName           string           `json:"nomePortador,omitempty"`
	PaymentMethod       *int             `json:"formaPagamento,omitempty"`
}

// Text accepts a JSON string or number. The bank sends some identifiers
// either way.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("webhook: expected string or number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

// Decode reads a payload holding either a single notification or an array
// of them.
func Decode(r io.Reader) ([]Notification, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("webhook: read payload: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}

	var out []Notification
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
		}
	} else {
		var n Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
		}
		out = []Notification{n}
	}
	if len(out) == 0 {
		return nil, ErrEmptyPayload
	}
	return out, nil
}

// Validate checks required fields, the state code and date formats. All
// problems are reported together.
func (n Notification) Validate() error {
	var problems []string
	missing := func(field string) { problems = append(problems, field+" is required") }

	if strings.TrimSpace(n.ID) == "" {
		missing("id")
	}
	if n.RegistrationDate == "" {
		missing("dataRegistro")
	} else if _, err := boleto.ParseDate(n.RegistrationDate); err != nil {
		problems = append(problems, "dataRegistro must be dd.mm.yyyy")
	}
	if n.DueDate == "" {
		missing("dataVencimento")
	} else if _, err := boleto.ParseDate(n.DueDate); err != nil {
		problems = append(problems, "dataVencimento must be dd.mm.yyyy")
	}
	if n.OriginalAmount == nil {
		missing("valorOriginal")
	} else if n.OriginalAmount.IsNegative() {
		problems = append(problems, "valorOriginal must not be negative")
	}
	if n.PaidAmount == nil {
		missing("valorPagoSacado")
	} else if n.PaidAmount.IsNegative() {
		problems = append(problems, "valorPagoSacado must not be negative")
	}
	if n.AgreementNumber == nil {
		missing("numeroConvenio")
	}
	if n.OperationNumber == nil {
		missing("numeroOperacao")
	}
	if n.WalletNumber == nil {
		missing("carteiraConvenio")
	}
	if n.WalletVariation == nil {
		missing("variacaoCarteiraConvenio")
	}
	if n.ModalityCode == nil {
		missing("codigoModalidadeBoleto")
	}
	if n.StateCode == nil {
		missing("codigoEstadoBaixaOperacional")
	} else if !boleto.IsValidSettlementState(*n.StateCode) {
		problems = append(problems, "codigoEstadoBaixaOperacional "+strconv.Itoa(*n.StateCode)+" is unknown")
	}
	if n.SettlementTime != "" {
		if _, err := time.ParseInLocation(SettlementLayout, n.SettlementTime, brasilia); err != nil {
			problems = append(problems, "dataLiquidacao must be dd/mm/yyyy HH:mm:ss")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidNotification, strings.Join(problems, "; "))
	}
	return nil
}

// State is the settlement state, or an error when the code is absent or
// unknown.
func (n Notification) State() (boleto.SettlementState, error) {
	if n.StateCode == nil {
		return 0, fmt.Errorf("%w: codigoEstadoBaixaOperacional is required", ErrInvalidNotification)
	}
	return boleto.NewSettlementState(*n.StateCode)
}

func (n Notification) IsPayment() bool {
	s, err := n.State()
	return err == nil && s.IsPayment()
}

func (n Notification) IsCancellation() bool {
	s, err := n.State()
	return err == nil && s.IsCancellation()
}

// SettledAt parses dataLiquidacao in Brasília time. ok is false when the
// field is absent or malformed.
func (n Notification) SettledAt() (t time.Time, ok bool) {
	if n.SettlementTime == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(SettlementLayout, n.SettlementTime, brasilia)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (n Notification) RegisteredOn() (boleto.Date, error) {
	return boleto.ParseDate(n.RegistrationDate)
}

func (n Notification) DueOn() (boleto.Date, error) {
	return boleto.ParseDate(n.DueDate)
}

// AmountPaid is valorPagoSacado, falling back to valorOriginal.
func (n Notification) AmountPaid() money.Money {
	switch {
	case n.PaidAmount != nil:
		return money.BRLFromDecimal(*n.PaidAmount)
	case n.OriginalAmount != nil:
		return money.BRLFromDecimal(*n.OriginalAmount)
	default:
		return money.Zero(money.BRL)
	}
}

func (n Notification) Original() money.Money {
	if n.OriginalAmount == nil {
		return money.Zero(money.BRL)
	}
	return money.BRLFromDecimal(*n.OriginalAmount)
}

// Agreement returns numeroConvenio, or 0 when absent.
func (n Notification) Agreement() int64 {
	if n.AgreementNumber == nil {
		return 0
	}
	return *n.AgreementNumber
}

// Channel returns the settlement channel when present and known.
func (n Notification) Channel() (boleto.SettlementChannel, bool) {
	if n.SettlementChannel == nil || !boleto.IsValidSettlementChannel(*n.SettlementChannel) {
		return 0, false
	}
	return boleto.SettlementChannel(*n.SettlementChannel), true
}

// Method returns the payment method when present and known.
func (n Notification) Method() (boleto.PaymentMethod, bool) {
	if n.PaymentMethod == nil || !boleto.IsValidPaymentMethod(*n.PaymentMethod) {
		return 0, false
	}
	return boleto.PaymentMethod(*n.PaymentMethod), true
}
