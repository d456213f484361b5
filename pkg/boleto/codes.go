package boleto

import (
	"fmt"
	"strconv"
)

// DocumentType identifies the payer or beneficiary registration kind
// (tipoInscricao): CPF for individuals, CNPJ for organizations.
type DocumentType struct {
	code int
}

var (
	DocumentIndividual   = DocumentType{1}
	DocumentOrganization = DocumentType{2}
)

var documentTypes = map[int]DocumentType{
	1: DocumentIndividual,
	2: DocumentOrganization,
}

// NewDocumentType validates a raw tipoInscricao code.
func NewDocumentType(code int) (DocumentType, error) {
	if dt, ok := documentTypes[code]; ok {
		return dt, nil
	}
	return DocumentType{}, fmt.Errorf("%w: code %d", ErrInvalidDocumentType, code)
}

// IsValidDocumentType reports whether code is a known tipoInscricao.
func IsValidDocumentType(code int) bool {
	_, ok := documentTypes[code]
	return ok
}

// DocumentTypeFromDocument infers the type from the digit count of doc.
func DocumentTypeFromDocument(doc string) (DocumentType, error) {
	switch len(onlyDigits(doc)) {
	case 11:
		return DocumentIndividual, nil
	case 14:
		return DocumentOrganization, nil
	default:
		return DocumentType{}, fmt.Errorf("%w: document must have 11 or 14 digits", ErrInvalidDocumentType)
	}
}

func (d DocumentType) Code() int { return d.code }

// Length is the number of digits a document of this type must have.
func (d DocumentType) Length() int {
	if d == DocumentOrganization {
		return 14
	}
	return 11
}

// Mask is the display mask; '#' stands for one digit.
func (d DocumentType) Mask() string {
	if d == DocumentOrganization {
		return "##.###.###/####-##"
	}
	return "###.###.###-##"
}

func (d DocumentType) Description() string {
	switch d {
	case DocumentIndividual:
		return "CPF - Pessoa Física"
	case DocumentOrganization:
		return "CNPJ - Pessoa Jurídica"
	default:
		return "Tipo de inscrição desconhecido"
	}
}

func (d DocumentType) String() string { return strconv.Itoa(d.code) }

// IsZero reports whether the document type is uninitialized.
func (d DocumentType) IsZero() bool { return d.code == 0 }

// BillingModality is the collection modality (codigoModalidade).
type BillingModality struct {
	code int
}

var (
	ModalitySimple = BillingModality{1}
	ModalityLinked = BillingModality{4}
)

var billingModalities = map[string]BillingModality{
	"1":  ModalitySimple,
	"01": ModalitySimple,
	"4":  ModalityLinked,
	"04": ModalityLinked,
}

// NewBillingModality validates a raw modality code such as "01" or "4".
func NewBillingModality(code string) (BillingModality, error) {
	if m, ok := billingModalities[code]; ok {
		return m, nil
	}
	return BillingModality{}, invalidEnum("billing modality", strconv.Quote(code))
}

// IsValidBillingModality reports whether code names a known modality.
func IsValidBillingModality(code string) bool {
	_, ok := billingModalities[code]
	return ok
}

// Code returns the two-character code ("01" or "04").
func (m BillingModality) Code() string { return fmt.Sprintf("%02d", m.code) }

// Value returns the numeric code sent on the wire.
func (m BillingModality) Value() int { return m.code }

func (m BillingModality) Description() string {
	switch m {
	case ModalitySimple:
		return "Modalidade Simples"
	case ModalityLinked:
		return "Modalidade Vinculada"
	default:
		return "Modalidade desconhecida"
	}
}

func (m BillingModality) String() string { return m.Code() }

func (m BillingModality) IsZero() bool { return m.code == 0 }

// TitleType is the commercial instrument kind (codigoTipoTitulo).
type TitleType struct {
	code int
}

var (
	TitleCheque             = TitleType{1}
	TitleDuplicataMercantil = TitleType{2}
	TitleDuplicataServico   = TitleType{3}
	TitleNotaPromissoria    = TitleType{4}
	TitleNotaSeguro         = TitleType{5}
	TitleRecibo             = TitleType{6}
	TitleLetraCambio        = TitleType{7}
	TitleNotaDebito         = TitleType{8}
	TitleNotaServico        = TitleType{9}
	TitleOther              = TitleType{99}
)

var titleTypeDescriptions = map[TitleType]string{
	TitleCheque:             "Cheque",
	TitleDuplicataMercantil: "Duplicata Mercantil",
	TitleDuplicataServico:   "Duplicata de Serviço",
	TitleNotaPromissoria:    "Nota Promissória",
	TitleNotaSeguro:         "Nota de Seguro",
	TitleRecibo:             "Recibo",
	TitleLetraCambio:        "Letra de Câmbio",
	TitleNotaDebito:         "Nota de Débito",
	TitleNotaServico:        "Nota de Serviço",
	TitleOther:              "Outros",
}

// NewTitleType validates a raw codigoTipoTitulo.
func NewTitleType(code int) (TitleType, error) {
	t := TitleType{code}
	if _, ok := titleTypeDescriptions[t]; !ok {
		return TitleType{}, invalidEnum("title type", code)
	}
	return t, nil
}

// IsValidTitleType reports whether code is a known title type.
func IsValidTitleType(code int) bool {
	_, ok := titleTypeDescriptions[TitleType{code}]
	return ok
}

func (t TitleType) Code() int { return t.code }

func (t TitleType) Description() string {
	if d, ok := titleTypeDescriptions[t]; ok {
		return d
	}
	return "Tipo de título desconhecido"
}

// IsCommercial is true for duplicates and service notes.
func (t TitleType) IsCommercial() bool {
	return t == TitleDuplicataMercantil || t == TitleDuplicataServico || t == TitleNotaServico
}

func (t TitleType) String() string { return strconv.Itoa(t.code) }

func (t TitleType) IsZero() bool { return t.code == 0 }

// DiscountKind is the discount rule's tipo (0..3).
type DiscountKind int

const (
	DiscountNone             DiscountKind = 0
	DiscountFixedUntilDate   DiscountKind = 1
	DiscountPercentUntilDate DiscountKind = 2
	DiscountPerDayEarly      DiscountKind = 3
)

func IsValidDiscountKind(code int) bool { return code >= 0 && code <= 3 }

func (k DiscountKind) Description() string {
	switch k {
	case DiscountNone:
		return "Sem desconto"
	case DiscountFixedUntilDate:
		return "Valor fixo até a data informada"
	case DiscountPercentUntilDate:
		return "Percentual até a data informada"
	case DiscountPerDayEarly:
		return "Valor por antecipação dia corrido"
	default:
		return "Tipo desconhecido"
	}
}

// InterestKind is the late-interest rule's tipo (0..3). Its code space is
// independent from PenaltyKind.
type InterestKind int

const (
	InterestNone        InterestKind = 0
	InterestPerDay      InterestKind = 1
	InterestMonthlyRate InterestKind = 2
	InterestExempt      InterestKind = 3
)

func IsValidInterestKind(code int) bool { return code >= 0 && code <= 3 }

func (k InterestKind) Description() string {
	switch k {
	case InterestNone:
		return "Sem juros de mora"
	case InterestPerDay:
		return "Valor por dia"
	case InterestMonthlyRate:
		return "Taxa mensal"
	case InterestExempt:
		return "Isento"
	default:
		return "Tipo desconhecido"
	}
}

// PenaltyKind is the penalty rule's tipo (0..2).
type PenaltyKind int

const (
	PenaltyNone    PenaltyKind = 0
	PenaltyFixed   PenaltyKind = 1
	PenaltyPercent PenaltyKind = 2
)

func IsValidPenaltyKind(code int) bool { return code >= 0 && code <= 2 }

func (k PenaltyKind) Description() string {
	switch k {
	case PenaltyNone:
		return "Sem multa"
	case PenaltyFixed:
		return "Valor fixo"
	case PenaltyPercent:
		return "Percentual"
	default:
		return "Tipo desconhecido"
	}
}

// SettlementState is the operational write-off state carried by settlement
// notifications (codigoEstadoBaixaOperacional).
type SettlementState int

const (
	SettlementByBB             SettlementState = 1
	SettlementByOtherBank      SettlementState = 2
	SettlementWriteOffCanceled SettlementState = 10
)

func IsValidSettlementState(code int) bool {
	switch SettlementState(code) {
	case SettlementByBB, SettlementByOtherBank, SettlementWriteOffCanceled:
		return true
	}
	return false
}

// NewSettlementState validates a raw state code.
func NewSettlementState(code int) (SettlementState, error) {
	if !IsValidSettlementState(code) {
		return 0, invalidEnum("settlement state", code)
	}
	return SettlementState(code), nil
}

func (s SettlementState) Description() string {
	switch s {
	case SettlementByBB:
		return "Baixa Operacional emitida pelo BB"
	case SettlementByOtherBank:
		return "Baixa Operacional emitida por outro Banco"
	case SettlementWriteOffCanceled:
		return "Cancelamento da Baixa Operacional"
	default:
		return "Estado desconhecido"
	}
}

// IsPayment is true when the boleto was paid (at BB or another bank).
func (s SettlementState) IsPayment() bool {
	return s == SettlementByBB || s == SettlementByOtherBank
}

// IsCancellation is true when a previous write-off was reverted.
func (s SettlementState) IsCancellation() bool {
	return s == SettlementWriteOffCanceled
}

// SettlementChannel is the channel the payer used (canalLiquidacao).
type SettlementChannel int

const (
	ChannelBranch        SettlementChannel = 1
	ChannelCorrespondent SettlementChannel = 2
	ChannelInternet      SettlementChannel = 3
	ChannelMobile        SettlementChannel = 4
	ChannelATM           SettlementChannel = 5
)

func IsValidSettlementChannel(code int) bool { return code >= 1 && code <= 5 }

func (c SettlementChannel) Description() string {
	switch c {
	case ChannelBranch:
		return "Agência"
	case ChannelCorrespondent:
		return "Correspondente"
	case ChannelInternet:
		return "Internet Banking"
	case ChannelMobile:
		return "Mobile Banking"
	case ChannelATM:
		return "ATM"
	default:
		return "Canal desconhecido"
	}
}

// PaymentMethod is how the boleto was paid (formaPagamento).
type PaymentMethod int

const (
	PaymentCash          PaymentMethod = 1
	PaymentCheque        PaymentMethod = 2
	PaymentTransfer      PaymentMethod = 3
	PaymentAccountCredit PaymentMethod = 4
	PaymentPix           PaymentMethod = 5
)

func IsValidPaymentMethod(code int) bool { return code >= 1 && code <= 5 }

func (p PaymentMethod) Description() string {
	switch p {
	case PaymentCash:
		return "Dinheiro"
	case PaymentCheque:
		return "Cheque"
	case PaymentTransfer:
		return "DOC/TED"
	case PaymentAccountCredit:
		return "Crédito em Conta"
	case PaymentPix:
		return "PIX"
	default:
		return "Forma de pagamento desconhecida"
	}
}

// BoletoStatus is the list filter situation (indicadorSituacao and friends).
type BoletoStatus string

const (
	StatusActive     BoletoStatus = "A"
	StatusWrittenOff BoletoStatus = "B"
	StatusCanceled   BoletoStatus = "C"
	StatusPaid       BoletoStatus = "P"
)

func IsValidBoletoStatus(code string) bool {
	switch BoletoStatus(code) {
	case StatusActive, StatusWrittenOff, StatusCanceled, StatusPaid:
		return true
	}
	return false
}

func (s BoletoStatus) Description() string {
	switch s {
	case StatusActive:
		return "Ativo"
	case StatusWrittenOff:
		return "Baixado"
	case StatusCanceled:
		return "Cancelado"
	case StatusPaid:
		return "Pago"
	default:
		return "Situação desconhecida"
	}
}

// TitleState is the collection title state (codigoEstadoTituloCobranca).
type TitleState string

const (
	TitleRegistered TitleState = "01"
	TitleSettled    TitleState = "02"
	TitleProtested  TitleState = "03"
	TitleOverdue    TitleState = "04"
	TitleCanceled   TitleState = "05"
)

func IsValidTitleState(code string) bool {
	switch TitleState(code) {
	case TitleRegistered, TitleSettled, TitleProtested, TitleOverdue, TitleCanceled:
		return true
	}
	return false
}

func (s TitleState) Description() string {
	switch s {
	case TitleRegistered:
		return "Registrado"
	case TitleSettled:
		return "Liquidado"
	case TitleProtested:
		return "Protestado"
	case TitleOverdue:
		return "Vencido"
	case TitleCanceled:
		return "Cancelado"
	default:
		return "Estado desconhecido"
	}
}
