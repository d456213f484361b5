package bbapi

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Accordous/bb-client/pkg/boleto"
)

// QRCode is the PIX charge attached to a boleto.
type QRCode struct {
	URL  string `json:"url"`
	TxID string `json:"txId"`
	EMV  string `json:"emv"`
}

// Beneficiary is the account holder the boleto was registered for.
type Beneficiary struct {
	Agency        int    `json:"agencia"`
	Account       int    `json:"contaCorrente"`
	AddressType   int    `json:"tipoEndereco"`
	Street        string `json:"logradouro"`
	District      string `json:"bairro"`
	City          string `json:"cidade"`
	CityCode      int    `json:"codigoCidade"`
	StateCode     string `json:"uf"`
	PostalCode    int    `json:"cep"`
	ProofOfRecord string `json:"indicadorComprovacao"`
}

// RegisteredBoleto is the registration answer for CreateBoleto.
type RegisteredBoleto struct {
	Number          string       `json:"numero"`
	WalletNumber    int          `json:"numeroCarteira"`
	WalletVariation int          `json:"numeroVariacaoCarteira"`
	ClientCode      int64        `json:"codigoCliente"`
	DigitableLine   string       `json:"linhaDigitavel"`
	Barcode         string       `json:"codigoBarraNumerico"`
	ContractNumber  int64        `json:"numeroContratoCobranca"`
	Beneficiary     *Beneficiary `json:"beneficiario,omitempty"`
	QRCode          *QRCode      `json:"qrCode,omitempty"`
}

// ListStatus selects open or written-off boletos in ListBoletos.
type ListStatus string

const (
	ListOpen       ListStatus = "A"
	ListWrittenOff ListStatus = "B"
)

// ListFilter holds the ListBoletos query. Status, Agency and Account are
// required by the provider.
type ListFilter struct {
	Status          ListStatus
	Agency          int
	Account         int
	WalletNumber    int
	WalletVariation int
	Modality        int
	PayerDocument   string
	TitleState      boleto.TitleState
	Overdue         *bool
	DueFrom, DueTo  boleto.Date
	RegisteredFrom  boleto.Date
	RegisteredTo    boleto.Date
	MovementFrom    boleto.Date
	MovementTo      boleto.Date
	Index           int
}

func (f ListFilter) validate() error {
	if f.Status != ListOpen && f.Status != ListWrittenOff {
		return fmt.Errorf("bbapi: list status must be %q or %q", ListOpen, ListWrittenOff)
	}
	if f.Agency <= 0 || f.Account <= 0 {
		return fmt.Errorf("bbapi: list filter requires agency and account")
	}
	return nil
}

func (f ListFilter) values() url.Values {
	q := url.Values{}
	q.Set("indicadorSituacao", string(f.Status))
	q.Set("agenciaBeneficiario", strconv.Itoa(f.Agency))
	q.Set("contaBeneficiario", strconv.Itoa(f.Account))
	setInt(q, "carteiraConvenio", f.WalletNumber)
	setInt(q, "variacaoCarteiraConvenio", f.WalletVariation)
	setInt(q, "modalidadeCobranca", f.Modality)
	if f.PayerDocument != "" {
		q.Set("cnpjPagador", f.PayerDocument)
	}
	if f.TitleState != "" {
		q.Set("codigoEstadoTituloCobranca", string(f.TitleState))
	}
	if f.Overdue != nil {
		if *f.Overdue {
			q.Set("boletoVencido", "S")
		} else {
			q.Set("boletoVencido", "N")
		}
	}
	setDate(q, "dataInicioVencimento", f.DueFrom)
	setDate(q, "dataFimVencimento", f.DueTo)
	setDate(q, "dataInicioRegistro", f.RegisteredFrom)
	setDate(q, "dataFimRegistro", f.RegisteredTo)
	setDate(q, "dataInicioMovimento", f.MovementFrom)
	setDate(q, "dataFimMovimento", f.MovementTo)
	setInt(q, "indice", f.Index)
	return q
}

// BoletoSummary is one row of a ListBoletos page.
type BoletoSummary struct {
	ID              string          `json:"numeroBoletoBB"`
	State           string          `json:"estadoTituloCobranca"`
	RegisteredOn    string          `json:"dataRegistro"`
	DueOn           string          `json:"dataVencimento"`
	MovedOn         string          `json:"dataMovimento"`
	CreditedOn      string          `json:"dataCredito"`
	OriginalAmount  decimal.Decimal `json:"valorOriginal"`
	CurrentAmount   decimal.Decimal `json:"valorAtual"`
	PaidAmount      decimal.Decimal `json:"valorPago"`
	Contract        int64           `json:"contrato"`
	WalletNumber    int             `json:"carteiraConvenio"`
	WalletVariation int             `json:"variacaoCarteiraConvenio"`
	StateCode       int             `json:"codigoEstadoTituloCobranca"`
}

// BoletoPage is one ListBoletos page. Pass NextIndex back as
// ListFilter.Index while HasMore reports true.
type BoletoPage struct {
	Continues string          `json:"indicadorContinuidade"`
	Count     int             `json:"quantidadeRegistros"`
	NextIndex int             `json:"proximoIndice"`
	Boletos   []BoletoSummary `json:"boletos"`
}

func (p BoletoPage) HasMore() bool { return p.Continues == "S" }

// BoletoDetail is the GetBoleto answer.
type BoletoDetail struct {
	DigitableLine     string          `json:"codigoLinhaDigitavel"`
	Barcode           string          `json:"codigoBarraNumerico"`
	ContractNumber    int64           `json:"numeroContratoCobranca"`
	StateCode         int             `json:"codigoEstadoTituloCobranca"`
	TitleTypeCode     int             `json:"codigoTipoTituloCobranca"`
	ModalityCode      int             `json:"codigoModalidadeTitulo"`
	AcceptanceCode    string          `json:"codigoAceiteTituloCobranca"`
	IssueDate         string          `json:"dataEmissaoTituloCobranca"`
	DueDate           string          `json:"dataVencimentoTituloCobranca"`
	RegisteredOn      string          `json:"dataRegistroTituloCobranca"`
	ReceivedOn        string          `json:"dataRecebimentoTitulo"`
	CreditedOn        string          `json:"dataCreditoLiquidacao"`
	OriginalAmount    decimal.Decimal `json:"valorOriginalTituloCobranca"`
	CurrentAmount     decimal.Decimal `json:"valorAtualTituloCobranca"`
	AbatementAmount   decimal.Decimal `json:"valorAbatimentoTituloCobranca"`
	PaidAmount        decimal.Decimal `json:"valorPagoSacado"`
	PayerDocumentType int             `json:"codigoTipoInscricaoSacado"`
	PayerDocument     string          `json:"numeroInscricaoSacadoCobranca"`
	PayerName         string          `json:"nomeSacadoCobranca"`
	SlipMessage       string          `json:"textoMensagemBloquetoTitulo"`
	PaymentChannel    int             `json:"codigoCanalPagamento"`
}

// TitleState maps the numeric state to its two-digit code.
func (d BoletoDetail) TitleState() (boleto.TitleState, error) {
	code := fmt.Sprintf("%02d", d.StateCode)
	if !boleto.IsValidTitleState(code) {
		return "", fmt.Errorf("%w: title state %d", boleto.ErrInvalidEnumValue, d.StateCode)
	}
	return boleto.TitleState(code), nil
}

// Due parses DueDate.
func (d BoletoDetail) Due() (boleto.Date, error) {
	return boleto.ParseDate(d.DueDate)
}

// UpdateResult is the answer for UpdateBoleto.
type UpdateResult struct {
	ContractNumber int64  `json:"numeroContratoCobranca"`
	UpdatedOn      string `json:"dataAtualizacao"`
	UpdatedAt      string `json:"horarioAtualizacao"`
}

// WriteOffResult is the answer for WriteOff.
type WriteOffResult struct {
	ContractNumber int64  `json:"numeroContratoCobranca"`
	WrittenOffOn   string `json:"dataBaixa"`
	WrittenOffAt   string `json:"horarioBaixa"`
}

// PixInfo is the PIX state of a boleto as returned by GeneratePix, GetPix
// and CancelPix.
type PixInfo struct {
	Enabled     string  `json:"indicadorPix,omitempty"`
	QRCodeImage string  `json:"qrCodePix,omitempty"`
	Code        string  `json:"codigoPix,omitempty"`
	QRCodeText  string  `json:"textoQrCodePix,omitempty"`
	Validity    int     `json:"validadeQRCode,omitempty"`
	QRCode      *QRCode `json:"qrCode,omitempty"`
	CanceledOn  string  `json:"dataHoraCancelamento,omitempty"`
}

// OperationalWriteOffFilter holds the query for ListOperationalWriteOffs.
// Agency, Account, WalletNumber, WalletVariation and the scheduling window
// are required by the provider.
type OperationalWriteOffFilter struct {
	Agency          int
	Account         int
	WalletNumber    int
	WalletVariation int
	From, To        time.Time
	State           boleto.SettlementState
	Modality        int
	Index           int
}

// Scheduling dates on this endpoint use slashes, unlike the rest of the API.
const scheduleLayout = "02/01/2006"

func (f OperationalWriteOffFilter) validate() error {
	if f.Agency <= 0 || f.Account <= 0 || f.WalletNumber <= 0 || f.WalletVariation <= 0 {
		return fmt.Errorf("bbapi: operational write-off filter requires agency, account, wallet and variation")
	}
	if f.From.IsZero() || f.To.IsZero() {
		return fmt.Errorf("bbapi: operational write-off filter requires a scheduling window")
	}
	if f.To.Before(f.From) {
		return fmt.Errorf("bbapi: scheduling window ends before it starts")
	}
	return nil
}

func (f OperationalWriteOffFilter) values() url.Values {
	q := url.Values{}
	q.Set("agencia", strconv.Itoa(f.Agency))
	q.Set("conta", strconv.Itoa(f.Account))
	q.Set("carteira", strconv.Itoa(f.WalletNumber))
	q.Set("variacao", strconv.Itoa(f.WalletVariation))
	q.Set("dataInicioAgendamentoTitulo", f.From.Format(scheduleLayout))
	q.Set("dataFimAgendamentoTitulo", f.To.Format(scheduleLayout))
	setInt(q, "estadoBaixaOperacional", int(f.State))
	setInt(q, "modalidadeTitulo", f.Modality)
	setInt(q, "indice", f.Index)
	return q
}

// OperationalWriteOff is one title settled by operational write-off.
type OperationalWriteOff struct {
	ID                  string          `json:"id"`
	Agreement           int64           `json:"numeroConvenio"`
	WalletNumber        int             `json:"carteiraConvenio"`
	WalletVariation     int             `json:"variacaoCarteiraConvenio"`
	StateCode           int             `json:"codigoEstadoBaixaOperacional"`
	ModalityCode        int             `json:"codigoModalidadeBoleto"`
	OriginalAmount      decimal.Decimal `json:"valorOriginal"`
	PaidAmount          decimal.Decimal `json:"valorPagoSacado"`
	RegisteredOn        string          `json:"dataRegistro"`
	DueOn               string          `json:"dataVencimento"`
	SettledAt           string          `json:"dataLiquidacao"`
	SettlingInstitution string          `json:"instituicaoLiquidacao"`
	SettlementChannel   int             `json:"canalLiquidacao"`
	PaymentMethod       int             `json:"formaPagamento"`
}

// State validates StateCode.
func (w OperationalWriteOff) State() (boleto.SettlementState, error) {
	return boleto.NewSettlementState(w.StateCode)
}

// OperationalWriteOffPage is one ListOperationalWriteOffs page.
type OperationalWriteOffPage struct {
	MoreTitles string                `json:"possuiMaisTitulos"`
	NextIndex  int                   `json:"proximoIndice"`
	Titles     []OperationalWriteOff `json:"titulosBaixaOperacional"`
}

func (p OperationalWriteOffPage) HasMore() bool { return p.MoreTitles == "S" }

// WriteOffQueryResult is the answer for EnableWriteOffQuery and
// DisableWriteOffQuery.
type WriteOffQueryResult struct {
	Agreement int64  `json:"numeroConvenio"`
	Status    string `json:"situacao"`
}

// MovementReturnParams selects the movement return records of an
// agreement.
type MovementReturnParams struct {
	From, To        boleto.Date
	Agency          int
	Account         int
	WalletNumber    int
	WalletVariation int
	// FirstRecord and Records page through the result.
	FirstRecord int
	Records     int
}

func (p MovementReturnParams) validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return fmt.Errorf("bbapi: movement return window is required")
	}
	if p.To.Before(p.From) {
		return fmt.Errorf("bbapi: movement return window ends before it starts")
	}
	return nil
}

func (p MovementReturnParams) values() url.Values {
	q := url.Values{}
	setDate(q, "dataMovimentoRetornoInicial", p.From)
	setDate(q, "dataMovimentoRetornoFinal", p.To)
	setInt(q, "codigoPrefixoAgencia", p.Agency)
	setInt(q, "numeroContaCorrente", p.Account)
	setInt(q, "numeroCarteiraCobranca", p.WalletNumber)
	setInt(q, "numeroVariacaoCarteiraCobranca", p.WalletVariation)
	setInt(q, "numeroRegistroPretendido", p.FirstRecord)
	setInt(q, "quantidadeRegistroPretendido", p.Records)
	return q
}

// MovementReturn is one movement record of an agreement.
type MovementReturn struct {
	MovedOn      string          `json:"dataMovimentoRetorno"`
	Agreement    int64           `json:"numeroConvenio"`
	TitleNumber  string          `json:"numeroTituloCobranca"`
	CommandCode  int             `json:"codigoComandoAcao"`
	DueOn        string          `json:"dataVencimentoTitulo"`
	TitleAmount  decimal.Decimal `json:"valorTitulo"`
	PaidAmount   decimal.Decimal `json:"valorPagoTitulo"`
	CreditedOn   string          `json:"dataCreditoTitulo"`
	RecordNumber int             `json:"numeroRegistro"`
}

// MovementReturnPage is one ListMovementReturns page.
type MovementReturnPage struct {
	Continues  string           `json:"indicadorContinuidade"`
	LastRecord int              `json:"numeroUltimoRegistro"`
	Records    []MovementReturn `json:"listaRegistro"`
}

func (p MovementReturnPage) HasMore() bool { return p.Continues == "S" }

func setInt(q url.Values, key string, v int) {
	if v != 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func setDate(q url.Values, key string, d boleto.Date) {
	if !d.IsZero() {
		q.Set(key, d.String())
	}
}
