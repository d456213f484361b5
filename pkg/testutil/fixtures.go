package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Accordous/bb-client/pkg/boleto"
)

// Fixed identifiers matching the provider's sandbox.
const (
	TestAgreementNumber int64 = 3128557
	TestWalletNumber          = 17
	TestWalletVariation       = 35
	TestBoletoID              = "00031285570000000042"
	TestPayerCPF              = "97310352004"
	TestPayerCNPJ             = "98959112000179"
	TestAppKey                = "dev-app-key"
)

// NewTestPayer returns a valid individual payer.
func NewTestPayer(t *testing.T) boleto.Party {
	t.Helper()
	p, err := boleto.NewParty(boleto.DocumentIndividual.Code(), TestPayerCPF, "Odorico Paraguaçu", boleto.PartyDetails{
		Address:    "Avenida Dias Gomes, 1970",
		PostalCode: "77458000",
		City:       "Sucupira",
		District:   "Centro",
		StateCode:  "TO",
		Phone:      "63987654321",
	})
	require.NoError(t, err)
	return p
}

// NewTestBoletoBuilder returns a Builder with every required field set and a
// due date dueInDays from today.
func NewTestBoletoBuilder(t *testing.T, dueInDays int) *boleto.Builder {
	t.Helper()
	today := boleto.Today()
	return boleto.NewBuilder().
		AgreementNumber(TestAgreementNumber).
		WalletNumber(TestWalletNumber).
		WalletVariation(TestWalletVariation).
		Modality(boleto.ModalitySimple).
		IssueOn(today).
		DueOn(today.AddDays(dueInDays)).
		PrincipalAmount(decimal.RequireFromString("500.00")).
		TitleType(boleto.TitleDuplicataMercantil).
		Payer(NewTestPayer(t))
}

// NewTestBoleto builds a boleto due in 30 days.
func NewTestBoleto(t *testing.T) boleto.Boleto {
	t.Helper()
	b, err := NewTestBoletoBuilder(t, 30).Build()
	require.NoError(t, err)
	return b
}

// SettlementNotificationJSON is a paid-at-BB webhook body as the provider
// sends it.
const SettlementNotificationJSON = `[{
	"id": "00031285570000000042",
	"dataRegistro": "01.03.2026",
	"dataVencimento": "31.03.2026",
	"valorOriginal": 500.00,
	"valorPagoSacado": 500.00,
	"numeroConvenio": 3128557,
	"numeroOperacao": 10045678,
	"carteiraConvenio": 17,
	"variacaoCarteiraConvenio": 35,
	"codigoEstadoBaixaOperacional": 1,
	"dataLiquidacao": "15/03/2026 14:32:10",
	"instituicaoLiquidacao": "001",
	"canalLiquidacao": 4,
	"codigoModalidadeBoleto": 1,
	"tipoPessoaPortador": 1,
	"identidadePortador": "97310352004",
	"nomePortador": "Odorico Paraguaçu",
	"formaPagamento": 5
}]`
