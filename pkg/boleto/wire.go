package boleto

import "github.com/shopspring/decimal"

// ToWireFormat serializes the boleto into the registration request body.
// Required fields are always present; optional ones only when set. Amounts
// are rounded to centavos.
func (b Boleto) ToWireFormat() map[string]any {
	m := map[string]any{
		"numeroConvenio":         b.agreementNumber,
		"numeroCarteira":         b.walletNumber,
		"numeroVariacaoCarteira": b.walletVariation,
		"codigoModalidade":       b.modality.Value(),
		"dataEmissao":            b.issueDate.String(),
		"dataVencimento":         b.dueDate.String(),
		"valorOriginal":          wireAmount(b.principal),
		"codigoTipoTitulo":       b.titleType.Code(),
		"pagador":                b.payer.wire(),
		"indicadorPix":           yesNo(b.pixEnabled),
	}

	putString(m, "descricaoTipoTitulo", b.titleTypeDescription)
	putString(m, "numeroTituloBeneficiario", b.beneficiaryTitleNumber)
	putString(m, "numeroTituloCliente", b.clientTitleNumber)
	putString(m, "mensagemBloquetoOcorrencia", b.slipMessage)
	putString(m, "orgaoNegativador", b.negativeRegistryAgency)

	if b.abatement.IsPositive() {
		m["valorAbatimento"] = wireAmount(b.abatement)
	}
	putInt(m, "quantidadeDiasProtesto", b.daysUntilProtest)
	putInt(m, "quantidadeDiasNegativacao", b.daysUntilNegativeRegistry)
	putInt(m, "numeroDiasLimiteRecebimento", b.maxDaysToReceive)

	if b.acceptPastDue {
		m["indicadorAceiteTituloVencido"] = "S"
	}
	if b.allowPartialPayment {
		m["indicadorPermissaoRecebimentoParcial"] = "S"
	}
	if b.accepted {
		m["codigoAceite"] = "A"
	}

	if b.finalBeneficiary != nil {
		m["beneficiarioFinal"] = b.finalBeneficiary.wire()
	}
	for i, key := range []string{"desconto", "segundoDesconto", "terceiroDesconto"} {
		if d := b.discounts[i]; d != nil {
			m[key] = d.wire()
		}
	}
	if b.interest != nil {
		m["jurosMora"] = b.interest.wire()
	}
	if b.penalty != nil {
		m["multa"] = b.penalty.wire()
	}
	return m
}

func yesNo(v bool) string {
	if v {
		return "S"
	}
	return "N"
}

func putInt(m map[string]any, key string, v int) {
	if v > 0 {
		m[key] = v
	}
}

func wireAmount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
