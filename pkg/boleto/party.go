package boleto

import (
	"fmt"
	"strings"
	"unicode"
)

// PartyDetails holds the optional contact fields of a Party.
type PartyDetails struct {
	Address    string
	PostalCode string
	City       string
	District   string
	StateCode  string
	Phone      string
	Email      string

	// DifferentHolderDocument is indicadorCpfCnpjDiferenteTitular.
	DifferentHolderDocument string
	// BeneficiaryNote is campoUtilizacaoBeneficiario, free text echoed back
	// to the beneficiary.
	BeneficiaryNote string
}

// postalCodeDigits is the length of a CEP once punctuation is stripped.
const postalCodeDigits = 8

// Party is a payer (pagador) or final beneficiary (beneficiarioFinal).
type Party struct {
	documentType   DocumentType
	documentNumber string
	name           string
	details        PartyDetails
}

// NewParty validates the document type code and field lengths. The document
// number itself is checked by IsValidDocument, not here.
func NewParty(documentTypeCode int, documentNumber, name string, details PartyDetails) (Party, error) {
	dt, err := NewDocumentType(documentTypeCode)
	if err != nil {
		return Party{}, err
	}

	limits := []struct {
		field string
		value string
		max   int
	}{
		{"name", name, 100},
		{"address", details.Address, 100},
		{"postal code", onlyDigits(details.PostalCode), postalCodeDigits},
		{"city", details.City, 50},
		{"district", details.District, 50},
		{"state code", details.StateCode, 2},
		{"phone", details.Phone, 15},
		{"email", details.Email, 100},
		{"different holder document", details.DifferentHolderDocument, 50},
		{"beneficiary note", details.BeneficiaryNote, 100},
	}
	for _, l := range limits {
		if err := checkLength(l.field, l.value, l.max); err != nil {
			return Party{}, fmt.Errorf("party: %w", err)
		}
	}
	if err := checkPostalCode(details.PostalCode); err != nil {
		return Party{}, fmt.Errorf("party: %w", err)
	}

	return Party{
		documentType:   dt,
		documentNumber: documentNumber,
		name:           name,
		details:        details,
	}, nil
}

func (p Party) DocumentType() DocumentType { return p.documentType }
func (p Party) DocumentNumber() string     { return p.documentNumber }
func (p Party) Name() string               { return p.name }
func (p Party) Address() string            { return p.details.Address }
func (p Party) PostalCode() string         { return p.details.PostalCode }
func (p Party) City() string               { return p.details.City }
func (p Party) District() string           { return p.details.District }
func (p Party) StateCode() string          { return p.details.StateCode }
func (p Party) Phone() string              { return p.details.Phone }
func (p Party) Email() string              { return p.details.Email }
func (p Party) IsZero() bool               { return p.documentType.IsZero() }

// IsValidDocument reports whether the document has exactly the number of
// digits its type requires, ignoring punctuation.
func (p Party) IsValidDocument() bool {
	return len(onlyDigits(p.documentNumber)) == p.documentType.Length()
}

// FormattedDocument applies the type's mask, or returns the raw number when
// the document is invalid.
func (p Party) FormattedDocument() string {
	if !p.IsValidDocument() {
		return p.documentNumber
	}
	digits := onlyDigits(p.documentNumber)

	var b strings.Builder
	i := 0
	for _, c := range p.documentType.Mask() {
		if c == '#' {
			b.WriteByte(digits[i])
			i++
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (p Party) DocumentTypeDescription() string {
	return p.documentType.Description()
}

func (p Party) wire() map[string]any {
	m := map[string]any{
		"tipoInscricao":   p.documentType.Code(),
		"numeroInscricao": onlyDigits(p.documentNumber),
		"nome":            p.name,
	}
	putString(m, "endereco", p.details.Address)
	putString(m, "cep", onlyDigits(p.details.PostalCode))
	putString(m, "cidade", p.details.City)
	putString(m, "bairro", p.details.District)
	putString(m, "uf", p.details.StateCode)
	putString(m, "telefone", p.details.Phone)
	putString(m, "email", p.details.Email)
	putString(m, "indicadorCpfCnpjDiferenteTitular", p.details.DifferentHolderDocument)
	putString(m, "campoUtilizacaoBeneficiario", p.details.BeneficiaryNote)
	return m
}

// checkPostalCode accepts an unset CEP or one with exactly eight digits,
// punctuated or not ("01310-100", "01310100").
func checkPostalCode(cep string) error {
	if strings.TrimFunc(cep, unicode.IsSpace) == "" {
		return nil
	}
	if n := len(onlyDigits(cep)); n != postalCodeDigits {
		return fmt.Errorf("%w: %q has %d digits, want %d", ErrInvalidPostalCode, cep, n, postalCodeDigits)
	}
	return nil
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func putString(m map[string]any, key, value string) {
	if strings.TrimFunc(value, unicode.IsSpace) != "" {
		m[key] = value
	}
}
