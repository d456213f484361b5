package boleto

import (
	"errors"
	"fmt"
)

// Sentinel errors for classifying construction and validation failures.
var (
	ErrInvalidEnumValue     = errors.New("invalid enum value")
	ErrInvalidDocumentType  = errors.New("invalid document type")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrFieldTooLong         = errors.New("field too long")
	ErrInvalidPostalCode    = errors.New("invalid postal code")
)

// MissingRequiredFieldError reports the first required field that was not set
// on a Builder.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Is makes errors.Is(err, ErrMissingRequiredField) hold.
func (e *MissingRequiredFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// DateParseError is returned when a dd.mm.yyyy value cannot be parsed.
type DateParseError struct {
	Field string
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid date %q: expected dd.mm.yyyy", e.Value)
	}
	return fmt.Sprintf("invalid %s %q: expected dd.mm.yyyy", e.Field, e.Value)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidDate) hold.
func (e *DateParseError) Is(target error) bool {
	return target == ErrInvalidDate
}

func invalidEnum(kind string, value any) error {
	return fmt.Errorf("%w: %s %v", ErrInvalidEnumValue, kind, value)
}

func checkLength(field, value string, max int) error {
	if n := len([]rune(value)); n > max {
		return fmt.Errorf("%w: %s has %d characters, max %d", ErrFieldTooLong, field, n, max)
	}
	return nil
}
