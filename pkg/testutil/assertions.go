package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// AssertDecimalEqual compares numerically, so "950" equals "950.00".
func AssertDecimalEqual(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) bool {
	t.Helper()
	expected := decimal.RequireFromString(want)
	if expected.Equal(got) {
		return true
	}
	return assert.Fail(t, "decimal mismatch: expected "+expected.String()+", got "+got.String(), msgAndArgs...)
}
