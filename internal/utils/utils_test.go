package utils

import (
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSKUFormat(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^PRD-[A-Z0-9]{8}$`), SKU())
}

func TestDocumentNumberFormat(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^BILL-\d{8}-\d{4}$`), DocumentNumber("BILL")())
}

func TestUniqueCode_RetriesOnCollision(t *testing.T) {
	taken := map[string]bool{"PRD-AAAAAAAA": true}
	code, err := UniqueCode(Sequence("PRD-AAAAAAAA", "PRD-BBBBBBBB"), func(c string) (bool, error) {
		return taken[c], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "PRD-BBBBBBBB", code)
}

func TestUniqueCode_Exhausted(t *testing.T) {
	calls := 0
	_, err := UniqueCode(Sequence("DUP"), func(string) (bool, error) {
		calls++
		return true, nil
	})
	assert.ErrorIs(t, err, ErrCodeExhausted)
	assert.Equal(t, MaxCodeAttempts, calls)
}

func TestUniqueCode_PropagatesLookupError(t *testing.T) {
	boom := errors.New("boom")
	_, err := UniqueCode(SKU, func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "₹1,234.50", FormatCurrency(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "₹0.00", FormatCurrency(decimal.Zero))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
}
