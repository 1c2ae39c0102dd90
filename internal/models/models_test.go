package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals_ThreeItemCart(t *testing.T) {
	items := LineItems{
		{Name: "a", Quantity: 1, Total: dec("100.00")},
		{Name: "b", Quantity: 1, Total: dec("250.50")},
		{Name: "c", Quantity: 1, Total: dec("19.99")},
	}
	subtotal := items.Subtotal()
	require.True(t, subtotal.Equal(dec("370.49")), subtotal.String())

	totals := ComputeTotals(subtotal, dec("0.18"), dec("10.00"))

	assert.True(t, subtotal.Mul(dec("0.18")).Equal(dec("66.6882")))
	assert.Equal(t, "66.69", totals.Tax.StringFixed(2))
	assert.Equal(t, "427.18", totals.Total.StringFixed(2))
	assert.Equal(t, "10.00", totals.Discount.StringFixed(2))
}

func TestComputeTotals_RoundsHalfAwayFromZero(t *testing.T) {
	totals := ComputeTotals(dec("0.125"), decimal.Zero, decimal.Zero)
	assert.Equal(t, "0.13", totals.Total.StringFixed(2))

	totals = ComputeTotals(dec("2.675"), decimal.Zero, decimal.Zero)
	assert.Equal(t, "2.68", totals.Total.StringFixed(2))
}

func TestRateFromPercent(t *testing.T) {
	assert.True(t, RateFromPercent(dec("18")).Equal(dec("0.18")))
	assert.True(t, PercentFromRate(dec("0.05")).Equal(dec("5")))
}

func TestLineItemsWithTotals(t *testing.T) {
	items := LineItems{
		{Name: "keyboard", Quantity: 3, UnitPrice: dec("12.50")},
		{Name: "mouse", Quantity: 2, UnitPrice: dec("5"), Total: dec("9.00")},
	}.WithTotals()

	assert.Equal(t, "37.50", items[0].Total.StringFixed(2))
	assert.Equal(t, "9.00", items[1].Total.StringFixed(2), "supplied totals are kept")
	assert.Equal(t, 5, items.Quantity())
}

func TestProductUnmarshal_LegacyStockField(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Widget","stock":7}`), &p))
	assert.Equal(t, 7, p.Quantity)

	var q Product
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Widget","stock":7,"quantity":4}`), &q))
	assert.Equal(t, 4, q.Quantity, "quantity wins over the legacy field")
	assert.Equal(t, "Widget", q.Name)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"stock"`)
}

func TestProductIsLowStock(t *testing.T) {
	assert.True(t, Product{Quantity: 5, ReorderLevel: 5}.IsLowStock())
	assert.True(t, Product{Quantity: 0, ReorderLevel: 5}.IsLowStock())
	assert.False(t, Product{Quantity: 6, ReorderLevel: 5}.IsLowStock())
}

func TestInvoiceTransitions(t *testing.T) {
	assert.NoError(t, InvoiceDraft.TransitionTo(InvoiceSent))
	assert.NoError(t, InvoiceSent.TransitionTo(InvoiceOverdue))
	assert.NoError(t, InvoiceOverdue.TransitionTo(InvoicePaid))
	assert.ErrorIs(t, InvoicePaid.TransitionTo(InvoiceDraft), ErrInvalidTransition)
	assert.ErrorIs(t, InvoiceDraft.TransitionTo("Archived"), ErrUnknownStatus)
}

func TestPurchaseOrderTransitions(t *testing.T) {
	assert.NoError(t, PODraft.TransitionTo(POReceived))
	assert.NoError(t, POSent.TransitionTo(POConfirmed))
	assert.ErrorIs(t, POReceived.TransitionTo(PODraft), ErrInvalidTransition)
	assert.ErrorIs(t, POCancelled.TransitionTo(POSent), ErrInvalidTransition)
}

func TestSalesOrderTransitions(t *testing.T) {
	assert.NoError(t, SOPending.TransitionTo(SOCompleted))
	assert.ErrorIs(t, SOCompleted.TransitionTo(SOPending), ErrInvalidTransition)
}

func TestPackageTransitions(t *testing.T) {
	assert.NoError(t, PackagePending.TransitionTo(PackageInTransit))
	assert.NoError(t, PackageInTransit.TransitionTo(PackageInTransit), "progress events keep the status")
	assert.NoError(t, PackageFailed.TransitionTo(PackageOutForDelivery))
	assert.ErrorIs(t, PackageDelivered.TransitionTo(PackageDelivered), ErrInvalidTransition)
	assert.ErrorIs(t, PackageDelivered.TransitionTo(PackageInTransit), ErrInvalidTransition)
	assert.False(t, PackageStatus("Lost").Valid())
}

func TestValidRoleAndMovementType(t *testing.T) {
	assert.True(t, ValidRole(RoleManager))
	assert.False(t, ValidRole("root"))
	assert.True(t, ValidMovementType(MovementDamage))
	assert.False(t, ValidMovementType("theft"))
}

func TestLineItemsValidate(t *testing.T) {
	id := uint(4)
	assert.NoError(t, LineItems{{ProductID: &id, Quantity: 1}}.Validate(), "product lines may omit the name")
	assert.NoError(t, LineItems{{Name: "Service", Quantity: 2, UnitPrice: dec("0")}}.Validate())

	cases := map[string]LineItems{
		"empty":          {},
		"no name":        {{Quantity: 1}},
		"zero quantity":  {{Name: "a", Quantity: 0}},
		"negative price": {{Name: "a", Quantity: 1, UnitPrice: dec("-1")}},
		"negative total": {{Name: "a", Quantity: 1, Total: dec("-5")}},
	}
	for name, items := range cases {
		assert.ErrorIs(t, items.Validate(), ErrInvalidLineItem, name)
	}
}

func TestCheckTaxRate(t *testing.T) {
	assert.NoError(t, CheckTaxRate(dec("0")))
	assert.NoError(t, CheckTaxRate(dec("0.18")))
	assert.NoError(t, CheckTaxRate(dec("1")))
	assert.ErrorIs(t, CheckTaxRate(dec("18")), ErrInvalidTaxRate)
	assert.ErrorIs(t, CheckTaxRate(dec("-0.01")), ErrInvalidTaxRate)
}
