package orders

import (
	"context"
	"testing"
	"time"

	"go-inventory-agent/internal/inventory"
	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/suppliers"
	"go-inventory-agent/internal/testutil"
	"go-inventory-agent/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderDay = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	inv  *inventory.Service
	sups *suppliers.Service
	svc  *Service
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	inv := inventory.NewService(db, nil)
	sups := suppliers.NewService(db, nil)
	opts = append([]Option{WithClock(func() time.Time { return orderDay })}, opts...)
	return fixture{inv: inv, sups: sups, svc: NewService(db, nil, inv, sups, opts...)}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSalesOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	so, err := f.svc.CreateSalesOrder(ctx, SalesOrderInput{
		CustomerName: "Globex",
		Items: models.LineItems{
			{Name: "Crate", Quantity: 2, UnitPrice: dec("12.345")},
			{Name: "Pallet", Quantity: 1, UnitPrice: dec("40"), Total: dec("40")},
		},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^SO-\d{8}-\d{4}$`, so.OrderNumber)
	assert.Equal(t, models.SOPending, so.Status)
	assert.Equal(t, "64.69", so.TotalAmount.StringFixed(2))
	assert.True(t, so.OrderDate.Equal(orderDay))

	_, err = f.svc.CreateSalesOrder(ctx, SalesOrderInput{OrderNumber: so.OrderNumber, CustomerName: "x",
		Items: models.LineItems{{Name: "a", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrDuplicateNumber)

	_, err = f.svc.CreateSalesOrder(ctx, SalesOrderInput{Items: models.LineItems{{Name: "a", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrCustomerRequired)

	done, err := f.svc.UpdateSalesOrderStatus(ctx, so.ID, models.SOCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.SOCompleted, done.Status)

	_, err = f.svc.UpdateSalesOrderStatus(ctx, so.ID, models.SOPending)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = f.svc.GetSalesOrder(ctx, 999)
	assert.ErrorIs(t, err, ErrSalesOrderNotFound)

	list, err := f.svc.ListSalesOrders(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreatePurchaseOrder_ResolvesSupplierByName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	acme, err := f.sups.Create(ctx, models.Supplier{Name: "Acme Corp"})
	require.NoError(t, err)

	po, err := f.svc.CreatePurchaseOrder(ctx, PurchaseOrderInput{
		SupplierName: "acme corp",
		Items:        models.LineItems{{Name: "Bolt", Quantity: 100, UnitPrice: dec("0.25")}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^PO-\d{8}-\d{4}$`, po.PONumber)
	require.NotNil(t, po.SupplierID)
	assert.Equal(t, acme.ID, *po.SupplierID)
	assert.Equal(t, "Acme Corp", po.SupplierName)
	assert.Equal(t, models.PODraft, po.Status)
	assert.Equal(t, "25.00", po.TotalAmount.StringFixed(2))

	adhoc, err := f.svc.CreatePurchaseOrder(ctx, PurchaseOrderInput{
		SupplierName: "Corner Shop",
		Items:        models.LineItems{{Name: "Tape", Quantity: 1, UnitPrice: dec("3")}},
	})
	require.NoError(t, err)
	assert.Nil(t, adhoc.SupplierID)
	assert.Equal(t, "Corner Shop", adhoc.SupplierName)

	_, err = f.svc.CreatePurchaseOrder(ctx, PurchaseOrderInput{Items: models.LineItems{{Name: "x", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrSupplierRequired)

	_, err = f.svc.CreatePurchaseOrder(ctx, PurchaseOrderInput{SupplierName: "x", Status: "Shipped",
		Items: models.LineItems{{Name: "x", Quantity: 1}}})
	assert.ErrorIs(t, err, models.ErrUnknownStatus)

	between, err := f.svc.PurchaseOrdersBetween(ctx, orderDay, orderDay.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, between, 2)
}

func TestReceivingPurchaseOrderBooksStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithNumberFuncs(nil, utils.Sequence("PO-20250301-0001")))
	bolt, err := f.inv.CreateProduct(ctx, inventory.ProductInput{Name: "Bolt", Quantity: 4})
	require.NoError(t, err)

	po, err := f.svc.CreatePurchaseOrder(ctx, PurchaseOrderInput{
		SupplierName: "Acme",
		Items: models.LineItems{
			{ProductID: &bolt.ID, Name: "Bolt", Quantity: 50, UnitPrice: dec("0.25")},
			{Name: "Freight", Quantity: 1, UnitPrice: dec("10")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-20250301-0001", po.PONumber)

	_, err = f.svc.UpdatePurchaseOrderStatus(ctx, po.ID, models.POSent)
	require.NoError(t, err)
	got, err := f.inv.GetProduct(ctx, bolt.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity, "sending does not move stock")

	received, err := f.svc.UpdatePurchaseOrderStatus(ctx, po.ID, models.POReceived)
	require.NoError(t, err)
	assert.Equal(t, models.POReceived, received.Status)

	got, err = f.inv.GetProduct(ctx, bolt.ID)
	require.NoError(t, err)
	assert.Equal(t, 54, got.Quantity)

	movements, err := f.inv.StockMovements(ctx, &bolt.ID, 1)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementPurchase, movements[0].MovementType)
	assert.Equal(t, "PO PO-20250301-0001", movements[0].Notes)

	_, err = f.svc.UpdatePurchaseOrderStatus(ctx, po.ID, models.POReceived)
	assert.ErrorIs(t, err, models.ErrInvalidTransition, "stock is received once")
}

func TestReceivingPurchaseOrderSkipsDeletedProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bolt, err := f.inv.CreateProduct(ctx, inventory.ProductInput{Name: "Bolt", Quantity: 4})
	require.NoError(t, err)
	nut, err := f.inv.CreateProduct(ctx, inventory.ProductInput{Name: "Nut", Quantity: 4})
	require.NoError(t, err)

	po, err := f.svc.CreatePurchaseOrder(ctx, PurchaseOrderInput{
		SupplierName: "Acme",
		Items: models.LineItems{
			{ProductID: &bolt.ID, Name: "Bolt", Quantity: 10, UnitPrice: dec("0.25")},
			{ProductID: &nut.ID, Name: "Nut", Quantity: 20, UnitPrice: dec("0.10")},
		},
	})
	require.NoError(t, err)
	require.NoError(t, f.inv.DeleteProduct(ctx, bolt.ID))

	received, err := f.svc.UpdatePurchaseOrderStatus(ctx, po.ID, models.POReceived)
	require.NoError(t, err)
	assert.Equal(t, models.POReceived, received.Status)
	assert.Len(t, received.Items, 2, "the document keeps the stale line")

	got, err := f.inv.GetProduct(ctx, nut.ID)
	require.NoError(t, err)
	assert.Equal(t, 24, got.Quantity)

	movements, err := f.inv.StockMovements(ctx, &bolt.ID, 0)
	require.NoError(t, err)
	for _, m := range movements {
		assert.NotEqual(t, models.MovementPurchase, m.MovementType)
	}
}
