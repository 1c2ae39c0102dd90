package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go-inventory-agent/internal/billing"
	"go-inventory-agent/internal/inventory"
	"go-inventory-agent/internal/metrics"
	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/orders"
	"go-inventory-agent/internal/session"
	"go-inventory-agent/internal/suppliers"
	"go-inventory-agent/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chatDay = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// scriptedModel replies with a fixed text and remembers what it was asked.
type scriptedModel struct {
	reply  string
	err    error
	system string
	user   string
}

func (m *scriptedModel) Generate(_ context.Context, system, user string) (string, error) {
	m.system, m.user = system, user
	return m.reply, m.err
}

func (m *scriptedModel) Stream(ctx context.Context, system, user string, onChunk func(string) error) (string, error) {
	if _, err := m.Generate(ctx, system, user); err != nil {
		return "", err
	}
	for _, word := range strings.SplitAfter(m.reply, " ") {
		if err := onChunk(word); err != nil {
			return "", err
		}
	}
	return m.reply, nil
}

type fixture struct {
	inv    *inventory.Service
	sups   *suppliers.Service
	orders *orders.Service
	reg    *prometheus.Registry
	model  *scriptedModel
	bridge *Bridge
}

func newFixture(t *testing.T, reply string) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clock := func() time.Time { return chatDay }
	inv := inventory.NewService(db, nil)
	sups := suppliers.NewService(db, nil)
	ord := orders.NewService(db, nil, inv, sups, orders.WithClock(clock))
	bill := billing.NewService(db, nil, inv, billing.WithClock(clock))
	reg := prometheus.NewRegistry()
	model := &scriptedModel{reply: reply}
	b := NewBridge(model, inv, ord, bill, sups, ord, nil, WithMetrics(metrics.New(reg)), WithClock(clock))
	return fixture{inv: inv, sups: sups, orders: ord, reg: reg, model: model, bridge: b}
}

func (f fixture) product(t *testing.T, name string, qty, reorder int) *models.Product {
	t.Helper()
	p, err := f.inv.CreateProduct(context.Background(), inventory.ProductInput{
		Name: name, Quantity: qty, ReorderLevel: reorder, Unit: "pcs",
		Price: decimal.RequireFromString("10"), Cost: decimal.RequireFromString("6"),
	})
	require.NoError(t, err)
	return p
}

func TestChat_NotConfigured(t *testing.T) {
	f := newFixture(t, "")
	b := NewBridge(nil, f.inv, f.orders, nil, f.sups, f.orders, nil)
	sess := &session.Session{Token: "t"}

	turn, err := b.Chat(context.Background(), sess, "hello")
	require.NoError(t, err)
	assert.Equal(t, NotConfiguredReply, turn.Display)
	require.Len(t, sess.History, 2)
	assert.Equal(t, "user", sess.History[0].Role)
}

func TestChat_BlankMessage(t *testing.T) {
	f := newFixture(t, "unused")
	sess := &session.Session{Token: "t"}

	_, err := f.bridge.Chat(context.Background(), sess, " \t\n")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, sess.History)
	assert.Empty(t, f.model.user, "the model is not called")
}

func TestChat_BuildsContextAndSearches(t *testing.T) {
	f := newFixture(t, "You are low on staplers.")
	f.product(t, "Stapler", 2, 5)
	f.product(t, "Red Widget", 40, 5)
	_, err := f.sups.Create(context.Background(), models.Supplier{Name: "Acme", ContactPerson: "Wile"})
	require.NoError(t, err)

	turn, err := f.bridge.Chat(context.Background(), &session.Session{}, "find red widget")
	require.NoError(t, err)
	assert.Equal(t, "You are low on staplers.", turn.Display)

	sys := f.model.system
	assert.Contains(t, sys, "=== BUSINESS INTELLIGENCE CONTEXT ===")
	assert.Contains(t, sys, "Total SKUs: 2")
	assert.Contains(t, sys, "- Stapler (Qty: 2 pcs, Reorder Lvl: 5)")
	assert.Contains(t, sys, "--- SMART SEARCH RESULTS ('red widget') ---")
	assert.Contains(t, sys, "- Acme (contact: Wile)")
	assert.Contains(t, sys, "Saturday, 01 March 2025")
	assert.Equal(t, "USER REQUEST: find red widget\n\nOPERATIONS MANAGER RESPONSE:", f.model.user)
}

func TestChat_ModelError(t *testing.T) {
	f := newFixture(t, "")
	f.model.err = errors.New("quota exceeded")
	sess := &session.Session{}

	turn, err := f.bridge.Chat(context.Background(), sess, "hi there")
	require.NoError(t, err)
	assert.Equal(t, "Error: quota exceeded", turn.Display)
	assert.Equal(t, "Error: quota exceeded", sess.History[1].Content)
}

func TestChat_CreatesPurchaseOrder(t *testing.T) {
	widget := "```json\n" +
		`{"type":"action","action":"create_po","data":{"supplier_name":"Acme","items":[` +
		`{"product_id":PID,"name":"Widget","quantity":10,"price":2.5},` +
		`{"product_id":999,"name":"Ghost","quantity":1,"price":1}]}}` +
		"\n```"
	f := newFixture(t, "")
	p := f.product(t, "Widget", 1, 5)
	f.model.reply = strings.Replace(widget, "PID", decimal.NewFromInt(int64(p.ID)).String(), 1)

	turn, err := f.bridge.Chat(context.Background(), &session.Session{UserID: 3}, "reorder widgets from Acme")
	require.NoError(t, err)
	assert.Equal(t, actionDoneReply, turn.Display)
	require.NotNil(t, turn.PurchaseOrder)

	po := turn.PurchaseOrder
	assert.Equal(t, models.PODraft, po.Status)
	assert.Equal(t, "Acme", po.SupplierName)
	assert.Equal(t, aiNotes, po.Notes)
	assert.Equal(t, "26.00", po.TotalAmount.StringFixed(2))
	require.NotNil(t, po.CreatedBy)
	assert.Equal(t, uint(3), *po.CreatedBy)
	require.NotNil(t, po.Items[0].ProductID)
	assert.Equal(t, p.ID, *po.Items[0].ProductID)
	assert.Nil(t, po.Items[1].ProductID, "unknown product ids are not linked")

	expected := `
# HELP assistant_actions_total Action directives found in assistant replies.
# TYPE assistant_actions_total counter
assistant_actions_total{action="create_po",outcome="created"} 1
`
	assert.NoError(t, promtest.GatherAndCompare(f.reg, strings.NewReader(expected), "assistant_actions_total"))
}

func TestChat_PendingSupplier(t *testing.T) {
	reply := "I need a supplier.\n```json\n" +
		`{"type":"action","action":"create_po","data":{"supplier_name":"PLEASE SPECIFY SUPPLIER","items":[{"name":"Tape","quantity":4,"price":3}]}}` +
		"\n```"
	f := newFixture(t, reply)
	ctx := context.Background()
	sess := &session.Session{}

	turn, err := f.bridge.Chat(ctx, sess, "order more tape")
	require.NoError(t, err)
	assert.Equal(t, "I need a supplier.", turn.Display)
	require.NotNil(t, turn.Pending)
	assert.Equal(t, fallbackSuppliers, turn.Pending.SupplierChoices)
	assert.Nil(t, turn.PurchaseOrder)
	require.NotNil(t, sess.Pending)

	pos, err := f.orders.ListPurchaseOrders(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pos)

	_, err = f.bridge.ResolvePending(ctx, sess, "unknown")
	assert.ErrorIs(t, err, ErrSupplierMissing)

	po, err := f.bridge.ResolvePending(ctx, sess, "Local Vendor")
	require.NoError(t, err)
	assert.Equal(t, "Local Vendor", po.SupplierName)
	assert.Equal(t, "12.00", po.TotalAmount.StringFixed(2))
	assert.Nil(t, sess.Pending)
	last := sess.History[len(sess.History)-1]
	assert.Equal(t, "Action Complete: Created Purchase Order "+po.PONumber+" for **Local Vendor**.", last.Content)

	_, err = f.bridge.ResolvePending(ctx, sess, "Acme")
	assert.ErrorIs(t, err, ErrNoPendingAction)
}

func TestChat_PendingChoicesFromDirectory(t *testing.T) {
	reply := "```json\n" +
		`{"type":"action","action":"create_po","data":{"supplier_name":"","items":[{"name":"Tape","quantity":1,"price":3}]}}` +
		"\n```"
	f := newFixture(t, reply)
	ctx := context.Background()
	for _, name := range []string{"Zeta Supply", "Acme"} {
		_, err := f.sups.Create(ctx, models.Supplier{Name: name})
		require.NoError(t, err)
	}
	sess := &session.Session{}

	turn, err := f.bridge.Chat(ctx, sess, "order tape")
	require.NoError(t, err)
	require.NotNil(t, turn.Pending)
	assert.Equal(t, []string{"Acme", "Zeta Supply"}, turn.Pending.SupplierChoices)

	require.NoError(t, f.bridge.CancelPending(sess))
	assert.ErrorIs(t, f.bridge.CancelPending(sess), ErrNoPendingAction)
}

func TestChatStream_ForwardsChunks(t *testing.T) {
	reply := "Sales are up.\n```json\n{\"type\":\"bar\",\"data\":{\"Mon\":3,\"Tue\":5},\"title\":\"Orders\"}\n```"
	f := newFixture(t, reply)

	var got strings.Builder
	turn, err := f.bridge.ChatStream(context.Background(), &session.Session{}, "how are sales", func(chunk string) error {
		got.WriteString(chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, reply, got.String())
	assert.Equal(t, "Sales are up.", turn.Display)
	require.NotNil(t, turn.Chart)
	assert.Equal(t, "bar", turn.Chart.Type)

	expected := `
# HELP assistant_llm_requests_total Calls made to the language model.
# TYPE assistant_llm_requests_total counter
assistant_llm_requests_total{mode="stream",outcome="ok"} 1
`
	assert.NoError(t, promtest.GatherAndCompare(f.reg, strings.NewReader(expected), "assistant_llm_requests_total"))
}
