package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/metrics"
	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/orders"
	"go-inventory-agent/internal/session"

	"go.uber.org/zap"
)

const (
	NotConfiguredReply = "Gemini API key not configured. Please add GEMINI_API_KEY to the server environment."
	actionDoneReply    = "Action processed."
	aiNotes            = "Generated by AI Assistant"
)

var (
	ErrNoPendingAction = errors.New("no pending action")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrSupplierMissing = errors.New("a supplier name is required")
)

// fallbackSuppliers are offered when the directory is empty.
var fallbackSuppliers = []string{"Generic Supplier", "Local Vendor"}

// IsPlaceholderSupplier reports whether name is a stand-in the model uses
// when it does not know the supplier.
func IsPlaceholderSupplier(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UNKNOWN", "UNKNOWN_SUPPLIER", "PLEASE SPECIFY SUPPLIER":
		return true
	}
	return false
}

type POCreator interface {
	CreatePurchaseOrder(ctx context.Context, in orders.PurchaseOrderInput) (*models.PurchaseOrder, error)
}

// PendingPO asks the user which supplier a drafted order should go to.
type PendingPO struct {
	Items           models.LineItems `json:"items"`
	SupplierChoices []string         `json:"supplier_choices"`
}

// Turn is the outcome of one chat message.
type Turn struct {
	Reply         string                `json:"reply"`
	Display       string                `json:"display"`
	Chart         *Chart                `json:"chart,omitempty"`
	Email         *DraftEmail           `json:"email,omitempty"`
	Pending       *PendingPO            `json:"pending,omitempty"`
	PurchaseOrder *models.PurchaseOrder `json:"purchase_order,omitempty"`
	ActionError   string                `json:"action_error,omitempty"`
	Compression   *Compression          `json:"compression,omitempty"`
}

// Bridge runs chat turns against the model and carries out the actions it asks for.
type Bridge struct {
	model      Model
	builder    *ContextBuilder
	catalog    Catalog
	compressor *Compressor
	pos        POCreator
	suppliers  SupplierList
	log        *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

type Option func(*Bridge)

func WithMetrics(m *metrics.Metrics) Option { return func(b *Bridge) { b.metrics = m } }

func WithCompressor(c *Compressor) Option { return func(b *Bridge) { b.compressor = c } }

func WithClock(now func() time.Time) Option {
	return func(b *Bridge) {
		b.now = now
		b.builder.now = now
	}
}

// NewBridge wires the assistant. A nil model answers every message with
// NotConfiguredReply.
func NewBridge(model Model, catalog Catalog, book OrderBook, ledger Ledger, suppliers SupplierList, pos POCreator, log *zap.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		model:     model,
		builder:   NewContextBuilder(catalog, book, ledger, suppliers),
		catalog:   catalog,
		pos:       pos,
		suppliers: suppliers,
		log:       logger.OrNop(log),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Chat answers message in one call.
func (b *Bridge) Chat(ctx context.Context, sess *session.Session, message string) (*Turn, error) {
	return b.run(ctx, sess, message, "generate", func(system, user string) (string, error) {
		return b.model.Generate(ctx, system, user)
	})
}

// ChatStream forwards reply fragments to onChunk as they arrive. Directives
// are only acted on once the reply is complete.
func (b *Bridge) ChatStream(ctx context.Context, sess *session.Session, message string, onChunk func(string) error) (*Turn, error) {
	return b.run(ctx, sess, message, "stream", func(system, user string) (string, error) {
		return b.model.Stream(ctx, system, user, onChunk)
	})
}

func (b *Bridge) run(ctx context.Context, sess *session.Session, message, mode string, call func(system, user string) (string, error)) (*Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	sess.AppendMessage("user", message, b.now())

	if b.model == nil {
		b.metrics.LLMRequest(mode, "not_configured")
		return b.reply(sess, NotConfiguredReply), nil
	}

	bizContext, err := b.builder.Build(ctx)
	if err != nil {
		b.log.Warn("assistant context incomplete", zap.Error(err))
		bizContext = "Business data is temporarily unavailable."
	}
	search, err := searchSection(ctx, b.catalog, message)
	if err != nil {
		b.log.Warn("assistant search failed", zap.Error(err))
	}
	bizContext += search

	comp := b.compressor.Compress(ctx, bizContext)
	system := systemPrompt(comp.Text, b.now())
	user := "USER REQUEST: " + message + "\n\nOPERATIONS MANAGER RESPONSE:"

	raw, err := call(system, user)
	if err != nil {
		if ctx.Err() != nil {
			b.metrics.LLMRequest(mode, "cancelled")
			return nil, ctx.Err()
		}
		b.log.Error("assistant request failed", zap.String("mode", mode), zap.Error(err))
		b.metrics.LLMRequest(mode, "error")
		return b.reply(sess, "Error: "+err.Error()), nil
	}
	b.metrics.LLMRequest(mode, "ok")

	turn := b.reply(sess, raw)
	if comp.Applied {
		turn.Compression = &comp
	}
	if d, ok := ParseDirective(raw); ok {
		b.dispatch(ctx, sess, d, turn)
	}
	return turn, nil
}

// reply records raw as the assistant's message and prepares it for display.
func (b *Bridge) reply(sess *session.Session, raw string) *Turn {
	sess.AppendMessage("assistant", raw, b.now())
	display := StripDirective(raw)
	if display == "" {
		display = actionDoneReply
	}
	return &Turn{Reply: raw, Display: display}
}

func (b *Bridge) dispatch(ctx context.Context, sess *session.Session, d *Directive, turn *Turn) {
	if d.Chart != nil {
		turn.Chart = d.Chart
		return
	}
	switch d.Action.Name {
	case ActionDraftEmail:
		turn.Email = d.Action.Email
		b.metrics.Action(ActionDraftEmail, "drafted")
	case ActionCreatePO:
		po := d.Action.PO
		if IsPlaceholderSupplier(po.SupplierName) {
			turn.Pending = b.hold(ctx, sess, d.Action)
			b.metrics.Action(ActionCreatePO, "pending")
			return
		}
		created, err := b.createPO(ctx, sess, po, po.SupplierName)
		if err != nil {
			b.log.Warn("assistant purchase order failed", zap.Error(err))
			b.metrics.Action(ActionCreatePO, "failed")
			turn.ActionError = "Could not create the purchase order: " + err.Error()
			return
		}
		b.metrics.Action(ActionCreatePO, "created")
		turn.PurchaseOrder = created
	}
}

// hold parks a create_po until the user picks a supplier.
func (b *Bridge) hold(ctx context.Context, sess *session.Session, a *Action) *PendingPO {
	sess.Pending = &session.PendingAction{Action: a.Name, Data: a.Data, CreatedAt: b.now()}

	choices := fallbackSuppliers
	if sups, err := b.suppliers.List(ctx, 0); err != nil {
		b.log.Warn("listing suppliers for pending order", zap.Error(err))
	} else if len(sups) > 0 {
		choices = make([]string, 0, len(sups))
		for _, s := range sups {
			choices = append(choices, s.Name)
		}
	}
	return &PendingPO{Items: a.PO.LineItems(), SupplierChoices: choices}
}

func (b *Bridge) createPO(ctx context.Context, sess *session.Session, po *CreatePO, supplier string) (*models.PurchaseOrder, error) {
	items := po.LineItems()
	for i := range items {
		id := items[i].ProductID
		if id == nil {
			continue
		}
		if _, err := b.catalog.GetProduct(ctx, *id); err != nil {
			b.log.Debug("dropping unknown product reference", zap.Uint("product_id", *id), zap.Error(err))
			items[i].ProductID = nil
		}
	}
	in := orders.PurchaseOrderInput{
		SupplierName: strings.TrimSpace(supplier),
		Items:        items,
		Status:       models.PODraft,
		Notes:        aiNotes,
	}
	if sess.UserID != 0 {
		uid := sess.UserID
		in.CreatedBy = &uid
	}
	return b.pos.CreatePurchaseOrder(ctx, in)
}

// ResolvePending completes a parked create_po with the supplier the user chose.
func (b *Bridge) ResolvePending(ctx context.Context, sess *session.Session, supplier string) (*models.PurchaseOrder, error) {
	if sess.Pending == nil || sess.Pending.Action != ActionCreatePO {
		return nil, ErrNoPendingAction
	}
	if IsPlaceholderSupplier(supplier) {
		return nil, ErrSupplierMissing
	}
	var po CreatePO
	if err := json.Unmarshal(sess.Pending.Data, &po); err != nil {
		sess.Pending = nil
		return nil, fmt.Errorf("pending action is corrupt: %w", err)
	}
	created, err := b.createPO(ctx, sess, &po, supplier)
	if err != nil {
		b.metrics.Action(ActionCreatePO, "failed")
		return nil, err
	}
	b.metrics.Action(ActionCreatePO, "created")
	sess.Pending = nil
	sess.AppendMessage("assistant",
		fmt.Sprintf("Action Complete: Created Purchase Order %s for **%s**.", created.PONumber, created.SupplierName), b.now())
	return created, nil
}

// CancelPending drops a parked action.
func (b *Bridge) CancelPending(sess *session.Session) error {
	if sess.Pending == nil {
		return ErrNoPendingAction
	}
	b.metrics.Action(sess.Pending.Action, "cancelled")
	sess.Pending = nil
	return nil
}
