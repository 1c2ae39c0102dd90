package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go-inventory-agent/internal/analytics"
	"go-inventory-agent/internal/inventory"
	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/utils"
)

// Section caps for the assistant context.
const (
	catalogLimit        = 30
	recentSalesLimit    = 10
	analyticsOrderLimit = 100
	purchaseOrderLimit  = 10
	invoiceLimit        = 10
	billLimit           = 10
	supplierLimit       = 20
	searchResultLimit   = 10
	forecastPeriod      = 30 * 24 * time.Hour
)

type Catalog interface {
	ListProducts(ctx context.Context, f inventory.ProductFilter) ([]models.Product, error)
	LowStockItems(ctx context.Context) ([]models.Product, error)
	SearchProducts(ctx context.Context, term string) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
}

type OrderBook interface {
	ListSalesOrders(ctx context.Context, limit int) ([]models.SalesOrder, error)
	ListPurchaseOrders(ctx context.Context, limit int) ([]models.PurchaseOrder, error)
}

type Ledger interface {
	ListInvoices(ctx context.Context, limit int) ([]models.Invoice, error)
	ListBills(ctx context.Context, limit int) ([]models.Bill, error)
}

type SupplierList interface {
	List(ctx context.Context, limit int) ([]models.Supplier, error)
}

// ContextBuilder renders a plain-text snapshot of the business for the model.
type ContextBuilder struct {
	catalog   Catalog
	orders    OrderBook
	ledger    Ledger
	suppliers SupplierList
	now       func() time.Time
}

func NewContextBuilder(catalog Catalog, orders OrderBook, ledger Ledger, suppliers SupplierList) *ContextBuilder {
	return &ContextBuilder{catalog: catalog, orders: orders, ledger: ledger, suppliers: suppliers, now: time.Now}
}

// Build assembles every section. The first failing query aborts the build.
func (b *ContextBuilder) Build(ctx context.Context) (string, error) {
	var sb strings.Builder
	sb.WriteString("=== BUSINESS INTELLIGENCE CONTEXT ===\n\n")

	products, err := b.catalog.ListProducts(ctx, inventory.ProductFilter{})
	if err != nil {
		return "", fmt.Errorf("catalog: %w", err)
	}
	low, err := b.catalog.LowStockItems(ctx)
	if err != nil {
		return "", fmt.Errorf("low stock: %w", err)
	}
	writeInventory(&sb, products, low)

	orders, err := b.orders.ListSalesOrders(ctx, analyticsOrderLimit)
	if err != nil {
		return "", fmt.Errorf("sales orders: %w", err)
	}
	writeSalesOrders(&sb, orders)
	sb.WriteString(analytics.SalesSummaryText(analytics.SummarizeSales(orders, 5)))
	sb.WriteString("\n")
	sb.WriteString(analytics.ForecastText(analytics.DemandForecast(orders, products, forecastPeriod, b.now()), "30 days"))
	sb.WriteString("\n")

	pos, err := b.orders.ListPurchaseOrders(ctx, purchaseOrderLimit)
	if err != nil {
		return "", fmt.Errorf("purchase orders: %w", err)
	}
	writePurchaseOrders(&sb, pos)

	invoices, err := b.ledger.ListInvoices(ctx, invoiceLimit)
	if err != nil {
		return "", fmt.Errorf("invoices: %w", err)
	}
	writeInvoices(&sb, invoices)

	bills, err := b.ledger.ListBills(ctx, billLimit)
	if err != nil {
		return "", fmt.Errorf("bills: %w", err)
	}
	sb.WriteString(analytics.BillKPIText(analytics.SummarizeBills(bills)))
	sb.WriteString("\n")

	sups, err := b.suppliers.List(ctx, supplierLimit)
	if err != nil {
		return "", fmt.Errorf("suppliers: %w", err)
	}
	writeSuppliers(&sb, sups)

	return sb.String(), nil
}

func writeInventory(sb *strings.Builder, products, low []models.Product) {
	sb.WriteString("--- INVENTORY SUMMARY ---\n")
	fmt.Fprintf(sb, "Total SKUs: %d\n", len(products))
	fmt.Fprintf(sb, "Low Stock Items: %d\n", len(low))
	for _, p := range low {
		fmt.Fprintf(sb, "- %s (Qty: %d %s, Reorder Lvl: %d)\n", p.Name, p.Quantity, p.Unit, p.ReorderLevel)
	}

	sb.WriteString("\n--- PRODUCT CATALOG ---\n")
	for i, p := range products {
		if i == catalogLimit {
			fmt.Fprintf(sb, "... and %d more\n", len(products)-catalogLimit)
			break
		}
		fmt.Fprintf(sb, "- ID: %d | %s (SKU: %s, Price: %s, Cost: %s, Stock: %d)\n",
			p.ID, p.Name, p.SKU, utils.FormatCurrency(p.Price), utils.FormatCurrency(p.Cost), p.Quantity)
	}
	sb.WriteString("\n")
}

func writeSalesOrders(sb *strings.Builder, orders []models.SalesOrder) {
	sb.WriteString("--- RECENT SALES ORDERS ---\n")
	if len(orders) == 0 {
		sb.WriteString("None.\n\n")
		return
	}
	for i, o := range orders {
		if i == recentSalesLimit {
			break
		}
		fmt.Fprintf(sb, "- %s | %s | %s | %s | %s\n",
			o.OrderNumber, o.OrderDate.Format(time.DateOnly), o.CustomerName, utils.FormatCurrency(o.TotalAmount), o.Status)
		fmt.Fprintf(sb, "  Items: %s\n", itemList(o.Items))
	}
	sb.WriteString("\n")
}

func writePurchaseOrders(sb *strings.Builder, pos []models.PurchaseOrder) {
	sb.WriteString("--- RECENT PURCHASE ORDERS ---\n")
	if len(pos) == 0 {
		sb.WriteString("None.\n\n")
		return
	}
	for _, po := range pos {
		fmt.Fprintf(sb, "- %s | %s | %s | %s\n", po.PONumber, po.SupplierName, utils.FormatCurrency(po.TotalAmount), po.Status)
	}
	sb.WriteString("\n")
}

func writeInvoices(sb *strings.Builder, invoices []models.Invoice) {
	sb.WriteString("--- RECENT INVOICES ---\n")
	if len(invoices) == 0 {
		sb.WriteString("None.\n\n")
		return
	}
	for _, inv := range invoices {
		fmt.Fprintf(sb, "- %s | %s | %s | %s\n", inv.InvoiceNumber, inv.CustomerName, utils.FormatCurrency(inv.TotalAmount), inv.Status)
	}
	sb.WriteString("\n")
}

func writeSuppliers(sb *strings.Builder, sups []models.Supplier) {
	sb.WriteString("--- SUPPLIERS ---\n")
	if len(sups) == 0 {
		sb.WriteString("None on file.\n")
		return
	}
	for _, s := range sups {
		line := "- " + s.Name
		if s.ContactPerson != "" {
			line += " (contact: " + s.ContactPerson + ")"
		}
		if s.Email != "" {
			line += " <" + s.Email + ">"
		}
		sb.WriteString(line + "\n")
	}
}

func itemList(items models.LineItems) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

var searchIntent = regexp.MustCompile(`(?i)(?:find|search|where is|looking for|show me)\s+(.*)`)

// SearchTerm extracts what the user is looking for. Terms shorter than
// three or longer than 49 characters are not worth a catalog search.
func SearchTerm(message string) (string, bool) {
	term := strings.TrimSpace(message)
	if m := searchIntent.FindStringSubmatch(message); m != nil {
		term = strings.TrimSpace(m[1])
	}
	term = strings.TrimRight(term, "?!.")
	n := utf8.RuneCountInString(term)
	return term, n > 2 && n < 50
}

// searchSection returns the catalog matches for message, or "" when there is
// nothing to add.
func searchSection(ctx context.Context, catalog Catalog, message string) (string, error) {
	term, ok := SearchTerm(message)
	if !ok {
		return "", nil
	}
	found, err := catalog.SearchProducts(ctx, term)
	if err != nil || len(found) == 0 {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n--- SMART SEARCH RESULTS ('%s') ---\n", term)
	for i, p := range found {
		if i == searchResultLimit {
			break
		}
		fmt.Fprintf(&sb, "- ID: %d | %s (SKU: %s, Stock: %d, Price: %s)\n", p.ID, p.Name, p.SKU, p.Quantity, utils.FormatCurrency(p.Price))
	}
	return sb.String(), nil
}
