// Package export writes records out as CSV, XLSX and printable HTML.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"go-inventory-agent/internal/models"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func writeRows(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

var productHeader = []string{"ID", "SKU", "Name", "Category", "Unit", "Price", "Cost", "Quantity", "Reorder Level"}

// WriteProductsCSV emits the catalog as CSV.
func WriteProductsCSV(w io.Writer, products []models.Product) error {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.SKU,
			p.Name,
			p.Category,
			p.Unit,
			money(p.Price),
			money(p.Cost),
			strconv.Itoa(p.Quantity),
			strconv.Itoa(p.ReorderLevel),
		})
	}
	return writeRows(w, productHeader, rows)
}

// WriteBillsCSV emits one row per bill.
func WriteBillsCSV(w io.Writer, bills []models.Bill) error {
	rows := make([][]string, 0, len(bills))
	for _, b := range bills {
		rows = append(rows, []string{
			b.BillNumber,
			b.CreatedAt.Format(time.DateTime),
			b.CustomerName,
			strconv.Itoa(b.Items.Quantity()),
			money(b.Subtotal),
			money(b.Tax),
			money(b.Discount),
			money(b.Total),
		})
	}
	return writeRows(w, []string{"Bill Number", "Date", "Customer", "Items", "Subtotal", "Tax", "Discount", "Total"}, rows)
}

// WritePurchaseOrdersCSV emits one row per purchase order.
func WritePurchaseOrdersCSV(w io.Writer, pos []models.PurchaseOrder) error {
	rows := make([][]string, 0, len(pos))
	for _, po := range pos {
		expected := ""
		if po.ExpectedDelivery != nil {
			expected = po.ExpectedDelivery.Format(time.DateOnly)
		}
		rows = append(rows, []string{
			po.PONumber,
			po.OrderDate.Format(time.DateOnly),
			po.SupplierName,
			string(po.Status),
			expected,
			strconv.Itoa(po.Items.Quantity()),
			money(po.TotalAmount),
		})
	}
	return writeRows(w, []string{"PO Number", "Order Date", "Supplier", "Status", "Expected Delivery", "Units", "Total"}, rows)
}
