package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"go-inventory-agent/internal/export"
	"go-inventory-agent/internal/inventory"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) attachment(c *gin.Context, name, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, body)
}

func (h *Handler) ExportProductsCSV(c *gin.Context) {
	products, err := h.Inventory.ListProducts(c.Request.Context(), inventory.ProductFilter{Category: c.Query("category")})
	if err != nil {
		h.respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteProductsCSV(&buf, products); err != nil {
		h.respondError(c, err)
		return
	}
	h.attachment(c, "products.csv", "text/csv", buf.Bytes())
}

func (h *Handler) ExportProductsXLSX(c *gin.Context) {
	products, err := h.Inventory.ListProducts(c.Request.Context(), inventory.ProductFilter{Category: c.Query("category")})
	if err != nil {
		h.respondError(c, err)
		return
	}
	data, err := export.ProductsXLSX(products)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.attachment(c, "products.xlsx", xlsxContentType, data)
}

// ExportBillsCSV writes the bills of ?from=&to= (default: last 30 days).
func (h *Handler) ExportBillsCSV(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}
	bills, err := h.Billing.BillsBetween(c.Request.Context(), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteBillsCSV(&buf, bills); err != nil {
		h.respondError(c, err)
		return
	}
	h.attachment(c, "bills.csv", "text/csv", buf.Bytes())
}

func (h *Handler) ExportPurchaseOrdersCSV(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}
	pos, err := h.Orders.PurchaseOrdersBetween(c.Request.Context(), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WritePurchaseOrdersCSV(&buf, pos); err != nil {
		h.respondError(c, err)
		return
	}
	h.attachment(c, "purchase_orders.csv", "text/csv", buf.Bytes())
}
