package handlers

import (
	"net/http"
	"strings"
	"time"

	"go-inventory-agent/internal/billing"
	"go-inventory-agent/internal/export"
	"go-inventory-agent/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// percentToRate converts the percentage users type (18) into the fraction
// the services store (0.18).
func percentToRate(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	r := models.RateFromPercent(*p)
	return &r
}

type BillRequest struct {
	CustomerName    string           `json:"customer_name"`
	CustomerContact string           `json:"customer_contact"`
	Items           models.LineItems `json:"items" binding:"required"`
	TaxPercent      *decimal.Decimal `json:"tax_percent"`
	Discount        decimal.Decimal  `json:"discount"`
}

// CreateBill settles a point-of-sale cart. A short product rejects the whole bill.
func (h *Handler) CreateBill(c *gin.Context) {
	var req BillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	bill, err := h.Billing.CreateBill(c.Request.Context(), billing.BillInput{
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		Items:           req.Items,
		TaxRate:         percentToRate(req.TaxPercent),
		Discount:        req.Discount,
		CreatedBy:       currentUser(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

// GetBills lists recent bills; ?q= searches, ?from=&to= limits by date.
func (h *Handler) GetBills(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		bills []models.Bill
		err   error
	)
	switch {
	case strings.TrimSpace(c.Query("q")) != "":
		bills, err = h.Billing.SearchBills(ctx, c.Query("q"))
	case c.Query("from") != "" || c.Query("to") != "":
		from, to, ok := h.dateRange(c)
		if !ok {
			return
		}
		bills, err = h.Billing.BillsBetween(ctx, from, to)
	default:
		bills, err = h.Billing.ListBills(ctx, queryInt(c, "limit", 100))
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bills)
}

func (h *Handler) GetBill(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	bill, err := h.Billing.GetBill(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// PrintBill renders a printable receipt.
func (h *Handler) PrintBill(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	bill, err := h.Billing.GetBill(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.RenderBill(c.Writer, bill); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) DeleteBill(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Billing.DeleteBill(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bill deleted successfully"})
}

type InvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number"`
	CustomerName  string               `json:"customer_name"`
	InvoiceDate   *time.Time           `json:"invoice_date"`
	DueDate       *time.Time           `json:"due_date"`
	Items         models.LineItems     `json:"items"`
	TaxPercent    *decimal.Decimal     `json:"tax_percent"`
	Status        models.InvoiceStatus `json:"status"`
	Notes         string               `json:"notes"`
}

func (req InvoiceRequest) input(c *gin.Context) billing.InvoiceInput {
	in := billing.InvoiceInput{
		InvoiceNumber: req.InvoiceNumber,
		CustomerName:  req.CustomerName,
		InvoiceDate:   req.InvoiceDate,
		DueDate:       req.DueDate,
		Items:         req.Items,
		Status:        req.Status,
		Notes:         req.Notes,
		CreatedBy:     currentUser(c),
	}
	if r := percentToRate(req.TaxPercent); r != nil {
		in.TaxRate = *r
	}
	return in
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	inv, err := h.Billing.CreateInvoice(c.Request.Context(), req.input(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// InvoiceSalesOrder raises an invoice for a sales order, copying its lines
// and customer. The body may set tax, dates and notes.
func (h *Handler) InvoiceSalesOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req InvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
	}
	inv, err := h.Billing.CreateInvoiceFromSalesOrder(c.Request.Context(), id, req.input(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) GetInvoices(c *gin.Context) {
	invoices, err := h.Billing.ListInvoices(c.Request.Context(), queryInt(c, "limit", 100))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	inv, err := h.Billing.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

type StatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Location string `json:"location"`
	Details  string `json:"details"`
}

func (h *Handler) UpdateInvoiceStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	inv, err := h.Billing.UpdateInvoiceStatus(c.Request.Context(), id, models.InvoiceStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
