package handlers

import (
	"net/http"
	"time"

	"go-inventory-agent/internal/analytics"
	"go-inventory-agent/internal/inventory"

	"github.com/gin-gonic/gin"
)

// analyticsWindow is how many recent sales orders feed the reports.
const analyticsWindow = 100

// GetSalesReport combines sales order analytics with point-of-sale KPIs for
// the requested date range.
func (h *Handler) GetSalesReport(c *gin.Context) {
	ctx := c.Request.Context()
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	orders, err := h.Orders.ListSalesOrders(ctx, analyticsWindow)
	if err != nil {
		h.respondError(c, err)
		return
	}
	bills, err := h.Billing.BillsBetween(ctx, from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	total, err := h.Billing.TotalSales(ctx, from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sales_orders":   analytics.SummarizeSales(orders, 5),
		"bills":          analytics.SummarizeBills(bills),
		"revenue_by_day": analytics.RevenueByDay(bills),
		"total_sales":    total,
		"from":           from.Format(time.DateOnly),
		"to":             to.AddDate(0, 0, -1).Format(time.DateOnly),
	})
}

// GetForecast projects demand over ?days= (default 30) from recent sales orders.
func (h *Handler) GetForecast(c *gin.Context) {
	ctx := c.Request.Context()
	days := queryInt(c, "days", 30)
	if days <= 0 || days > 365 {
		badRequest(c, "days must be between 1 and 365")
		return
	}

	orders, err := h.Orders.ListSalesOrders(ctx, analyticsWindow)
	if err != nil {
		h.respondError(c, err)
		return
	}
	products, err := h.Inventory.ListProducts(ctx, inventory.ProductFilter{})
	if err != nil {
		h.respondError(c, err)
		return
	}
	forecast := analytics.DemandForecast(orders, products, time.Duration(days)*24*time.Hour, h.now())
	c.JSON(http.StatusOK, gin.H{"days": days, "forecast": forecast})
}

// GetStockValuation prices stock on hand at cost, grouped by category.
func (h *Handler) GetStockValuation(c *gin.Context) {
	products, err := h.Inventory.ListProducts(c.Request.Context(), inventory.ProductFilter{})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics.StockValuation(products))
}
