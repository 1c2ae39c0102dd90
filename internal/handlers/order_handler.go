package handlers

import (
	"net/http"

	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/orders"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateSalesOrder(c *gin.Context) {
	var in orders.SalesOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	in.CreatedBy = currentUser(c)
	so, err := h.Orders.CreateSalesOrder(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, so)
}

func (h *Handler) GetSalesOrders(c *gin.Context) {
	list, err := h.Orders.ListSalesOrders(c.Request.Context(), queryInt(c, "limit", 100))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetSalesOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	so, err := h.Orders.GetSalesOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, so)
}

func (h *Handler) UpdateSalesOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	so, err := h.Orders.UpdateSalesOrderStatus(c.Request.Context(), id, models.SalesOrderStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, so)
}

func (h *Handler) CreatePurchaseOrder(c *gin.Context) {
	var in orders.PurchaseOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	in.CreatedBy = currentUser(c)
	po, err := h.Orders.CreatePurchaseOrder(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, po)
}

func (h *Handler) GetPurchaseOrders(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		list []models.PurchaseOrder
		err  error
	)
	if c.Query("from") != "" || c.Query("to") != "" {
		from, to, ok := h.dateRange(c)
		if !ok {
			return
		}
		list, err = h.Orders.PurchaseOrdersBetween(ctx, from, to)
	} else {
		list, err = h.Orders.ListPurchaseOrders(ctx, queryInt(c, "limit", 100))
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetPurchaseOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	po, err := h.Orders.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// UpdatePurchaseOrderStatus moves an order along; Received books the stock in.
func (h *Handler) UpdatePurchaseOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	po, err := h.Orders.UpdatePurchaseOrderStatus(c.Request.Context(), id, models.PurchaseOrderStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}
