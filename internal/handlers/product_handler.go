package handlers

import (
	"net/http"
	"strings"

	"go-inventory-agent/internal/inventory"
	"go-inventory-agent/internal/models"

	"github.com/gin-gonic/gin"
)

// GetProducts lists the catalog. ?q= searches, ?category= filters.
func (h *Handler) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		products []models.Product
		err      error
	)
	q := strings.TrimSpace(c.Query("q"))
	category := c.Query("category")
	limit := queryInt(c, "limit", 0)
	switch {
	case q != "":
		products, err = h.Inventory.SearchProducts(ctx, q)
	case category != "" && limit <= 0:
		products, err = h.Inventory.ProductsByCategory(ctx, category)
	default:
		products, err = h.Inventory.ListProducts(ctx, inventory.ProductFilter{Category: category, Limit: limit})
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.Inventory.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ScanProduct looks a product up by its SKU, as a barcode scanner would.
func (h *Handler) ScanProduct(c *gin.Context) {
	p, err := h.Inventory.GetProductBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) LowStock(c *gin.Context) {
	products, err := h.Inventory.LowStockItems(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.Inventory.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

// AddProduct accepts the legacy "stock" key for the opening quantity.
func (h *Handler) AddProduct(c *gin.Context) {
	var body models.Product
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	p, err := h.Inventory.CreateProduct(c.Request.Context(), inventory.InputFromProduct(body))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// UpdateProduct edits product fields. Quantity only moves through AdjustStock.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var upd inventory.ProductUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	p, err := h.Inventory.UpdateProduct(c.Request.Context(), id, upd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": p})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Inventory.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

type StockRequest struct {
	Delta        int    `json:"delta" binding:"required"`
	MovementType string `json:"movement_type" binding:"required"`
	Notes        string `json:"notes"`
}

// AdjustStock books one ledger movement against a product.
func (h *Handler) AdjustStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "delta and movement_type are required")
		return
	}
	p, err := h.Inventory.UpdateStock(c.Request.Context(), id, req.Delta, req.MovementType, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Movements lists ledger rows, newest first, optionally for one product.
func (h *Handler) Movements(c *gin.Context) {
	var productID *uint
	if c.Param("id") != "" {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		productID = &id
	}
	moves, err := h.Inventory.StockMovements(c.Request.Context(), productID, queryInt(c, "limit", 100))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, moves)
}
