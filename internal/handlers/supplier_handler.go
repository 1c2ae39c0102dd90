package handlers

import (
	"net/http"
	"strings"

	"go-inventory-agent/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetSuppliers(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		sups []models.Supplier
		err  error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		sups, err = h.Suppliers.Search(ctx, q)
	} else {
		sups, err = h.Suppliers.List(ctx, queryInt(c, "limit", 0))
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sups)
}

func (h *Handler) GetSupplier(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	s, err := h.Suppliers.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) AddSupplier(c *gin.Context) {
	var body models.Supplier
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	s, err := h.Suppliers.Create(c.Request.Context(), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) UpdateSupplier(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body models.Supplier
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	s, err := h.Suppliers.Update(c.Request.Context(), id, body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) DeleteSupplier(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Suppliers.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
}
