package handlers

import (
	"net/http"

	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/tracking"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreatePackage(c *gin.Context) {
	var in tracking.PackageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	in.CreatedBy = currentUser(c)
	pkg, err := h.Packages.CreatePackage(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

func (h *Handler) GetPackages(c *gin.Context) {
	list, err := h.Packages.ListPackages(c.Request.Context(), queryInt(c, "limit", 100))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetPackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pkg, err := h.Packages.GetPackage(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (h *Handler) UpdatePackageStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	pkg, err := h.Packages.UpdateStatus(c.Request.Context(), id, models.PackageStatus(req.Status), req.Location, req.Details)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (h *Handler) DeletePackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Packages.DeletePackage(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Package deleted successfully"})
}

// TrackPackage shows what the carrier reports without changing the package.
func (h *Handler) TrackPackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pkg, info, err := h.Packages.Lookup(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"package": pkg, "tracking": info})
}

// SyncPackage applies the carrier's status to the package.
func (h *Handler) SyncPackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pkg, info, err := h.Packages.Sync(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"package": pkg, "tracking": info})
}
