package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go-inventory-agent/internal/ai"
	"go-inventory-agent/internal/auth"
	"go-inventory-agent/internal/billing"
	"go-inventory-agent/internal/inventory"
	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/middleware"
	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/orders"
	"go-inventory-agent/internal/session"
	"go-inventory-agent/internal/suppliers"
	"go-inventory-agent/internal/tracking"
	"go-inventory-agent/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds the services the HTTP API is built on.
type Handler struct {
	Users     *auth.Service
	Tokens    *auth.TokenIssuer
	Inventory *inventory.Service
	Suppliers *suppliers.Service
	Billing   *billing.Service
	Orders    *orders.Service
	Packages  *tracking.Service
	Assistant *ai.Bridge
	Sessions  session.Store

	AllowRegistration bool
	Log               *zap.Logger
	Now               func() time.Time
}

func (h *Handler) log() *zap.Logger { return logger.OrNop(h.Log) }

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var (
	notFound = []error{
		inventory.ErrProductNotFound, billing.ErrBillNotFound, billing.ErrInvoiceNotFound,
		orders.ErrSalesOrderNotFound, orders.ErrPurchaseOrderNotFound, suppliers.ErrSupplierNotFound,
		tracking.ErrPackageNotFound, auth.ErrUserNotFound, session.ErrNotFound,
	}
	conflict = []error{
		inventory.ErrInsufficientStock, inventory.ErrSKUExists, billing.ErrDuplicateNumber,
		orders.ErrDuplicateNumber, tracking.ErrDuplicateTrackingNumber, auth.ErrUserExists,
		models.ErrInvalidTransition, ai.ErrNoPendingAction,
	}
	unprocessable = []error{
		models.ErrInvalidLineItem, models.ErrInvalidTaxRate, models.ErrUnknownStatus,
		inventory.ErrInvalidProduct, inventory.ErrInvalidMovementType, billing.ErrEmptyBill,
		orders.ErrSupplierRequired, orders.ErrCustomerRequired, suppliers.ErrNameRequired,
		tracking.ErrTrackingNumberRequired, auth.ErrInvalidRole, auth.ErrMissingField,
		ai.ErrSupplierMissing, ai.ErrEmptyMessage,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError maps a service error onto a status code. Unexpected errors are
// logged and reported without detail.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case isAny(err, notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case isAny(err, conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case isAny(err, unprocessable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, utils.ErrCodeExhausted):
		h.log().Error("document number generation exhausted", zap.String("path", c.FullPath()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not allocate a document number, please retry"})
	default:
		_ = c.Error(err)
		h.log().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// paramID reads a positive numeric path parameter, answering 400 when it is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

func currentUser(c *gin.Context) *uint {
	id := c.GetUint(middleware.UserIDKey)
	if id == 0 {
		return nil
	}
	return &id
}

// dateRange reads ?from= and ?to= (YYYY-MM-DD). to is inclusive of its whole
// day; the default is the last 30 days including today.
func (h *Handler) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := h.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := today.AddDate(0, 0, -29)
	to := today.AddDate(0, 0, 1)
	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(time.DateOnly, v, now.Location())
		if err != nil {
			badRequest(c, "from must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(time.DateOnly, v, now.Location())
		if err != nil {
			badRequest(c, "to must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		to = t.AddDate(0, 0, 1)
	}
	return from, to, true
}
