package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a snapshot of a product at the time a document was written.
// It is never a live reference: renaming or deleting the product does not touch it.
type LineItem struct {
	ProductID *uint           `json:"product_id,omitempty"`
	SKU       string          `json:"sku,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

// LineItems is stored as a JSON column on every document.
type LineItems []LineItem

// Subtotal sums the line totals exactly as supplied.
func (items LineItems) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Total)
	}
	return sum
}

// WithTotals fills in quantity x price for lines that carry no total.
func (items LineItems) WithTotals() LineItems {
	out := make(LineItems, len(items))
	for i, it := range items {
		if it.Total.IsZero() {
			it.Total = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		out[i] = it
	}
	return out
}

// ErrInvalidLineItem is returned for unnamed, empty or negatively priced lines.
var ErrInvalidLineItem = errors.New("invalid line item")

// Validate checks every line; a document needs at least one.
func (items LineItems) Validate() error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidLineItem)
	}
	for i, it := range items {
		switch {
		case strings.TrimSpace(it.Name) == "" && it.ProductID == nil:
			return fmt.Errorf("%w: line %d has no name", ErrInvalidLineItem, i+1)
		case it.Quantity <= 0:
			return fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidLineItem, i+1)
		case it.UnitPrice.IsNegative() || it.Total.IsNegative():
			return fmt.Errorf("%w: line %d has a negative amount", ErrInvalidLineItem, i+1)
		}
	}
	return nil
}

// Quantity returns the number of units across all lines.
func (items LineItems) Quantity() int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Bill - a point-of-sale receipt; creating one decrements stock
type Bill struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	BillNumber      string          `gorm:"uniqueIndex;size:40" json:"bill_number"`
	CustomerName    string          `json:"customer_name"`
	CustomerContact string          `json:"customer_contact"`
	Items           LineItems       `gorm:"serializer:json" json:"items"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2)" json:"subtotal"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(6,4)" json:"tax_rate"`
	Tax             decimal.Decimal `gorm:"type:decimal(12,2)" json:"tax"`
	Discount        decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	CreatedBy       *uint           `json:"created_by"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
}

// Invoice - a customer invoice, optionally generated from a sales order
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"uniqueIndex;size:40" json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	SalesOrderID  *uint           `gorm:"index" json:"sales_order_id"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       *time.Time      `json:"due_date"`
	Items         LineItems       `gorm:"serializer:json" json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2)" json:"subtotal"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(6,4)" json:"tax_rate"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2)" json:"tax_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	Status        InvoiceStatus   `gorm:"size:20;index" json:"status"`
	Notes         string          `json:"notes"`
	CreatedBy     *uint           `json:"created_by"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SalesOrder - a customer order
type SalesOrder struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	OrderNumber  string           `gorm:"uniqueIndex;size:40" json:"order_number"`
	CustomerName string           `json:"customer_name"`
	OrderDate    time.Time        `gorm:"index" json:"order_date"`
	DeliveryDate *time.Time       `json:"delivery_date"`
	Items        LineItems        `gorm:"serializer:json" json:"items"`
	TotalAmount  decimal.Decimal  `gorm:"type:decimal(12,2)" json:"total_amount"`
	Status       SalesOrderStatus `gorm:"size:20;index" json:"status"`
	Notes        string           `json:"notes"`
	CreatedBy    *uint            `json:"created_by"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// PurchaseOrder - an order placed with a supplier
type PurchaseOrder struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	PONumber         string              `gorm:"uniqueIndex;size:40" json:"po_number"`
	SupplierID       *uint               `gorm:"index" json:"supplier_id"`
	SupplierName     string              `json:"supplier_name"`
	OrderDate        time.Time           `gorm:"index" json:"order_date"`
	ExpectedDelivery *time.Time          `json:"expected_delivery"`
	Items            LineItems           `gorm:"serializer:json" json:"items"`
	TotalAmount      decimal.Decimal     `gorm:"type:decimal(12,2)" json:"total_amount"`
	Status           PurchaseOrderStatus `gorm:"size:20;index" json:"status"`
	Notes            string              `json:"notes"`
	ShippingAddress  string              `json:"shipping_address"`
	CreatedBy        *uint               `json:"created_by"`
	CreatedAt        time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// TrackingEvent is one entry of a package's status history.
type TrackingEvent struct {
	Status    PackageStatus `json:"status"`
	Location  string        `json:"location,omitempty"`
	Details   string        `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Package - a shipment being tracked
type Package struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	TrackingNumber string          `gorm:"uniqueIndex;size:64" json:"tracking_number"`
	Carrier        string          `gorm:"size:50" json:"carrier"`
	Status         PackageStatus   `gorm:"size:30;index" json:"status"`
	Destination    string          `json:"destination"`
	Notes          string          `json:"notes"`
	History        []TrackingEvent `gorm:"serializer:json" json:"tracking_history"`
	CreatedBy      *uint           `json:"created_by"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
