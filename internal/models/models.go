package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Roles a user can hold.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// User - a person who can sign in to the back office
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:50" json:"username"`
	Email        string     `gorm:"uniqueIndex;size:120" json:"email"`
	PasswordHash string     `json:"-"` // Never return this in JSON
	Role         string     `gorm:"size:20" json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

// Product - the inventory catalog
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	SKU          string          `gorm:"uniqueIndex;size:32" json:"sku"`
	Name         string          `gorm:"index;size:200" json:"name"`
	Description  string          `json:"description"`
	Category     string          `gorm:"index;size:100" json:"category"`
	Unit         string          `gorm:"size:20" json:"unit"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Cost         decimal.Decimal `gorm:"type:decimal(12,2)" json:"cost"`
	ReorderLevel int             `json:"reorder_level"`
	Quantity     int             `gorm:"index" json:"quantity"`
	SupplierID   *uint           `json:"supplier_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsLowStock reports whether the product sits at or below its reorder level.
func (p Product) IsLowStock() bool {
	return p.Quantity <= p.ReorderLevel
}

// UnmarshalJSON accepts the legacy "stock" key when "quantity" is absent.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		Quantity *int `json:"quantity"`
		Stock    *int `json:"stock"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.Quantity != nil:
		p.Quantity = *aux.Quantity
	case aux.Stock != nil:
		p.Quantity = *aux.Stock
	}
	return nil
}

// Movement types recorded in the stock ledger.
const (
	MovementInitialStock = "initial_stock"
	MovementSale         = "sale"
	MovementPurchase     = "purchase"
	MovementReturn       = "return"
	MovementDamage       = "damage"
	MovementAdjustment   = "adjustment"
)

// ValidMovementType reports whether t is a known ledger movement type.
func ValidMovementType(t string) bool {
	switch t {
	case MovementInitialStock, MovementSale, MovementPurchase, MovementReturn, MovementDamage, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement - one immutable row of the stock ledger
type StockMovement struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProductID      uint      `gorm:"index;not null" json:"product_id"`
	QuantityChange int       `gorm:"not null" json:"quantity_change"`
	MovementType   string    `gorm:"size:30;not null" json:"movement_type"`
	Notes          string    `json:"notes"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
}

// Supplier - a vendor we buy from
type Supplier struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"index;size:200" json:"name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&StockMovement{},
		&Supplier{},
		&Bill{},
		&Invoice{},
		&SalesOrder{},
		&PurchaseOrder{},
		&Package{},
	}
}
