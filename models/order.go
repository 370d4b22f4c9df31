package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusOpen       OrderStatus = "open"
	StatusInProgress OrderStatus = "in_progress"
	StatusDone       OrderStatus = "done"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusDone || s == StatusCancelled
}

// Terminal reports whether no further business activity is expected for
// an order in this status.
func (s OrderStatus) Terminal() bool {
	return s == StatusDone || s == StatusCancelled
}

type Order struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	UserID          uuid.UUID   `db:"user_id" json:"user_id"`
	Status          OrderStatus `db:"status" json:"status"`
	SpecialRequests *string     `db:"special_requests" json:"special_requests,omitempty"`
	ScheduledAt     *time.Time  `db:"scheduled_at" json:"scheduled_at,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	ClosedAt        *time.Time  `db:"closed_at" json:"closed_at,omitempty"`
}

// OrderItem is one line of an order. Price is captured when the order is
// created and never recomputed from the menu item's catalog price.
type OrderItem struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	OrderID    uuid.UUID       `db:"order_id" json:"order_id"`
	MenuItemID uuid.UUID       `db:"menu_item_id" json:"menu_item_id"`
	Quantity   int             `db:"quantity" json:"quantity"`
	Price      decimal.Decimal `db:"price" json:"price"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// OrderItemRead is the line-item read projection with the referenced
// menu-item name resolved.
type OrderItemRead struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	MenuItemID   uuid.UUID       `db:"menu_item_id" json:"menu_item_id"`
	MenuItemName *string         `db:"menu_item_name" json:"menu_item_name,omitempty"`
	Quantity     int             `db:"quantity" json:"quantity"`
	Price        decimal.Decimal `db:"price" json:"price"`
}

// OrderRead is the self-contained read projection returned by every
// mutation and list call: the order, its line items in insertion order,
// resolved names, and the two derived fields computed at projection time.
type OrderRead struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	CustomerName    *string         `json:"customer_name,omitempty"`
	Status          OrderStatus     `json:"status"`
	SpecialRequests *string         `json:"special_requests,omitempty"`
	ScheduledAt     *time.Time      `json:"scheduled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
	Items           []OrderItemRead `json:"items"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	CountItems      int             `json:"count_items"`
}

// CreateOrderItemInput is one requested line: the price is the snapshot
// supplied by the caller at order-entry time.
type CreateOrderItemInput struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type CreateOrderInput struct {
	UserID uuid.UUID              `json:"user_id"`
	Items  []CreateOrderItemInput `json:"items"`
}

// OrderPatch is the closed patch schema for updates; only these five
// fields may appear, absent fields are left untouched.
type OrderPatch struct {
	MenuItemID      *uuid.UUID   `json:"menu_item_id,omitempty"`
	Quantity        *int         `json:"quantity,omitempty"`
	Status          *OrderStatus `json:"status,omitempty"`
	SpecialRequests *string      `json:"special_requests,omitempty"`
	ScheduledAt     *time.Time   `json:"scheduled_at,omitempty"`
}

type OrderFilter struct {
	Status   *OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
