package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderOpen      OrderStatus = "OPEN"
	OrderSubmitted OrderStatus = "SUBMITTED"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderClosed    OrderStatus = "CLOSED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// ActiveOrderStatuses are the statuses that keep a table occupied.
var ActiveOrderStatuses = []OrderStatus{OrderOpen, OrderSubmitted, OrderCompleted}

// IsActive reports whether an order in this status holds its table.
func (s OrderStatus) IsActive() bool {
	return s == OrderOpen || s == OrderSubmitted || s == OrderCompleted
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderClosed || s == OrderCancelled
}

// Cancellable reports whether a server may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s == OrderOpen || s == OrderSubmitted
}

// Order is one dining session at a table.
type Order struct {
	ID        int64       `gorm:"primaryKey" json:"id"`
	TableID   int64       `gorm:"index;not null" json:"tableId"`
	ServerID  string      `gorm:"size:64;index;not null" json:"serverId"`
	Status    OrderStatus `gorm:"size:16;index;not null" json:"status"`
	CreatedAt time.Time   `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time   `gorm:"not null" json:"updatedAt"`

	// Associations
	Table     *Table                `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Items     []OrderItem           `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Discounts []DiscountApplication `gorm:"foreignKey:OrderID" json:"discounts,omitempty"`
}

// ItemStatus is the preparation state of one order line.
type ItemStatus string

const (
	ItemPending   ItemStatus = "PENDING"
	ItemSent      ItemStatus = "SENT"
	ItemPreparing ItemStatus = "PREPARING"
	ItemReady     ItemStatus = "READY"
	ItemServed    ItemStatus = "SERVED"
	ItemCancelled ItemStatus = "CANCELLED"
)

// TerminalItemStatuses are the statuses that count as done for order completion.
var TerminalItemStatuses = []ItemStatus{ItemServed, ItemCancelled}

// IsTerminal reports whether the item no longer needs preparation or service.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemServed || s == ItemCancelled
}

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemSent, ItemPreparing, ItemReady, ItemServed, ItemCancelled:
		return true
	}
	return false
}

// VoidReason is the closed set of reasons a submitted item may be voided for.
type VoidReason string

const (
	VoidWrongItem           VoidReason = "WRONG_ITEM"
	VoidCustomerChangedMind VoidReason = "CUSTOMER_CHANGED_MIND"
	VoidQualityIssue        VoidReason = "QUALITY_ISSUE"
	VoidOutOfStock          VoidReason = "OUT_OF_STOCK"
	VoidDuplicate           VoidReason = "DUPLICATE"
	VoidOther               VoidReason = "OTHER"
)

// Valid reports whether r belongs to the enumeration.
func (r VoidReason) Valid() bool {
	switch r {
	case VoidWrongItem, VoidCustomerChangedMind, VoidQualityIssue, VoidOutOfStock, VoidDuplicate, VoidOther:
		return true
	}
	return false
}

// OrderItem is one menu item line within an order. Prices are snapshots taken at submission.
type OrderItem struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	OrderID     int64           `gorm:"index;not null" json:"orderId"`
	MenuItemID  int64           `gorm:"index;not null" json:"menuItemId"`
	Name        string          `gorm:"size:128;not null" json:"name"`
	SeatNumber  *int            `json:"seatNumber,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	Note        string          `gorm:"size:255" json:"note,omitempty"`
	Status      ItemStatus      `gorm:"size:16;index;not null" json:"status"`
	Destination Destination     `gorm:"size:16;index;not null" json:"destination"`
	SentAt      *time.Time      `json:"sentAt,omitempty"`
	ReadyAt     *time.Time      `json:"readyAt,omitempty"`
	ServedAt    *time.Time      `json:"servedAt,omitempty"`
	VoidReason  *VoidReason     `gorm:"size:32" json:"voidReason,omitempty"`
	VoidNote    string          `gorm:"size:255" json:"voidNote,omitempty"`
	Version     int64           `gorm:"not null" json:"version"`
	CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updatedAt"`

	// Associations
	Modifiers []OrderItemModifier `gorm:"foreignKey:OrderItemID" json:"modifiers,omitempty"`
}

// LineTotal is unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderItemModifier snapshots a selected modifier and its price adjustment.
type OrderItemModifier struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	OrderItemID     int64           `gorm:"index;not null" json:"orderItemId"`
	ModifierID      int64           `gorm:"not null" json:"modifierId"`
	Name            string          `gorm:"size:128;not null" json:"name"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"priceAdjustment"`
}
