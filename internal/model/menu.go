package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Destination is the preparation station a menu item is routed to.
type Destination string

const (
	DestinationKitchen Destination = "KITCHEN"
	DestinationBar     Destination = "BAR"
)

// Valid reports whether d is one of the two stations.
func (d Destination) Valid() bool {
	return d == DestinationKitchen || d == DestinationBar
}

// MenuItem is the local snapshot of a catalog entry. The catalog itself is managed elsewhere.
type MenuItem struct {
	ID          int64           `gorm:"primaryKey" json:"id"` // Upstream ID
	Name        string          `gorm:"size:128;not null" json:"name"`
	Category    string          `gorm:"size:64" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Destination Destination     `gorm:"size:16;not null" json:"destination"`
	Available   bool            `gorm:"not null" json:"available"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Associations
	Modifiers []Modifier `gorm:"foreignKey:MenuItemID" json:"modifiers,omitempty"`
}

// Modifier is an optional add-on selectable for one menu item.
type Modifier struct {
	ID              int64           `gorm:"primaryKey" json:"id"` // Upstream ID
	MenuItemID      int64           `gorm:"index;not null" json:"menuItemId"`
	Name            string          `gorm:"size:128;not null" json:"name"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"priceAdjustment"`
	Available       bool            `gorm:"not null" json:"available"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
