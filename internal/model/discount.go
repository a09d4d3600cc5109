package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Discount is a named, reusable discount definition.
type Discount struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Type      DiscountType    `gorm:"size:16;not null" json:"type"`
	Value     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"value"`
	Active    bool            `gorm:"not null" json:"active"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// DiscountApplication attaches one discount, named or ad-hoc comp, to an order.
type DiscountApplication struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	OrderID    int64           `gorm:"index;not null" json:"orderId"`
	DiscountID *int64          `json:"discountId,omitempty"`
	Label      string          `gorm:"size:64;not null" json:"label"`
	Type       DiscountType    `gorm:"size:16;not null" json:"type"`
	Value      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"value"`
	Note       string          `gorm:"size:255" json:"note,omitempty"`
	AppliedBy  string          `gorm:"size:64;not null" json:"appliedBy"`
	CreatedAt  time.Time       `gorm:"not null" json:"createdAt"`
}

// IsComp reports whether the application is an ad-hoc comp rather than a named discount.
func (a DiscountApplication) IsComp() bool {
	return a.DiscountID == nil
}
