package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a bill was settled.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

// Payment is the immutable settlement record of one order.
type Payment struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	OrderID   int64           `gorm:"uniqueIndex;not null" json:"orderId"`
	Method    PaymentMethod   `gorm:"size:16;not null" json:"method"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Tax       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	Tip       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tip"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"taxRate"`
	CreatedBy string          `gorm:"size:64;not null" json:"createdBy"`
	CreatedAt time.Time       `gorm:"index;not null" json:"createdAt"`
}
