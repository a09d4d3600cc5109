package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyClose is the end-of-day cash and card reconciliation for one business date.
type DailyClose struct {
	ID            int64           `gorm:"primaryKey" json:"id"`
	BusinessDate  string          `gorm:"uniqueIndex;size:10;not null" json:"date"` // YYYY-MM-DD
	ExpectedCash  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"expectedCash"`
	ActualCash    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"actualCash"`
	Variance      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"variance"`
	CardTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cardTotal"`
	TotalRevenue  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalRevenue"`
	TotalTax      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalTax"`
	TotalTips     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalTips"`
	TotalDiscount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalDiscount"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	OrderCount    int             `gorm:"not null" json:"orderCount"`
	ClosedBy      string          `gorm:"size:64;not null" json:"closedBy"`
	Notes         string          `gorm:"size:1024" json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"createdAt"`
}
