package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditAction is the closed set of privileged actions recorded in the audit trail.
type AuditAction string

const (
	AuditItemVoided      AuditAction = "ITEM_VOIDED"
	AuditOrderCancelled  AuditAction = "ORDER_CANCELLED"
	AuditOrderCompleted  AuditAction = "ORDER_COMPLETED_MANUALLY"
	AuditDiscountApplied AuditAction = "DISCOUNT_APPLIED"
	AuditDiscountRemoved AuditAction = "DISCOUNT_REMOVED"
	AuditPaymentSettled  AuditAction = "PAYMENT_SETTLED"
	AuditDayClosed       AuditAction = "DAY_CLOSED"
)

// Valid reports whether a is a known audit action.
func (a AuditAction) Valid() bool {
	switch a {
	case AuditItemVoided, AuditOrderCancelled, AuditOrderCompleted, AuditDiscountApplied,
		AuditDiscountRemoved, AuditPaymentSettled, AuditDayClosed:
		return true
	}
	return false
}

// AuditEntry is one append-only record of a privileged action. Rows are never updated.
type AuditEntry struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	Action    AuditAction    `gorm:"size:32;index;not null" json:"action"`
	UserID    string         `gorm:"size:64;index;not null" json:"userId"`
	OrderID   *int64         `gorm:"index" json:"orderId,omitempty"`
	ItemID    *int64         `json:"itemId,omitempty"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `gorm:"index;not null" json:"createdAt"`
}
