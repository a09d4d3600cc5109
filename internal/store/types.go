package store

import (
	"time"

	"github.com/shopspring/decimal"

	"restaurant-floor-backend/internal/model"
)

// NewItem is one requested line of a submission.
type NewItem struct {
	MenuItemID  int64
	Quantity    int
	Note        string
	ModifierIDs []int64
	SeatNumber  *int
}

// ItemChange is a requested status change of one order item.
type ItemChange struct {
	Status     model.ItemStatus
	VoidReason model.VoidReason
	VoidNote   string
	// ExpectedVersion, when set, rejects the change if the item was modified since it was read.
	ExpectedVersion *int64
}

// ItemTransition is the outcome of an item status change.
type ItemTransition struct {
	Item           model.OrderItem  `json:"item"`
	Order          model.Order      `json:"order"`
	Previous       model.ItemStatus `json:"previousStatus"`
	OrderCompleted bool             `json:"orderCompleted"`
}

// Submission is the outcome of appending items to an order.
type Submission struct {
	Order model.Order       `json:"order"`
	Items []model.OrderItem `json:"items"`
}

// Settlement is the outcome of settling an order.
type Settlement struct {
	Payment       model.Payment `json:"payment"`
	Order         model.Order   `json:"order"`
	TableReleased bool          `json:"tableReleased"`
}

// StationItem is an item awaiting preparation or service, with the context a station display needs.
type StationItem struct {
	model.OrderItem
	TableNumber int    `json:"tableNumber"`
	ServerID    string `json:"serverId"`
}

// AuditFilter narrows an audit listing. Zero values do not filter.
type AuditFilter struct {
	Action   model.AuditAction
	UserID   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// CatalogItem represents a single menu entry exported by the catalog service.
type CatalogItem struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Price       decimal.Decimal   `json:"price"`
	Destination model.Destination `json:"destination"`
	Available   bool              `json:"available"`
	Modifiers   []CatalogModifier `json:"modifiers"`
}

// CatalogModifier is a modifier exported by the catalog service.
type CatalogModifier struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
	Available       bool            `json:"available"`
}
