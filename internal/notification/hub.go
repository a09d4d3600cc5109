// Package notification fans lifecycle events out to station and server channels
// and delivers push notifications to servers' devices.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"restaurant-floor-backend/internal/model"
)

const (
	EventNewItems      = "new-items"
	EventItemReady     = "item-ready"
	EventStatusChanged = "status-changed"
)

// StationChannel is the broadcast channel shared by every display of a station.
func StationChannel(d model.Destination) string {
	return "station-" + strings.ToLower(string(d))
}

// ServerChannel is the private channel of one server.
func ServerChannel(serverID string) string {
	return "private-server-" + serverID
}

type TableRef struct {
	ID     int64 `json:"id"`
	Number int   `json:"number"`
}

type ItemRef struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Quantity    int               `json:"quantity"`
	SeatNumber  *int              `json:"seatNumber,omitempty"`
	Note        string            `json:"note,omitempty"`
	Modifiers   []string          `json:"modifiers,omitempty"`
	Status      model.ItemStatus  `json:"status"`
	Destination model.Destination `json:"destination"`
}

type NewItemsEvent struct {
	OrderID  int64     `json:"orderId"`
	Table    TableRef  `json:"table"`
	ServerID string    `json:"serverId"`
	Items    []ItemRef `json:"items"`
}

type ItemReadyEvent struct {
	OrderID int64    `json:"orderId"`
	Item    ItemRef  `json:"item"`
	Table   TableRef `json:"table"`
}

type StatusChangedEvent struct {
	ItemID  int64            `json:"itemId"`
	OrderID int64            `json:"orderId"`
	Status  model.ItemStatus `json:"status"`
}

// Dispatcher queues push jobs without blocking.
type Dispatcher interface {
	Dispatch(job PushJob) bool
}

// Hub publishes lifecycle events. Every method returns immediately; delivery happens
// in the background and failures are only logged.
type Hub struct {
	relay   Relay
	pusher  Dispatcher
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

// NewHub creates a Hub. pusher may be nil when push delivery is not configured.
func NewHub(relay Relay, pusher Dispatcher, timeout time.Duration, log *zap.Logger) *Hub {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Hub{relay: relay, pusher: pusher, timeout: timeout, log: log}
}

// NewItems announces freshly submitted items to each station that has to prepare them.
func (h *Hub) NewItems(order model.Order, items []model.OrderItem) {
	partitions := make(map[model.Destination][]ItemRef)
	var dests []model.Destination
	for _, item := range items {
		if _, ok := partitions[item.Destination]; !ok {
			dests = append(dests, item.Destination)
		}
		partitions[item.Destination] = append(partitions[item.Destination], itemRef(item))
	}

	for _, dest := range dests {
		h.publish(StationChannel(dest), EventNewItems, NewItemsEvent{
			OrderID:  order.ID,
			Table:    tableRef(order),
			ServerID: order.ServerID,
			Items:    partitions[dest],
		})
	}
}

// ItemReady tells the owning server an item can be picked up, keeps sibling station
// displays in step and pushes a notification to the server's devices.
func (h *Hub) ItemReady(order model.Order, item model.OrderItem) {
	table := tableRef(order)
	h.publish(ServerChannel(order.ServerID), EventItemReady, ItemReadyEvent{
		OrderID: order.ID,
		Item:    itemRef(item),
		Table:   table,
	})
	h.StatusChanged(order, item)

	if h.pusher == nil {
		return
	}
	job := PushJob{
		ServerID: order.ServerID,
		Message: PushMessage{
			Title: "Order ready",
			Body:  fmt.Sprintf("%s for table %d is ready", item.Name, table.Number),
			Tag:   fmt.Sprintf("item-%d", item.ID),
			Data: map[string]any{
				"orderId":     order.ID,
				"itemId":      item.ID,
				"tableNumber": table.Number,
			},
		},
	}
	if !h.pusher.Dispatch(job) {
		h.log.Warn("push queue full, dropping notification",
			zap.String("server_id", order.ServerID),
			zap.Int64("item_id", item.ID))
	}
}

// StatusChanged broadcasts an item's new status on its station channel.
func (h *Hub) StatusChanged(order model.Order, item model.OrderItem) {
	h.publish(StationChannel(item.Destination), EventStatusChanged, StatusChangedEvent{
		ItemID:  item.ID,
		OrderID: order.ID,
		Status:  item.Status,
	})
}

// Wait blocks until every in-flight publish has finished.
func (h *Hub) Wait() {
	h.wg.Wait()
}

func (h *Hub) publish(channel, event string, payload any) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		if err := h.relay.Publish(ctx, channel, event, payload); err != nil {
			h.log.Warn("failed to publish event",
				zap.String("channel", channel),
				zap.String("event", event),
				zap.Error(err))
		}
	}()
}

func tableRef(order model.Order) TableRef {
	ref := TableRef{ID: order.TableID}
	if order.Table != nil {
		ref.Number = order.Table.Number
	}
	return ref
}

func itemRef(item model.OrderItem) ItemRef {
	ref := ItemRef{
		ID:          item.ID,
		Name:        item.Name,
		Quantity:    item.Quantity,
		SeatNumber:  item.SeatNumber,
		Note:        item.Note,
		Status:      item.Status,
		Destination: item.Destination,
	}
	for _, m := range item.Modifiers {
		ref.Modifiers = append(ref.Modifiers, m.Name)
	}
	return ref
}
