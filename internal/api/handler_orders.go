package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/mw"
	"restaurant-floor-backend/internal/store"
)

// OpenOrder handles POST /api/tables/:id/orders. It answers 201 for a new order and
// 200 when the table already had an active one.
func (h *Handler) OpenOrder(c *gin.Context) {
	tableID, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, created, err := h.orders.OpenOrder(c.Request.Context(), tableID, mw.ActorFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, order)
}

// GetOrder handles GET /api/orders/:id.
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type submitItem struct {
	MenuItemID  int64   `json:"menuItemId" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required"`
	Note        string  `json:"note"`
	ModifierIDs []int64 `json:"modifierIds"`
	SeatNumber  *int    `json:"seatNumber"`
}

type submitItemsRequest struct {
	Items []submitItem `json:"items" binding:"required,min=1,dive"`
}

// SubmitItems handles POST /api/orders/:id/items.
func (h *Handler) SubmitItems(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req submitItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	items := make([]store.NewItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, store.NewItem{
			MenuItemID:  it.MenuItemID,
			Quantity:    it.Quantity,
			Note:        strings.TrimSpace(it.Note),
			ModifierIDs: it.ModifierIDs,
			SeatNumber:  it.SeatNumber,
		})
	}

	sub, err := h.orders.SubmitItems(c.Request.Context(), orderID, items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

type orderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// SetOrderStatus handles PATCH /api/orders/:id/status.
func (h *Handler) SetOrderStatus(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	status := model.OrderStatus(strings.ToUpper(string(req.Status)))
	order, err := h.orders.SetOrderStatus(c.Request.Context(), orderID, status, mw.ActorFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListServerOrders handles GET /api/servers/:id/orders. Servers may only read their own.
func (h *Handler) ListServerOrders(c *gin.Context) {
	serverID := c.Param("id")
	actor := mw.ActorFrom(c)
	if actor.Role == model.RoleServer && actor.ID != serverID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "servers can only list their own orders"})
		return
	}

	orders, err := h.orders.ListServerOrders(c.Request.Context(), serverID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
