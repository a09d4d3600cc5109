package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/mw"
	"restaurant-floor-backend/internal/store"
)

type itemStatusRequest struct {
	Status          model.ItemStatus `json:"status" binding:"required"`
	VoidReason      model.VoidReason `json:"voidReason"`
	VoidNote        string           `json:"voidNote"`
	ExpectedVersion *int64           `json:"expectedVersion"`
}

// TransitionItem handles PATCH /api/items/:id/status.
func (h *Handler) TransitionItem(c *gin.Context) {
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req itemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.orders.TransitionItem(c.Request.Context(), itemID, store.ItemChange{
		Status:          model.ItemStatus(strings.ToUpper(string(req.Status))),
		VoidReason:      req.VoidReason,
		VoidNote:        strings.TrimSpace(req.VoidNote),
		ExpectedVersion: req.ExpectedVersion,
	}, mw.ActorFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListStationItems handles GET /api/stations/:destination/items, the reconciliation
// read polled by station displays.
func (h *Handler) ListStationItems(c *gin.Context) {
	destination := model.Destination(strings.ToUpper(c.Param("destination")))

	items, err := h.orders.ListStationItems(c.Request.Context(), destination)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"destination": destination, "items": items})
}
