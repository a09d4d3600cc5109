package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"restaurant-floor-backend/internal/mw"
	"restaurant-floor-backend/internal/reconcile"
)

// GetDailyClose handles GET /api/daily-close/:date.
func (h *Handler) GetDailyClose(c *gin.Context) {
	dc, err := h.days.GetDailyClose(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dc)
}

// PreviewDay handles GET /api/daily-close/:date/preview.
func (h *Handler) PreviewDay(c *gin.Context) {
	preview, err := h.days.PreviewDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

type closeDayRequest struct {
	Date       string           `json:"date" binding:"required"`
	ActualCash *decimal.Decimal `json:"actualCash" binding:"required"`
	Notes      string           `json:"notes"`
}

// CloseDay handles POST /api/daily-close.
func (h *Handler) CloseDay(c *gin.Context) {
	var req closeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	dc, err := h.days.CloseDay(c.Request.Context(), reconcile.CloseRequest{
		Date:       req.Date,
		ActualCash: *req.ActualCash,
		Notes:      strings.TrimSpace(req.Notes),
	}, mw.ActorFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dc)
}
