package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/billing"
	"restaurant-floor-backend/internal/lifecycle"
	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/mw"
	"restaurant-floor-backend/internal/parse"
)

// ListDiscounts handles GET /api/discounts.
func (h *Handler) ListDiscounts(c *gin.Context) {
	discounts, err := h.orders.ListDiscounts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discounts": discounts})
}

type applyDiscountRequest struct {
	DiscountID *int64             `json:"discountId"`
	Type       model.DiscountType `json:"type"`
	Value      decimal.Decimal    `json:"value"`
	Note       string             `json:"note"`
}

// ApplyDiscount handles POST /api/orders/:id/discounts.
func (h *Handler) ApplyDiscount(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req applyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	app, err := h.orders.ApplyDiscount(c.Request.Context(), orderID, lifecycle.DiscountRequest{
		DiscountID: req.DiscountID,
		Type:       model.DiscountType(strings.ToUpper(string(req.Type))),
		Value:      req.Value,
		Note:       strings.TrimSpace(req.Note),
	}, mw.ActorFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// RemoveDiscount handles DELETE /api/orders/:id/discounts/:appId.
func (h *Handler) RemoveDiscount(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	appID, ok := idParam(c, "appId")
	if !ok {
		return
	}

	if err := h.orders.RemoveDiscount(c.Request.Context(), orderID, appID, mw.ActorFrom(c).ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type billPreview struct {
	billing.Bill
	TipPresets []int `json:"tipPresets"`
}

// PreviewBill handles GET /api/orders/:id/bill?tip=15% (or tip=25.00).
func (h *Handler) PreviewBill(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	tip, err := parse.ParseTip(c.Query("tip"))
	if err != nil {
		h.fail(c, apperr.Validation("%v", err))
		return
	}

	bill, err := h.orders.PreviewBill(c.Request.Context(), orderID, tip)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, billPreview{Bill: bill, TipPresets: h.tipPresets})
}

// tipField accepts "15%", "40.00" or a bare JSON number, which is a fixed amount.
type tipField string

func (t *tipField) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = tipField(s)
		return nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("tip must be a number or a string such as \"15%%\": %w", err)
	}
	*t = tipField(amount.String())
	return nil
}

type paymentRequest struct {
	Method model.PaymentMethod `json:"method" binding:"required"`
	Tip    tipField            `json:"tip"`
}

// SettlePayment handles POST /api/orders/:id/payment.
func (h *Handler) SettlePayment(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tip, err := parse.ParseTip(string(req.Tip))
	if err != nil {
		h.fail(c, apperr.Validation("%v", err))
		return
	}

	method := model.PaymentMethod(strings.ToUpper(string(req.Method)))
	res, err := h.orders.SettlePayment(c.Request.Context(), orderID, method, tip, mw.ActorFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
