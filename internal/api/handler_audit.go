package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/parse"
	"restaurant-floor-backend/internal/store"
)

// ListAudit handles GET /api/audit?action=&userId=&from=&to=&page=&pageSize=.
// from and to accept RFC 3339 timestamps or YYYY-MM-DD dates; a date in to is inclusive.
func (h *Handler) ListAudit(c *gin.Context) {
	filter := store.AuditFilter{
		Action: model.AuditAction(c.Query("action")),
		UserID: c.Query("userId"),
	}
	if filter.Action != "" && !filter.Action.Valid() {
		h.fail(c, apperr.Validation("unknown audit action %q", filter.Action))
		return
	}

	var err error
	if filter.From, err = timeParam(c.Query("from"), false); err != nil {
		h.fail(c, err)
		return
	}
	if filter.To, err = timeParam(c.Query("to"), true); err != nil {
		h.fail(c, err)
		return
	}
	if filter.Page, err = intParam(c, "page"); err != nil {
		h.fail(c, err)
		return
	}
	if filter.PageSize, err = intParam(c, "pageSize"); err != nil {
		h.fail(c, err)
		return
	}

	page, err := h.trail.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func timeParam(raw string, end bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	day, err := parse.ParseBusinessDate(raw, time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid time %q", raw)
	}
	if end {
		return day.End, nil
	}
	return day.Start, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("invalid %s %q", name, raw)
	}
	return n, nil
}
