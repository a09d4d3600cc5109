package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/audit"
	"restaurant-floor-backend/internal/lifecycle"
	"restaurant-floor-backend/internal/mw"
	"restaurant-floor-backend/internal/reconcile"
	"restaurant-floor-backend/internal/store"
)

// Deps holds the services the HTTP layer is built on.
type Deps struct {
	Orders     *lifecycle.Service
	Days       *reconcile.Service
	Audit      *audit.Recorder
	Store      store.Store
	WebPush    *webpush.Options
	TipPresets []int
	Log        *zap.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	orders     *lifecycle.Service
	days       *reconcile.Service
	trail      *audit.Recorder
	store      store.Store
	webpush    *webpush.Options
	tipPresets []int
	log        *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		orders:     d.Orders,
		days:       d.Days,
		trail:      d.Audit,
		store:      d.Store,
		webpush:    d.WebPush,
		tipPresets: d.TipPresets,
		log:        log,
	}
}

// fail writes the error response matching the error kind. Anything that is not a
// validation, not-found or conflict error is logged and reported as 500.
func (h *Handler) fail(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	default:
		h.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", mw.RequestIDFrom(c)),
			zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

// idParam parses a positive integer path parameter, answering 400 when it is malformed.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
