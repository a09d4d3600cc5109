package api

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"restaurant-floor-backend/config"
	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(d Deps, cfg *config.Config) *gin.Engine {
	r := gin.New()
	handler := NewHandler(d)

	r.Use(gin.Recovery(), mw.RequestID(), mw.AccessLog(handler.log))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	// Closed days never change, so their reads are cached.
	cacheStore := cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.Server.CacheTTL)

	poll := mw.PollInterval(cfg.Display.PollIntervalSeconds)
	floor := mw.RequireRole(model.RoleServer, model.RoleManager, model.RoleAdmin)
	managers := mw.RequireRole(model.RoleManager, model.RoleAdmin)

	r.GET("/api/vapid_public_key", rateLimiter, handler.GetVAPIDPublicKey)

	api := r.Group("/api")
	api.Use(rateLimiter, mw.Authenticate())
	{
		api.POST("/tables/:id/orders", floor, handler.OpenOrder)

		api.GET("/orders/:id", handler.GetOrder)
		api.POST("/orders/:id/items", floor, handler.SubmitItems)
		api.PATCH("/orders/:id/status", floor, handler.SetOrderStatus)
		api.POST("/orders/:id/discounts", floor, handler.ApplyDiscount)
		api.DELETE("/orders/:id/discounts/:appId", floor, handler.RemoveDiscount)
		api.GET("/orders/:id/bill", handler.PreviewBill)
		api.POST("/orders/:id/payment", floor, handler.SettlePayment)

		api.PATCH("/items/:id/status", handler.TransitionItem)
		api.GET("/discounts", handler.ListDiscounts)

		// Reconciliation reads polled by displays
		api.GET("/stations/:destination/items", poll, handler.ListStationItems)
		api.GET("/servers/:id/orders", poll, handler.ListServerOrders)

		api.POST("/daily-close", managers, handler.CloseDay)
		api.GET("/daily-close/:date", managers, caching, handler.GetDailyClose)
		api.GET("/daily-close/:date/preview", managers, handler.PreviewDay)
		api.GET("/audit", managers, handler.ListAudit)

		api.GET("/push-subscriptions", handler.GetSubscriptions)
		api.PUT("/push-subscriptions", handler.PutSubscription)
		api.DELETE("/push-subscriptions", handler.DeleteSubscription)
	}

	return r
}
