package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeppex/mvp-sub001/controllers"
)

// Middlewares groups the route guards main wires in. The public guard is the
// rate limiter on the unauthenticated polling endpoint.
type Middlewares struct {
	Merchant gin.HandlerFunc
	Service  gin.HandlerFunc
	Public   gin.HandlerFunc
}

func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController, mw Middlewares) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public: customers poll the terminal's current order.
	public := r.Group("/pos/:posId/orders")
	if mw.Public != nil {
		public.Use(mw.Public)
	}
	public.GET("/current", oc.GetCurrentOrder)

	// Merchant session: terminal order management.
	pos := r.Group("/pos/:posId/orders")
	pos.Use(mw.Merchant)
	pos.POST("", oc.CreateOrder)
	pos.GET("", oc.ListOrders)

	orders := r.Group("/orders")
	orders.Use(mw.Merchant)
	orders.GET("/:orderId", oc.GetOrderByID)
	orders.POST("/:orderId/trigger-in-progress", oc.TriggerInProgress)
	orders.POST("/:orderId/cancel", oc.CancelOrder)

	// Service credential: settlement confirmation callback.
	internal := r.Group("/internal/orders")
	internal.Use(mw.Service)
	internal.POST("/:orderId/complete", oc.CompleteOrder)
}
