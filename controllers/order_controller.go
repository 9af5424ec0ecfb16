package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zeppex/mvp-sub001/middleware"
	"github.com/zeppex/mvp-sub001/services"
)

type OrderController struct {
	Orders        *services.OrderService
	Queries       *services.OrderQueryService
	PublicBaseURL string
	Logger        *zap.Logger
}

// CreateOrder creates a new payment order on a terminal, superseding any
// order still live on it.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		Amount      int64  `json:"amount" binding:"required"`
		Currency    string `json:"currency"`
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	posID := c.Param("posId")
	merchantID, _ := middleware.GetMerchantID(c)

	order, serviceErr := oc.Orders.Create(c.Request.Context(), services.CreateOrderInput{
		PosID:       posID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	oc.Logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("pos_id", posID),
		zap.String("merchant_id", merchantID),
	)

	c.JSON(http.StatusCreated, gin.H{
		"order":       order,
		"payment_url": fmt.Sprintf("%s/pos/%s", oc.PublicBaseURL, posID),
	})
}

// GetCurrentOrder is the public polling endpoint the payment page renders
// its countdown and amount from.
func (oc *OrderController) GetCurrentOrder(c *gin.Context) {
	view, serviceErr := oc.Queries.GetCurrent(c.Param("posId"))
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListOrders returns the terminal's order history for the merchant dashboard.
func (oc *OrderController) ListOrders(c *gin.Context) {
	orders := oc.Queries.ListForPos(c.Param("posId"))
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// TriggerInProgress moves an ACTIVE order to IN_PROGRESS once the customer
// picks a payment rail.
func (oc *OrderController) TriggerInProgress(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, serviceErr := oc.Orders.TriggerInProgress(orderID)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder cancels a live order on merchant request.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "merchant_cancelled"
	}

	order, serviceErr := oc.Orders.Cancel(orderID, req.Reason)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CompleteOrder is the settlement confirmation callback. Duplicate
// deliveries are absorbed by the idempotent engine transition.
func (oc *OrderController) CompleteOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, serviceErr := oc.Orders.Complete(orderID)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetOrderByID returns the full order record for the merchant dashboard.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, serviceErr := oc.Queries.GetByID(orderID)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func parseOrderID(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return uuid.UUID{}, false
	}
	return orderID, true
}

func respondError(c *gin.Context, err *services.ServiceError) {
	c.JSON(err.StatusCode, gin.H{"error": err.Message, "code": err.Kind})
}
