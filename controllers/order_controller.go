package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaudhary-hadi27/usman-fast-food/apperrors"
	"github.com/chaudhary-hadi27/usman-fast-food/metrics"
	"github.com/chaudhary-hadi27/usman-fast-food/models"
	"github.com/chaudhary-hadi27/usman-fast-food/services"
)

type OrderController struct {
	Orders  *services.OrderService
	Carts   *services.CartService
	Metrics *metrics.ServerMetrics
}

func NewOrderController(orders *services.OrderService, carts *services.CartService, m *metrics.ServerMetrics) *OrderController {
	return &OrderController{
		Orders:  orders,
		Carts:   carts,
		Metrics: m,
	}
}

type trackResponse struct {
	*models.Order
	EstimatedTime string `json:"estimatedTime"`
}

// CreateOrder validates and persists a new order, then clears the session's
// cart exactly once.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	idemKey := c.GetHeader("Idempotency-Key")
	order, err := oc.Orders.CreateOrder(c.Request.Context(), &req, idemKey)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	if oc.Metrics != nil {
		oc.Metrics.OrdersCreated.Inc()
	}

	// The submitted cart is spent. Best-effort: a failed clear leaves a
	// stale slot behind, never a failed order.
	if sessionID, cerr := c.Cookie(SessionCookieName); cerr == nil && sessionID != "" {
		if _, cerr := oc.Carts.Clear(c.Request.Context(), sessionID); cerr != nil {
			zap.L().Warn("failed to clear cart after order", zap.String("order_id", order.OrderID), zap.Error(cerr))
		}
	}

	c.JSON(http.StatusCreated, order)
}

// TrackOrder is the customer-facing lookup with the ETA string attached.
func (oc *OrderController) TrackOrder(c *gin.Context) {
	order, err := oc.Orders.Lookup(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, trackResponse{
		Order:         order,
		EstimatedTime: order.Status.EstimatedTime(),
	})
}

// OrderHistory returns a customer's past orders by email.
func (oc *OrderController) OrderHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	orders, err := oc.Orders.HistoryByEmail(c.Request.Context(), c.Query("email"), limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type cancelRequest struct {
	CancelReason string `json:"cancelReason"`
}

// CancelOrder lets the customer cancel while the order is still Pending or
// Confirmed.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	order, err := oc.Orders.Transition(c.Request.Context(), &services.TransitionRequest{
		OrderID:      c.Param("order_id"),
		Status:       models.StatusCancelled,
		CancelReason: req.CancelReason,
	}, models.ActorCustomer)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrders is the admin bulk read with optional status filter.
func (oc *OrderController) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	status := models.OrderStatus(c.Query("status"))

	orders, err := oc.Orders.ListAll(c.Request.Context(), status, limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type updateStatusRequest struct {
	Status       models.OrderStatus `json:"status" binding:"required"`
	CancelReason string             `json:"cancelReason"`
}

// UpdateStatus is the admin transition endpoint.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	order, err := oc.Orders.Transition(c.Request.Context(), &services.TransitionRequest{
		OrderID:      c.Param("order_id"),
		Status:       req.Status,
		CancelReason: req.CancelReason,
	}, models.ActorAdmin)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
