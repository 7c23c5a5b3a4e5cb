package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/models"
	"storefront/services"
)

type OrderController struct {
	orders *services.OrderService
	logger *slog.Logger
}

func NewOrderController(orders *services.OrderService, logger *slog.Logger) *OrderController {
	return &OrderController{orders: orders, logger: logger}
}

// PlaceOrder godoc
// @Summary Place order from cart
// @Description Converts the caller's cart into an order, decrementing stock atomically
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.PlaceOrderRequest true "Checkout"
// @Success 201 {object} models.Response{data=models.Order}
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /order/place [post]
func (ctrl *OrderController) PlaceOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := ctrl.orders.PlaceOrder(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	respond(c, http.StatusCreated, "Order placed successfully", order)
}

// GetMyOrders godoc
// @Summary List my orders
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Order}
// @Router /order/my [get]
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.orders.ListMyOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	respond(c, http.StatusOK, "Orders retrieved successfully", orders)
}

// GetOrder godoc
// @Summary Get order
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /order/{id} [get]
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "Invalid order ID", nil)
		return
	}

	order, err := ctrl.orders.GetOrder(c.Request.Context(), userID, c.GetString(middleware.ContextUserRole), id)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	respond(c, http.StatusOK, "Order retrieved successfully", order)
}

// UpdateOrderStatus godoc
// @Summary Update order status
// @Tags Admin - Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body models.UpdateOrderStatusRequest true "Status"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 400 {object} models.Response
// @Failure 409 {object} models.Response
// @Router /admin/orders/{id}/status [patch]
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "Invalid order ID", nil)
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := ctrl.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	respond(c, http.StatusOK, "Order status updated", order)
}
