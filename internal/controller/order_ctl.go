package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pcparts_dev_v1/internal/api/dto"
	"pcparts_dev_v1/internal/middleware"
	"pcparts_dev_v1/internal/service"
	"pcparts_dev_v1/pkg/logger"
)

// OrderController 订单接口，全部要求登录
type OrderController struct {
	orders *service.OrderService
	log    logger.Logger
}

// NewOrderController 创建订单控制器
func NewOrderController(orders *service.OrderService, log logger.Logger) *OrderController {
	return &OrderController{orders: orders, log: log}
}

// CreateOrder 下单
// POST /api/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "order_items_input is required")
		return
	}

	userID := middleware.CurrentUserID(c)
	order, err := ctrl.orders.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		var notFound *service.PartsNotFoundError
		switch {
		case errors.Is(err, service.ErrEmptyOrder), errors.Is(err, service.ErrInvalidQuantity):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.As(err, &notFound):
			respondError(c, http.StatusNotFound, notFound.Error())
		default:
			respondInternal(c, ctrl.log, err)
		}
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders 当前用户订单列表，新订单在前
// GET /api/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	orders, err := ctrl.orders.ListOrders(c.Request.Context(), userID)
	if err != nil {
		respondInternal(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
