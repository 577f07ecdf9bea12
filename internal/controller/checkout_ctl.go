package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v78"
	"gorm.io/gorm"

	"pcparts_dev_v1/internal/api/dto"
	"pcparts_dev_v1/internal/middleware"
	"pcparts_dev_v1/internal/service"
	"pcparts_dev_v1/pkg/logger"
)

// CheckoutController 支付会话接口，全部要求登录
type CheckoutController struct {
	checkout *service.CheckoutService
	orders   *service.OrderService
	log      logger.Logger
}

// NewCheckoutController 创建支付控制器
func NewCheckoutController(checkout *service.CheckoutService, orders *service.OrderService, log logger.Logger) *CheckoutController {
	return &CheckoutController{checkout: checkout, orders: orders, log: log}
}

// CreateSession 为自己的订单创建支付会话
// POST /api/checkout/session  body: {"order_id": ...}
func (ctrl *CheckoutController) CreateSession(c *gin.Context) {
	var req dto.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "order_id is required")
		return
	}

	userID := middleware.CurrentUserID(c)
	order, err := ctrl.orders.GetOwnedOrder(c.Request.Context(), userID, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "order not found")
			return
		}
		respondInternal(c, ctrl.log, err)
		return
	}

	resp, err := ctrl.checkout.CreateSession(c.Request.Context(), order)
	if err != nil {
		ctrl.respondUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SessionStatus 查询支付会话状态
// GET /api/checkout/session/:id/status
func (ctrl *CheckoutController) SessionStatus(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		respondError(c, http.StatusBadRequest, "session id is required")
		return
	}

	resp, err := ctrl.checkout.SessionStatus(c.Request.Context(), sessionID)
	if err != nil {
		ctrl.respondUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// respondUpstream 支付方错误：消息可安全转发时带上游文案，否则走通用 500
func (ctrl *CheckoutController) respondUpstream(c *gin.Context, err error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		ctrl.log.Warnf("支付接口错误 code=%s: %s", stripeErr.Code, stripeErr.Msg)
		status := http.StatusInternalServerError
		if stripeErr.HTTPStatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
		respondError(c, status, stripeErr.Msg)
		return
	}
	respondInternal(c, ctrl.log, err)
}
