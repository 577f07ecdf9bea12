package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pcparts_dev_v1/internal/api/dto"
	"pcparts_dev_v1/internal/service"
	"pcparts_dev_v1/pkg/logger"
)

// CartController 购物车功耗检查接口
type CartController struct {
	power *service.PowerService
	log   logger.Logger
}

// NewCartController 创建购物车控制器
func NewCartController(power *service.PowerService, log logger.Logger) *CartController {
	return &CartController{power: power, log: log}
}

// CheckTDP 购物车功耗检查
// POST /api/cart/tdp  body: {"ids": [...]}
// ids 缺失或不是数组返回 400；数组里的坏元素被静默跳过
func (ctrl *CartController) CheckTDP(c *gin.Context) {
	var req dto.PowerCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDs == nil {
		respondError(c, http.StatusBadRequest, "ids must be a list of part ids")
		return
	}

	resp, err := ctrl.power.CheckPower(c.Request.Context(), req.IDs)
	if err != nil {
		respondInternal(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
