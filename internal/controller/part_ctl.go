package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pcparts_dev_v1/internal/api/dto"
	"pcparts_dev_v1/internal/service"
	"pcparts_dev_v1/pkg/logger"
)

// PartController 配件目录接口
type PartController struct {
	catalog *service.CatalogService
	log     logger.Logger
}

// NewPartController 创建配件控制器
func NewPartController(catalog *service.CatalogService, log logger.Logger) *PartController {
	return &PartController{catalog: catalog, log: log}
}

// GetParts 配件列表
// GET /api/parts?type=&manufacturer=&min_price=&max_price=&search=
func (ctrl *PartController) GetParts(c *gin.Context) {
	var query dto.PartListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	parts, err := ctrl.catalog.ListParts(c.Request.Context(), query)
	if err != nil {
		respondInternal(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, parts)
}

// GetPart 配件详情
// GET /api/parts/:id
func (ctrl *PartController) GetPart(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusNotFound, "part not found")
		return
	}

	part, err := ctrl.catalog.GetPart(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "part not found")
			return
		}
		respondInternal(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, part)
}
