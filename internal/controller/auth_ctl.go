package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pcparts_dev_v1/internal/api/dto"
	"pcparts_dev_v1/internal/service"
	"pcparts_dev_v1/pkg/logger"
)

// AuthController 注册 / 登录接口
type AuthController struct {
	users *service.UserService
	log   logger.Logger
}

// NewAuthController 创建鉴权控制器
func NewAuthController(users *service.UserService, log logger.Logger) *AuthController {
	return &AuthController{users: users, log: log}
}

// Register 用户注册
// POST /api/register
func (ctrl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := ctrl.users.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUsernameExists) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondInternal(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login 用户登录
// POST /api/login
// 任何形式的凭证不匹配都返回同一个 401 文案，不暴露用户名是否存在
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	resp, err := ctrl.users.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		respondInternal(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
