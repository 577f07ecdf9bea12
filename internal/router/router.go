package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pcparts_dev_v1/internal/controller"
)

// Controllers 控制器集合
type Controllers struct {
	Part     *controller.PartController
	Auth     *controller.AuthController
	Cart     *controller.CartController
	Order    *controller.OrderController
	Checkout *controller.CheckoutController
}

// SetupRouter 注册所有路由
// authMW 为 JWT 鉴权中间件，订单与支付路由必须登录
func SetupRouter(ctl *Controllers, authMW gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 前端开发服务器跨域
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	{
		// 目录（公开）
		parts := api.Group("/parts")
		{
			parts.GET("", ctl.Part.GetParts)
			parts.GET("/:id", ctl.Part.GetPart)
		}

		// 注册 / 登录（公开）
		api.POST("/register", ctl.Auth.Register)
		api.POST("/login", ctl.Auth.Login)

		// 购物车功耗检查（公开）
		api.POST("/cart/tdp", ctl.Cart.CheckTDP)

		// 订单（需登录）
		orders := api.Group("/orders", authMW)
		{
			orders.GET("", ctl.Order.ListOrders)
			orders.POST("", ctl.Order.CreateOrder)
		}

		// 支付会话（需登录）
		checkout := api.Group("/checkout", authMW)
		{
			checkout.POST("/session", ctl.Checkout.CreateSession)
			checkout.GET("/session/:id/status", ctl.Checkout.SessionStatus)
		}
	}

	return r
}
