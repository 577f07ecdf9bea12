package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pcparts_dev_v1/internal/config"
	"pcparts_dev_v1/internal/controller"
	"pcparts_dev_v1/internal/middleware"
	"pcparts_dev_v1/internal/model"
	"pcparts_dev_v1/internal/repository"
	"pcparts_dev_v1/internal/router"
	"pcparts_dev_v1/internal/service"
	"pcparts_dev_v1/internal/task"
	"pcparts_dev_v1/pkg/cache"
	"pcparts_dev_v1/pkg/database"
	"pcparts_dev_v1/pkg/logger"
)

func main() {
	// 金额字段以 JSON 数字输出（前端按 number 消费）
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()

	appLog, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLog.Sync()

	// 1. 初始化数据库
	db, err := database.InitDB(cfg.DatabaseDSN,
		&model.User{}, &model.Part{}, &model.Order{}, &model.OrderItem{},
	)
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	// 2. 初始化依赖
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Issuer:    cfg.JWTIssuer,
	})
	deps := initDependencies(db, cfg, appLog)

	// 3. 启动定时任务
	initTasks(deps, cfg, appLog)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers, middleware.JWTAuth(deps.Services.User))

	// 5. 启动服务
	startServer(r, cfg.ServerPort, appLog)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Part  repository.PartRepository
	User  repository.UserRepository
	Order repository.OrderRepository
}

// Services 服务集合
type Services struct {
	Catalog  *service.CatalogService
	User     *service.UserService
	Order    *service.OrderService
	Power    *service.PowerService
	Checkout *service.CheckoutService
	Import   *service.ImportService
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *config.Config, appLog logger.Logger) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Part:  repository.NewPartRepository(db),
		User:  repository.NewUserRepository(db),
		Order: repository.NewOrderRepository(db),
	}

	// -------- 缓存 --------
	var store cache.Store
	if cfg.CacheEnabled {
		store = cache.NewRedisStore(cfg.RedisAddr, cfg.RedisDB)
	} else {
		store = cache.NewNoopStore()
	}

	// -------- 外部抓取客户端 --------
	listingClient := service.NewListingClient(&service.ListingConfig{
		APIKey:     cfg.ListingAPIKey,
		BaseURL:    cfg.ListingBaseURL,
		Timeout:    cfg.ListingTimeout,
		FetchDelay: cfg.ImportDelay,
	}, appLog)

	// -------- 业务服务 --------
	services := &Services{
		Catalog: service.NewCatalogService(repos.Part, store, cfg.CacheTTL, appLog),
		User:    service.NewUserService(repos.User),
		Order:   service.NewOrderService(repos.Order, repos.Part),
		Power:   service.NewPowerService(repos.Part, appLog),
		Checkout: service.NewCheckoutService(&service.CheckoutConfig{
			APIKey:    cfg.StripeAPIKey,
			ReturnURL: cfg.CheckoutReturnURL,
			Currency:  cfg.Currency,
		}, appLog),
		Import: service.NewImportService(repos.Part, listingClient, cfg.ImportCategories, appLog),
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Part:     controller.NewPartController(services.Catalog, appLog),
		Auth:     controller.NewAuthController(services.User, appLog),
		Cart:     controller.NewCartController(services.Power, appLog),
		Order:    controller.NewOrderController(services.Order, appLog),
		Checkout: controller.NewCheckoutController(services.Checkout, services.Order, appLog),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies, cfg *config.Config, appLog logger.Logger) {
	if cfg.ListingBaseURL == "" {
		appLog.Infof("未配置抓取源，目录刷新任务不启动")
		return
	}
	importTask := task.NewListingImportTask(deps.Services.Import, cfg.ImportCron, appLog)
	if err := importTask.Start(); err != nil {
		appLog.Errorf("目录刷新任务启动失败: %v", err)
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务并处理优雅退出
func startServer(r *gin.Engine, port string, appLog logger.Logger) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		appLog.Infof("服务启动，监听 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Infof("收到退出信号，开始关闭")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Errorf("关闭超时: %v", err)
	}
}
