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
	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/config"
	"nutriharvest_mall_v1_202608/internal/controller"
	"nutriharvest_mall_v1_202608/internal/middleware"
	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/router"
	"nutriharvest_mall_v1_202608/internal/service"
	"nutriharvest_mall_v1_202608/internal/session"
	"nutriharvest_mall_v1_202608/internal/task"
	"nutriharvest_mall_v1_202608/pkg/database"
)

func main() {
	// 1. 加载配置
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		Issuer:          "nutriharvest-mall",
	})

	// 2. 初始化数据库与 Redis
	db := initDatabase(cfg)
	rdb := database.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// 3. 初始化依赖
	deps := initDependencies(cfg, db, session.NewRedisCouponStore(rdb, cfg.CouponTTL))

	// 4. 预置系统角色
	if err := deps.Services.Permission.SeedRoles(context.Background()); err != nil {
		log.Fatalf("预置角色失败: %v", err)
	}

	// 5. 启动定时任务
	tasks := initTasks(deps)
	defer stopTasks(tasks)

	// 6. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers, &router.Guards{
		PermService:  deps.Services.Permission,
		UserRepo:     deps.Repos.User,
		ActivityRepo: deps.Repos.Activity,
	})

	// 7. 启动服务
	startServer(r, cfg.ServerPort)
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
	User         repository.UserRepository
	Role         repository.RoleRepository
	Product      repository.ProductRepository
	Cart         repository.CartRepository
	Coupon       repository.CouponRepository
	Order        repository.OrderRepository
	CMS          repository.CMSRepository
	Notification repository.NotificationRepository
	Activity     repository.ActivityRepository
}

// Services 服务集合
type Services struct {
	Auth         *service.AuthService
	Permission   *service.PermissionService
	Pricing      *service.PricingService
	Product      *service.ProductService
	Cart         *service.CartService
	Coupon       *service.CouponService
	Checkout     *service.CheckoutService
	Order        *service.OrderService
	CMS          *service.CMSService
	Report       *service.ReportService
	Notification *service.NotificationService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.DatabaseDSN,
		// 用户与权限
		&model.Role{}, &model.Permission{}, &model.User{},
		&model.Employee{}, &model.Customer{}, &model.ActivityLog{},
		// 商品
		&model.Category{}, &model.Product{}, &model.ProductImage{},
		// 优惠券
		&model.Coupon{}, &model.CouponUsage{},
		// 购物车与订单
		&model.CartItem{}, &model.Wishlist{},
		&model.Order{}, &model.OrderItem{},
		// 内容
		&model.Page{}, &model.Banner{},
		// 通知
		&model.NotificationTemplate{}, &model.Notification{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, store session.CouponStore) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:         repository.NewUserRepository(db),
		Role:         repository.NewRoleRepository(db),
		Product:      repository.NewProductRepository(db),
		Cart:         repository.NewCartRepository(db),
		Coupon:       repository.NewCouponRepository(db),
		Order:        repository.NewOrderRepository(db),
		CMS:          repository.NewCMSRepository(db),
		Notification: repository.NewNotificationRepository(db),
		Activity:     repository.NewActivityRepository(db),
	}

	// -------- Service 层 --------
	pricing := service.NewPricingService()
	notification := service.NewNotificationService(repos.Notification, cfg.NotifyGatewayURL)
	coupon := service.NewCouponService(repos.Coupon, repos.Cart, pricing, store)

	services := &Services{
		Auth:         service.NewAuthService(repos.User, repos.Role),
		Permission:   service.NewPermissionService(repos.Role),
		Pricing:      pricing,
		Product:      service.NewProductService(repos.Product),
		Cart:         service.NewCartService(repos.Cart, repos.Product, coupon, pricing, store),
		Coupon:       coupon,
		Checkout:     service.NewCheckoutService(repos.Order, repos.Cart, repos.Coupon, repos.Product, repos.User, pricing, store, notification),
		Order:        service.NewOrderService(repos.Order),
		CMS:          service.NewCMSService(repos.CMS),
		Report:       service.NewReportService(repos.Order, repos.Product),
		Notification: notification,
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:         controller.NewAuthController(services.Auth),
		Product:      controller.NewProductController(services.Product),
		Cart:         controller.NewCartController(services.Cart),
		Coupon:       controller.NewCouponController(services.Coupon),
		Order:        controller.NewOrderController(services.Checkout, services.Order),
		User:         controller.NewUserController(services.Auth, services.Permission),
		CMS:          controller.NewCMSController(services.CMS),
		Report:       controller.NewReportController(services.Report),
		Notification: controller.NewNotificationController(services.Notification),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// stoppable 可停止的任务
type stoppable interface{ Stop() }

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) []stoppable {
	couponTask := task.NewCouponExpiryTask(deps.Repos.Coupon)
	couponTask.Start()

	stockTask := task.NewStockAlertTask(deps.Repos.Product, deps.Services.Notification)
	stockTask.Start()

	log.Println("定时任务已启动")
	return []stoppable{couponTask, stockTask}
}

func stopTasks(tasks []stoppable) {
	for _, t := range tasks {
		t.Stop()
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, port string) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
