package router

import (
	"github.com/gin-gonic/gin"

	"nutriharvest_mall_v1_202608/internal/controller"
	"nutriharvest_mall_v1_202608/internal/middleware"
	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/service"
)

// Controllers 路由依赖的控制器集合
type Controllers struct {
	Auth         *controller.AuthController
	Product      *controller.ProductController
	Cart         *controller.CartController
	Coupon       *controller.CouponController
	Order        *controller.OrderController
	User         *controller.UserController
	CMS          *controller.CMSController
	Report       *controller.ReportController
	Notification *controller.NotificationController
}

// Guards 路由守卫依赖
type Guards struct {
	PermService  *service.PermissionService
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls *Controllers, guards *Guards) {
	r.Use(middleware.RequestID())

	// 1. 店面公开路由（无需登录）
	shop := r.Group("/api/shop")
	{
		shop.GET("/products", ctls.Product.Browse)
		shop.GET("/products/:slug", ctls.Product.BySlug)
		shop.GET("/categories", ctls.Product.Categories)
		shop.GET("/pages/:slug", ctls.CMS.PageBySlug)
		shop.GET("/banners", ctls.CMS.Banners)
	}

	// 2. 认证路由（登录/注册限流挡撞库）
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", middleware.RateLimit("5-M"), ctls.Auth.Register)
		auth.POST("/login", middleware.RateLimit("10-M"), ctls.Auth.Login)
		auth.POST("/refresh", ctls.Auth.Refresh)

		authed := auth.Group("", middleware.JWTAuth())
		{
			authed.GET("/profile", ctls.Auth.Profile)
			authed.PUT("/password", ctls.Auth.ChangePassword)
		}
	}

	// 3. 顾客路由（需登录）
	api := r.Group("/api", middleware.JWTAuth())
	{
		cart := api.Group("/cart")
		{
			cart.GET("", ctls.Cart.View)
			cart.DELETE("", ctls.Cart.Clear)
			cart.POST("/items", ctls.Cart.AddItem)
			cart.PUT("/items/:product_id", ctls.Cart.UpdateItem)
			cart.DELETE("/items/:product_id", ctls.Cart.RemoveItem)
		}

		wishlist := api.Group("/wishlist")
		{
			wishlist.GET("", ctls.Cart.ListWishlist)
			wishlist.POST("", ctls.Cart.AddWishlist)
			wishlist.DELETE("/:product_id", ctls.Cart.RemoveWishlist)
		}

		coupons := api.Group("/coupons")
		{
			coupons.POST("/apply", ctls.Coupon.Apply)
			coupons.DELETE("/apply", ctls.Coupon.Remove)
		}

		api.POST("/checkout", ctls.Order.Checkout)

		orders := api.Group("/orders")
		{
			orders.GET("", ctls.Order.MyOrders)
			orders.GET("/:id", ctls.Order.MyOrderDetail)
			orders.POST("/:id/cancel", ctls.Order.CancelMyOrder)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", ctls.Notification.List)
			notifications.POST("/:id/read", ctls.Notification.MarkRead)
		}
	}

	// 4. 后台管理路由：按 (模块, 动作) 走权限矩阵
	manage := r.Group("/api/manage", middleware.JWTAuth())
	{
		guard := func(m model.Module, a model.Action) gin.HandlerFunc {
			return middleware.RequirePermission(guards.PermService, guards.UserRepo, m, a)
		}

		products := manage.Group("", middleware.AuditLog(guards.ActivityRepo, model.ModuleProducts))
		{
			products.GET("/products", guard(model.ModuleProducts, model.ActionView), ctls.Product.List)
			products.GET("/products/low-stock", guard(model.ModuleProducts, model.ActionView), ctls.Product.LowStock)
			products.POST("/products", guard(model.ModuleProducts, model.ActionAdd), ctls.Product.Create)
			products.PUT("/products/:id", guard(model.ModuleProducts, model.ActionEdit), ctls.Product.Update)
			products.PUT("/products/:id/images", guard(model.ModuleProducts, model.ActionEdit), ctls.Product.SetImages)
			products.PATCH("/products/:id/stock", guard(model.ModuleProducts, model.ActionEdit), ctls.Product.AdjustStock)
			products.DELETE("/products/:id", guard(model.ModuleProducts, model.ActionDelete), ctls.Product.Delete)

			products.POST("/categories", guard(model.ModuleProducts, model.ActionAdd), ctls.Product.CreateCategory)
			products.PUT("/categories/:id", guard(model.ModuleProducts, model.ActionEdit), ctls.Product.UpdateCategory)
			products.DELETE("/categories/:id", guard(model.ModuleProducts, model.ActionDelete), ctls.Product.DeleteCategory)
		}

		orders := manage.Group("", middleware.AuditLog(guards.ActivityRepo, model.ModuleOrders))
		{
			orders.GET("/orders", guard(model.ModuleOrders, model.ActionView), ctls.Order.List)
			orders.GET("/orders/:id", guard(model.ModuleOrders, model.ActionView), ctls.Order.Detail)
			orders.POST("/orders/:id/:action", guard(model.ModuleOrders, model.ActionEdit), ctls.Order.UpdateStatus)
		}

		customers := manage.Group("", middleware.AuditLog(guards.ActivityRepo, model.ModuleCustomers))
		{
			customers.GET("/customers", guard(model.ModuleCustomers, model.ActionView), ctls.User.ListCustomers)
		}

		employees := manage.Group("", middleware.AuditLog(guards.ActivityRepo, model.ModuleEmployees))
		{
			employees.GET("/employees", guard(model.ModuleEmployees, model.ActionView), ctls.User.ListEmployees)
			employees.POST("/employees", guard(model.ModuleEmployees, model.ActionAdd), ctls.User.CreateEmployee)
		}

		reports := manage.Group("")
		{
			reports.GET("/reports/sales", guard(model.ModuleReports, model.ActionView), ctls.Report.Sales)
			reports.GET("/reports/top-products", guard(model.ModuleReports, model.ActionView), ctls.Report.TopProducts)
			reports.GET("/reports/dashboard", guard(model.ModuleReports, model.ActionView), ctls.Report.Dashboard)
		}

		cms := manage.Group("", middleware.AuditLog(guards.ActivityRepo, model.ModuleCMS))
		{
			cms.GET("/pages", guard(model.ModuleCMS, model.ActionView), ctls.CMS.ListPages)
			cms.POST("/pages", guard(model.ModuleCMS, model.ActionAdd), ctls.CMS.CreatePage)
			cms.PUT("/pages/:slug", guard(model.ModuleCMS, model.ActionEdit), ctls.CMS.UpdatePage)
			cms.DELETE("/pages/:id", guard(model.ModuleCMS, model.ActionDelete), ctls.CMS.DeletePage)

			cms.GET("/banners", guard(model.ModuleCMS, model.ActionView), ctls.CMS.ListBanners)
			cms.POST("/banners", guard(model.ModuleCMS, model.ActionAdd), ctls.CMS.CreateBanner)
			cms.DELETE("/banners/:id", guard(model.ModuleCMS, model.ActionDelete), ctls.CMS.DeleteBanner)
		}

		// 优惠券配置、账号与角色管理只对管理员开放
		admin := manage.Group("", middleware.RequireAdmin(guards.UserRepo))
		{
			admin.GET("/coupons", ctls.Coupon.List)
			admin.POST("/coupons", ctls.Coupon.Create)
			admin.PUT("/coupons/:id", ctls.Coupon.Update)
			admin.DELETE("/coupons/:id", ctls.Coupon.Delete)
			admin.GET("/coupons/:id/usages", ctls.Coupon.ListUsages)
			admin.DELETE("/coupons/usages/:usage_id", ctls.Coupon.DeleteUsage)

			admin.GET("/users", ctls.User.List)
			admin.PUT("/users/:id/active", ctls.User.SetActive)

			admin.PUT("/notification-templates", ctls.Notification.SaveTemplate)

			admin.GET("/roles", ctls.User.ListRoles)
			admin.DELETE("/roles/:id", ctls.User.DeleteRole)
			admin.GET("/roles/:id/permissions", ctls.User.ListPermissions)
			admin.PUT("/permissions", ctls.User.SetPermission)
			admin.DELETE("/permissions/:id", ctls.User.DeletePermission)
		}
	}
}
