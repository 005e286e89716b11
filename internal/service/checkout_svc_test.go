package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/session"
)

// ==================== 测试辅助 ====================

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	err = db.AutoMigrate(
		&model.Role{}, &model.User{}, &model.Customer{},
		&model.Category{}, &model.Product{},
		&model.Coupon{}, &model.CouponUsage{},
		&model.CartItem{},
		&model.Order{}, &model.OrderItem{},
	)
	if err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

type checkoutFixture struct {
	svc   *CheckoutService
	store session.CouponStore
	db    *gorm.DB
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	db := setupCheckoutTestDB(t)
	store := session.NewMemoryCouponStore()
	svc := NewCheckoutService(
		repository.NewOrderRepository(db),
		repository.NewCartRepository(db),
		repository.NewCouponRepository(db),
		repository.NewProductRepository(db),
		repository.NewUserRepository(db),
		NewPricingService(),
		store,
		nil, // 通知走外部网关，结算测试不关心
	)
	return &checkoutFixture{svc: svc, store: store, db: db}
}

// seedCustomer 建用户与顾客档案
func (f *checkoutFixture) seedCustomer(t *testing.T, userID int64) {
	user := model.User{ID: userID, Username: "买家", Password: "x", IsActive: true}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	customer := model.Customer{UserID: userID}
	if err := f.db.Create(&customer).Error; err != nil {
		t.Fatalf("创建顾客档案失败: %v", err)
	}
}

// seedProduct 建商品并加入购物车
func (f *checkoutFixture) seedProduct(t *testing.T, userID int64, slug, price string, stock, qty int) *model.Product {
	product := model.Product{
		CategoryID: 1, Name: slug, Slug: slug,
		Price: d(price), Stock: stock, IsActive: true,
	}
	if err := f.db.Create(&product).Error; err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	item := model.CartItem{UserID: userID, ProductID: product.ID, Quantity: qty}
	if err := f.db.Create(&item).Error; err != nil {
		t.Fatalf("创建购物车项失败: %v", err)
	}
	return &product
}

func testShipping() ShippingInfo {
	return ShippingInfo{
		Name: "张三", Email: "zs@example.com", Mobile: "13800000000",
		Address: "幸福路 1 号", City: "上海", Pincode: "200000",
	}
}

func (f *checkoutFixture) stockOf(t *testing.T, productID int64) int {
	var product model.Product
	if err := f.db.First(&product, productID).Error; err != nil {
		t.Fatalf("查询商品失败: %v", err)
	}
	return product.Stock
}

func (f *checkoutFixture) cartSize(userID int64) int64 {
	var n int64
	f.db.Model(&model.CartItem{}).Where("user_id = ?", userID).Count(&n)
	return n
}

func (f *checkoutFixture) orderCount() int64 {
	var n int64
	f.db.Model(&model.Order{}).Count(&n)
	return n
}

// ==================== 单元测试 ====================

func TestCheckout_HappyPath(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.seedCustomer(t, 1)
	oats := f.seedProduct(t, 1, "oats", "25.50", 10, 2)
	honey := f.seedProduct(t, 1, "honey", "48.00", 5, 1)

	order, err := f.svc.Checkout(ctx, 1, testShipping(), model.PaymentModeCOD)
	if err != nil {
		t.Fatalf("Checkout 失败: %v", err)
	}

	// 金额：25.50*2 + 48.00 = 99.00
	if !order.Subtotal.Equal(d("99.00")) {
		t.Errorf("subtotal = %s, want 99.00", order.Subtotal)
	}
	if !order.TotalAmount.Equal(d("99.00")) {
		t.Errorf("total = %s, want 99.00", order.TotalAmount)
	}
	if order.OrderStatus != model.OrderStatusPending {
		t.Errorf("status = %s, want pending", order.OrderStatus)
	}
	if len(order.Items) != 2 {
		t.Fatalf("订单行数 = %d, want 2", len(order.Items))
	}

	// 库存已扣
	if got := f.stockOf(t, oats.ID); got != 8 {
		t.Errorf("oats 库存 = %d, want 8", got)
	}
	if got := f.stockOf(t, honey.ID); got != 4 {
		t.Errorf("honey 库存 = %d, want 4", got)
	}

	// 购物车已清空
	if n := f.cartSize(1); n != 0 {
		t.Errorf("购物车剩余 %d 行, want 0", n)
	}

	// 顾客累计已更新
	var customer model.Customer
	f.db.Where("user_id = ?", 1).First(&customer)
	if customer.TotalOrders != 1 {
		t.Errorf("total_orders = %d, want 1", customer.TotalOrders)
	}
	if !customer.TotalSpent.Equal(d("99.00")) {
		t.Errorf("total_spent = %s, want 99.00", customer.TotalSpent)
	}
}

func TestCheckout_WithCoupon(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.seedCustomer(t, 1)
	f.seedProduct(t, 1, "oats", "100.00", 10, 1)

	mp := d("50")
	coupon := model.Coupon{
		Code: "SAVE10", CouponType: model.CouponPercentage, DiscountValue: d("10"),
		IsActive: true, ValidFrom: time.Now().Add(-time.Hour),
		MinPurchaseAmount: &mp, MaxUsesPerUser: 1,
	}
	if err := f.db.Create(&coupon).Error; err != nil {
		t.Fatalf("创建优惠券失败: %v", err)
	}
	if err := f.store.Set(ctx, 1, "SAVE10"); err != nil {
		t.Fatalf("挂券失败: %v", err)
	}

	order, err := f.svc.Checkout(ctx, 1, testShipping(), model.PaymentModeOnline)
	if err != nil {
		t.Fatalf("Checkout 失败: %v", err)
	}

	if !order.DiscountAmount.Equal(d("10.00")) {
		t.Errorf("discount = %s, want 10.00", order.DiscountAmount)
	}
	if !order.TotalAmount.Equal(d("90.00")) {
		t.Errorf("total = %s, want 90.00", order.TotalAmount)
	}
	if order.CouponCode != "SAVE10" {
		t.Errorf("coupon_code = %s, want SAVE10", order.CouponCode)
	}

	// 券已核销：计数 +1，使用记录落库
	var got model.Coupon
	f.db.First(&got, coupon.ID)
	if got.UsedCount != 1 {
		t.Errorf("used_count = %d, want 1", got.UsedCount)
	}
	var usageCount int64
	f.db.Model(&model.CouponUsage{}).Where("coupon_id = ? AND user_id = ?", coupon.ID, 1).Count(&usageCount)
	if usageCount != 1 {
		t.Errorf("使用记录数 = %d, want 1", usageCount)
	}

	// 会话优惠码结算后清除
	if code, _ := f.store.Get(ctx, 1); code != "" {
		t.Errorf("结算后会话优惠码应清除, got %q", code)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCustomer(t, 1)

	_, err := f.svc.Checkout(context.Background(), 1, testShipping(), model.PaymentModeCOD)
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("err = %v, want ErrEmptyCart", err)
	}
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.seedCustomer(t, 1)
	oats := f.seedProduct(t, 1, "oats", "10.00", 10, 2)
	honey := f.seedProduct(t, 1, "honey", "20.00", 1, 3) // 库存只有 1，要买 3

	_, err := f.svc.Checkout(ctx, 1, testShipping(), model.PaymentModeCOD)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	// 全部回滚：先扣掉的 oats 库存要还回来
	if got := f.stockOf(t, oats.ID); got != 10 {
		t.Errorf("oats 库存 = %d, want 10（应回滚）", got)
	}
	if got := f.stockOf(t, honey.ID); got != 1 {
		t.Errorf("honey 库存 = %d, want 1", got)
	}
	if n := f.orderCount(); n != 0 {
		t.Errorf("订单数 = %d, want 0", n)
	}
	if n := f.cartSize(1); n != 2 {
		t.Errorf("购物车应保留, got %d 行", n)
	}
}

func TestCheckout_ExhaustedCouponRollsBack(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.seedCustomer(t, 1)
	oats := f.seedProduct(t, 1, "oats", "100.00", 10, 1)

	// 名额已被抢完但预检时计数还没同步到的场景：
	// 这里直接造一张单人上限已用完的券，预检过、事务内终审挡下
	coupon := model.Coupon{
		Code: "ONCE", CouponType: model.CouponFixed, DiscountValue: d("10"),
		IsActive: true, ValidFrom: time.Now().Add(-time.Hour), MaxUsesPerUser: 1,
	}
	if err := f.db.Create(&coupon).Error; err != nil {
		t.Fatalf("创建优惠券失败: %v", err)
	}
	usage := model.CouponUsage{CouponID: coupon.ID, UserID: 1, OrderID: 9999, UsedAt: time.Now()}
	if err := f.db.Create(&usage).Error; err != nil {
		t.Fatalf("创建使用记录失败: %v", err)
	}
	if err := f.store.Set(ctx, 1, "ONCE"); err != nil {
		t.Fatalf("挂券失败: %v", err)
	}

	_, err := f.svc.Checkout(ctx, 1, testShipping(), model.PaymentModeCOD)
	if !errors.Is(err, ErrCouponNotApplicable) {
		t.Fatalf("err = %v, want ErrCouponNotApplicable", err)
	}

	// 订单与库存全部回滚
	if n := f.orderCount(); n != 0 {
		t.Errorf("订单数 = %d, want 0", n)
	}
	if got := f.stockOf(t, oats.ID); got != 10 {
		t.Errorf("库存 = %d, want 10（应回滚）", got)
	}
	var gotCoupon model.Coupon
	f.db.First(&gotCoupon, coupon.ID)
	if gotCoupon.UsedCount != 0 {
		t.Errorf("used_count = %d, want 0", gotCoupon.UsedCount)
	}
}

func TestCheckout_PriceSnapshotUsesDiscountPrice(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.seedCustomer(t, 1)
	product := f.seedProduct(t, 1, "oats", "30.00", 10, 2)

	// 商品挂了折扣价，订单行按折扣价快照
	dp := d("24.99")
	product.DiscountPrice = &dp
	if err := f.db.Save(product).Error; err != nil {
		t.Fatalf("更新商品失败: %v", err)
	}

	order, err := f.svc.Checkout(ctx, 1, testShipping(), model.PaymentModeCOD)
	if err != nil {
		t.Fatalf("Checkout 失败: %v", err)
	}
	if len(order.Items) != 1 {
		t.Fatalf("订单行数 = %d, want 1", len(order.Items))
	}
	if !order.Items[0].Price.Equal(d("24.99")) {
		t.Errorf("成交单价 = %s, want 24.99", order.Items[0].Price)
	}
	if !order.Subtotal.Equal(d("49.98")) {
		t.Errorf("subtotal = %s, want 49.98", order.Subtotal)
	}
}
