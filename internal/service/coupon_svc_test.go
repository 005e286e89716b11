package service

import (
	"context"
	"errors"
	"fmt"
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

func setupCouponTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	err = db.AutoMigrate(
		&model.Category{}, &model.Product{},
		&model.CartItem{},
		&model.Coupon{}, &model.CouponUsage{},
	)
	if err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

type couponFixture struct {
	svc   *CouponService
	store session.CouponStore
	db    *gorm.DB
}

func newCouponFixture(t *testing.T) *couponFixture {
	db := setupCouponTestDB(t)
	store := session.NewMemoryCouponStore()
	svc := NewCouponService(
		repository.NewCouponRepository(db),
		repository.NewCartRepository(db),
		NewPricingService(),
		store,
	)
	return &couponFixture{svc: svc, store: store, db: db}
}

// fillCart 给用户塞一件指定单价的商品
func (f *couponFixture) fillCart(t *testing.T, userID int64, price string, qty int) {
	product := model.Product{
		CategoryID: 1,
		Name:       "有机燕麦",
		Slug:       fmt.Sprintf("organic-oats-%d", userID),
		Price:      d(price),
		Stock:      100,
		IsActive:   true,
	}
	if err := f.db.Create(&product).Error; err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	item := model.CartItem{UserID: userID, ProductID: product.ID, Quantity: qty}
	if err := f.db.Create(&item).Error; err != nil {
		t.Fatalf("创建购物车项失败: %v", err)
	}
}

func (f *couponFixture) createCoupon(t *testing.T, coupon *model.Coupon) *model.Coupon {
	if coupon.ValidFrom.IsZero() {
		coupon.ValidFrom = time.Now().Add(-time.Hour)
	}
	if err := f.db.Create(coupon).Error; err != nil {
		t.Fatalf("创建优惠券失败: %v", err)
	}
	return coupon
}

// ==================== 单元测试 ====================

func TestApply_Success(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()
	f.fillCart(t, 1, "60.00", 1)
	mp := d("50")
	f.createCoupon(t, &model.Coupon{
		Code: "WELCOME10", CouponType: model.CouponPercentage,
		DiscountValue: d("10"), IsActive: true, MinPurchaseAmount: &mp,
	})

	coupon, err := f.svc.Apply(ctx, 1, "WELCOME10")
	if err != nil {
		t.Fatalf("Apply 失败: %v", err)
	}
	if coupon.Code != "WELCOME10" {
		t.Errorf("code = %s, want WELCOME10", coupon.Code)
	}

	// 会话里应记下这张券
	code, _ := f.store.Get(ctx, 1)
	if code != "WELCOME10" {
		t.Errorf("会话优惠码 = %q, want WELCOME10", code)
	}
}

func TestApply_NotFound(t *testing.T) {
	f := newCouponFixture(t)

	_, err := f.svc.Apply(context.Background(), 1, "NOPE")
	if !errors.Is(err, ErrCouponNotFound) {
		t.Errorf("err = %v, want ErrCouponNotFound", err)
	}
}

func TestApply_NotApplicable(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()
	f.fillCart(t, 1, "30.00", 1)

	// 已停用
	f.createCoupon(t, &model.Coupon{
		Code: "DISABLED", CouponType: model.CouponFixed, DiscountValue: d("5"), IsActive: false,
	})
	if _, err := f.svc.Apply(ctx, 1, "DISABLED"); !errors.Is(err, ErrCouponNotApplicable) {
		t.Errorf("停用券 err = %v, want ErrCouponNotApplicable", err)
	}

	// 已过期
	past := time.Now().Add(-time.Minute)
	f.createCoupon(t, &model.Coupon{
		Code: "EXPIRED", CouponType: model.CouponFixed, DiscountValue: d("5"),
		IsActive: true, ValidTo: &past,
	})
	if _, err := f.svc.Apply(ctx, 1, "EXPIRED"); !errors.Is(err, ErrCouponNotApplicable) {
		t.Errorf("过期券 err = %v, want ErrCouponNotApplicable", err)
	}

	// 门槛不足：购物车只有 30
	mp := d("50")
	f.createCoupon(t, &model.Coupon{
		Code: "MIN50", CouponType: model.CouponFixed, DiscountValue: d("5"),
		IsActive: true, MinPurchaseAmount: &mp,
	})
	if _, err := f.svc.Apply(ctx, 1, "MIN50"); !errors.Is(err, ErrCouponNotApplicable) {
		t.Errorf("门槛不足 err = %v, want ErrCouponNotApplicable", err)
	}

	// 一张都没挂上
	if code, _ := f.store.Get(ctx, 1); code != "" {
		t.Errorf("失败的 Apply 不应写会话, got %q", code)
	}
}

func TestApply_UserLimitReached(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()
	f.fillCart(t, 1, "100.00", 1)
	coupon := f.createCoupon(t, &model.Coupon{
		Code: "ONCE", CouponType: model.CouponFixed, DiscountValue: d("10"),
		IsActive: true, MaxUsesPerUser: 1,
	})

	// 用户 1 已经用过一次
	usage := model.CouponUsage{CouponID: coupon.ID, UserID: 1, OrderID: 99, UsedAt: time.Now()}
	if err := f.db.Create(&usage).Error; err != nil {
		t.Fatalf("创建使用记录失败: %v", err)
	}

	if _, err := f.svc.Apply(ctx, 1, "ONCE"); !errors.Is(err, ErrCouponNotApplicable) {
		t.Errorf("单人上限 err = %v, want ErrCouponNotApplicable", err)
	}

	// 别的用户不受影响
	f.fillCart(t, 2, "100.00", 1)
	if _, err := f.svc.Apply(ctx, 2, "ONCE"); err != nil {
		t.Errorf("用户 2 Apply 失败: %v", err)
	}
}

func TestApplied_StaleCode(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	// 会话里挂着一个已被删除的码：展示层拿到 nil，不报错
	if err := f.store.Set(ctx, 1, "GONE"); err != nil {
		t.Fatalf("写会话失败: %v", err)
	}
	coupon, err := f.svc.Applied(ctx, 1)
	if err != nil {
		t.Fatalf("Applied 失败: %v", err)
	}
	if coupon != nil {
		t.Errorf("失效码应返回 nil, got %+v", coupon)
	}

	// 没挂码同样返回 nil
	coupon, err = f.svc.Applied(ctx, 2)
	if err != nil || coupon != nil {
		t.Errorf("未挂码应返回 (nil, nil), got (%+v, %v)", coupon, err)
	}
}

func TestApplied_ExpiredAfterApply(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()
	f.fillCart(t, 1, "100.00", 1)
	coupon := f.createCoupon(t, &model.Coupon{
		Code: "SOONGONE", CouponType: model.CouponFixed, DiscountValue: d("10"), IsActive: true,
	})

	if _, err := f.svc.Apply(ctx, 1, "SOONGONE"); err != nil {
		t.Fatalf("Apply 失败: %v", err)
	}

	// 挂上之后管理员把券停用：展示层立刻看不到折扣
	coupon.IsActive = false
	if err := f.db.Save(coupon).Error; err != nil {
		t.Fatalf("停用券失败: %v", err)
	}
	got, err := f.svc.Applied(ctx, 1)
	if err != nil {
		t.Fatalf("Applied 失败: %v", err)
	}
	if got != nil {
		t.Errorf("停用后的券不应再挂在购物车上, got %+v", got)
	}
}

func TestRemove(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	if err := f.store.Set(ctx, 1, "SAVE10"); err != nil {
		t.Fatalf("写会话失败: %v", err)
	}
	if err := f.svc.Remove(ctx, 1); err != nil {
		t.Fatalf("Remove 失败: %v", err)
	}
	if code, _ := f.store.Get(ctx, 1); code != "" {
		t.Errorf("移除后会话应为空, got %q", code)
	}
}
