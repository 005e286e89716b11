package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nutriharvest_mall_v1_202608/internal/model"
)

// ==================== 测试辅助 ====================

func setupCouponRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Coupon{}, &model.CouponUsage{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

func mustCreateCoupon(t *testing.T, db *gorm.DB, coupon *model.Coupon) *model.Coupon {
	if coupon.ValidFrom.IsZero() {
		coupon.ValidFrom = time.Now().Add(-time.Hour)
	}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("创建优惠券失败: %v", err)
	}
	return coupon
}

// redeemInTx 在单独事务里跑一次核销，模拟一次结算
func redeemInTx(db *gorm.DB, repo CouponRepository, couponID, userID, orderID int64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return repo.Redeem(context.Background(), tx, couponID, userID, orderID, decimal.NewFromInt(10))
	})
}

// ==================== 单元测试 ====================

func TestRedeem_ExhaustsGlobalLimit(t *testing.T) {
	db := setupCouponRepoTestDB(t)
	repo := NewCouponRepository(db)
	ctx := context.Background()

	maxUses := 2
	coupon := mustCreateCoupon(t, db, &model.Coupon{
		Code: "LIMITED2", CouponType: model.CouponFixed, DiscountValue: decimal.NewFromInt(10),
		IsActive: true, MaxUses: &maxUses, MaxUsesPerUser: 1,
	})

	// 两个名额发给两个用户
	if err := redeemInTx(db, repo, coupon.ID, 1, 101); err != nil {
		t.Fatalf("第一次核销失败: %v", err)
	}
	if err := redeemInTx(db, repo, coupon.ID, 2, 102); err != nil {
		t.Fatalf("第二次核销失败: %v", err)
	}

	// 第三个人抢不到
	err := redeemInTx(db, repo, coupon.ID, 3, 103)
	if !errors.Is(err, ErrCouponExhausted) {
		t.Errorf("err = %v, want ErrCouponExhausted", err)
	}

	got, err := repo.GetByID(ctx, coupon.ID)
	if err != nil {
		t.Fatalf("查询券失败: %v", err)
	}
	if got.UsedCount != 2 {
		t.Errorf("used_count = %d, want 2（失败的核销不应计数）", got.UsedCount)
	}

	var usageCount int64
	db.Model(&model.CouponUsage{}).Where("coupon_id = ?", coupon.ID).Count(&usageCount)
	if usageCount != 2 {
		t.Errorf("使用记录数 = %d, want 2", usageCount)
	}
}

func TestRedeem_UserLimit(t *testing.T) {
	db := setupCouponRepoTestDB(t)
	repo := NewCouponRepository(db)

	coupon := mustCreateCoupon(t, db, &model.Coupon{
		Code: "PERUSER1", CouponType: model.CouponFixed, DiscountValue: decimal.NewFromInt(5),
		IsActive: true, MaxUsesPerUser: 1,
	})

	if err := redeemInTx(db, repo, coupon.ID, 1, 201); err != nil {
		t.Fatalf("首次核销失败: %v", err)
	}

	// 同一用户第二单不能再用
	err := redeemInTx(db, repo, coupon.ID, 1, 202)
	if !errors.Is(err, ErrCouponUserLimit) {
		t.Errorf("err = %v, want ErrCouponUserLimit", err)
	}

	// 其他用户照常
	if err := redeemInTx(db, repo, coupon.ID, 2, 203); err != nil {
		t.Errorf("用户 2 核销失败: %v", err)
	}
}

func TestRedeem_InactiveOrExpired(t *testing.T) {
	db := setupCouponRepoTestDB(t)
	repo := NewCouponRepository(db)

	// 停用
	disabled := mustCreateCoupon(t, db, &model.Coupon{
		Code: "DISABLED", CouponType: model.CouponFixed, DiscountValue: decimal.NewFromInt(5),
		IsActive: false,
	})
	if err := redeemInTx(db, repo, disabled.ID, 1, 301); !errors.Is(err, ErrCouponInactive) {
		t.Errorf("停用券 err = %v, want ErrCouponInactive", err)
	}

	// 过期
	past := time.Now().Add(-time.Minute)
	expired := mustCreateCoupon(t, db, &model.Coupon{
		Code: "EXPIRED", CouponType: model.CouponFixed, DiscountValue: decimal.NewFromInt(5),
		IsActive: true, ValidTo: &past,
	})
	if err := redeemInTx(db, repo, expired.ID, 1, 302); !errors.Is(err, ErrCouponInactive) {
		t.Errorf("过期券 err = %v, want ErrCouponInactive", err)
	}
}

func TestRedeem_FailureRollsBackTx(t *testing.T) {
	db := setupCouponRepoTestDB(t)
	repo := NewCouponRepository(db)
	ctx := context.Background()

	maxUses := 1
	coupon := mustCreateCoupon(t, db, &model.Coupon{
		Code: "ONESHOT", CouponType: model.CouponFixed, DiscountValue: decimal.NewFromInt(10),
		IsActive: true, MaxUses: &maxUses, MaxUsesPerUser: 1,
	})

	if err := redeemInTx(db, repo, coupon.ID, 1, 401); err != nil {
		t.Fatalf("首次核销失败: %v", err)
	}

	// 核销失败会带着整个事务一起回滚
	err := db.Transaction(func(tx *gorm.DB) error {
		marker := model.CouponUsage{CouponID: coupon.ID, UserID: 99, OrderID: 999, UsedAt: time.Now()}
		if err := tx.Create(&marker).Error; err != nil {
			return err
		}
		return repo.Redeem(ctx, tx, coupon.ID, 2, 402, decimal.NewFromInt(10))
	})
	if !errors.Is(err, ErrCouponExhausted) {
		t.Fatalf("err = %v, want ErrCouponExhausted", err)
	}

	var markerCount int64
	db.Model(&model.CouponUsage{}).Where("order_id = ?", 999).Count(&markerCount)
	if markerCount != 0 {
		t.Error("事务内先写入的记录应随核销失败一起回滚")
	}
}

func TestDeleteUsage_DecrementsCount(t *testing.T) {
	db := setupCouponRepoTestDB(t)
	repo := NewCouponRepository(db)
	ctx := context.Background()

	coupon := mustCreateCoupon(t, db, &model.Coupon{
		Code: "REFUNDME", CouponType: model.CouponFixed, DiscountValue: decimal.NewFromInt(10),
		IsActive: true, MaxUsesPerUser: 1,
	})
	if err := redeemInTx(db, repo, coupon.ID, 1, 501); err != nil {
		t.Fatalf("核销失败: %v", err)
	}

	var usage model.CouponUsage
	if err := db.Where("coupon_id = ?", coupon.ID).First(&usage).Error; err != nil {
		t.Fatalf("查询使用记录失败: %v", err)
	}

	if err := repo.DeleteUsage(ctx, usage.ID); err != nil {
		t.Fatalf("DeleteUsage 失败: %v", err)
	}

	got, _ := repo.GetByID(ctx, coupon.ID)
	if got.UsedCount != 0 {
		t.Errorf("used_count = %d, want 0", got.UsedCount)
	}

	// 回退之后该用户可以重新核销
	if err := redeemInTx(db, repo, coupon.ID, 1, 502); err != nil {
		t.Errorf("回退后核销失败: %v", err)
	}
}

func TestDeactivateExpired(t *testing.T) {
	db := setupCouponRepoTestDB(t)
	repo := NewCouponRepository(db)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	mustCreateCoupon(t, db, &model.Coupon{
		Code: "DEAD", CouponType: model.CouponFixed, DiscountValue: decimal.NewFromInt(5),
		IsActive: true, ValidFrom: past.Add(-time.Hour), ValidTo: &past,
	})
	mustCreateCoupon(t, db, &model.Coupon{
		Code: "ALIVE", CouponType: model.CouponFixed, DiscountValue: decimal.NewFromInt(5),
		IsActive: true, ValidTo: &future,
	})
	mustCreateCoupon(t, db, &model.Coupon{
		Code: "FOREVER", CouponType: model.CouponFixed, DiscountValue: decimal.NewFromInt(5),
		IsActive: true,
	})

	n, err := repo.DeactivateExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("DeactivateExpired 失败: %v", err)
	}
	if n != 1 {
		t.Errorf("下线数量 = %d, want 1", n)
	}

	dead, _ := repo.GetByCode(ctx, "DEAD")
	if dead.IsActive {
		t.Error("过期券应被停用")
	}
	alive, _ := repo.GetByCode(ctx, "ALIVE")
	if !alive.IsActive {
		t.Error("未过期券不应被停用")
	}
	forever, _ := repo.GetByCode(ctx, "FOREVER")
	if !forever.IsActive {
		t.Error("长期券不应被停用")
	}
}
