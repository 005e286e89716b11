package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutriharvest_mall_v1_202608/internal/model"
)

// ==================== 错误定义 ====================

var (
	// ErrCouponExhausted 总使用次数已被抢完（并发核销的失败方也返回它）
	ErrCouponExhausted = errors.New("coupon exhausted")
	// ErrCouponUserLimit 单用户使用次数已达上限
	ErrCouponUserLimit = errors.New("coupon user limit reached")
	// ErrCouponInactive 核销时复核发现券已失效
	ErrCouponInactive = errors.New("coupon inactive")
)

// ==================== 接口定义 ====================

// CouponRepository 优惠券仓储接口
type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	GetByID(ctx context.Context, id int64) (*model.Coupon, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	Update(ctx context.Context, coupon *model.Coupon) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter CouponFilter) ([]model.Coupon, int64, error)

	// 使用记录
	CountUsageByUser(ctx context.Context, couponID, userID int64) (int64, error)
	ListUsages(ctx context.Context, couponID int64, page, pageSize int) ([]model.CouponUsage, int64, error)
	DeleteUsage(ctx context.Context, usageID int64) error

	// Redeem 核销：必须在外部事务内调用，锁行、复核上限、自增计数、写使用记录
	Redeem(ctx context.Context, tx *gorm.DB, couponID, userID, orderID int64, discount decimal.Decimal) error

	// 定时任务
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)

	WithTx(tx *gorm.DB) CouponRepository
}

// CouponFilter 优惠券过滤条件
type CouponFilter struct {
	Keyword  string
	IsActive *bool
	Page     int
	PageSize int
}

// ==================== 仓储实现 ====================

type couponRepo struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓储
func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepo{db: db}
}

func (r *couponRepo) WithTx(tx *gorm.DB) CouponRepository {
	return &couponRepo{db: tx}
}

func (r *couponRepo) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepo) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.WithContext(ctx).First(&coupon, id).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepo) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepo) Update(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Save(coupon).Error
}

func (r *couponRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Coupon{}, id).Error
}

func (r *couponRepo) List(ctx context.Context, filter CouponFilter) ([]model.Coupon, int64, error) {
	var coupons []model.Coupon
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Coupon{})
	if filter.Keyword != "" {
		query = query.Where("code LIKE ?", "%"+filter.Keyword+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	err := query.
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&coupons).Error
	return coupons, total, err
}

// ==================== 使用记录 ====================

func (r *couponRepo) CountUsageByUser(ctx context.Context, couponID, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	return count, err
}

func (r *couponRepo) ListUsages(ctx context.Context, couponID int64, page, pageSize int) ([]model.CouponUsage, int64, error) {
	var usages []model.CouponUsage
	var total int64

	query := r.db.WithContext(ctx).Model(&model.CouponUsage{})
	if couponID > 0 {
		query = query.Where("coupon_id = ?", couponID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	err := query.
		Preload("Coupon").
		Order("used_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&usages).Error
	return usages, total, err
}

// DeleteUsage 删除一条使用记录并回退计数（后台纠错入口）
func (r *couponRepo) DeleteUsage(ctx context.Context, usageID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var usage model.CouponUsage
		if err := tx.First(&usage, usageID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&usage).Error; err != nil {
			return err
		}
		// used_count 不回退到负数
		return tx.Model(&model.Coupon{}).
			Where("id = ? AND used_count > 0", usage.CouponID).
			UpdateColumn("used_count", gorm.Expr("used_count - 1")).Error
	})
}

// ==================== 核销 ====================

// Redeem 在调用方事务内完成“锁行 → 复核 → 自增 → 记账”。
// 两个并发结算抢同一张只剩一个名额的券时，后拿到锁的一方在复核处失败，
// 整个下单事务随之回滚，不会出现“计数加了但订单没建”的半截状态。
func (r *couponRepo) Redeem(ctx context.Context, tx *gorm.DB, couponID, userID, orderID int64, discount decimal.Decimal) error {
	q := tx.WithContext(ctx)

	// sqlite 不支持 FOR UPDATE，但其写事务本身互斥，跳过行锁不影响正确性
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var coupon model.Coupon
	if err := q.First(&coupon, couponID).Error; err != nil {
		return err
	}

	now := time.Now()
	if !coupon.IsActive || now.Before(coupon.ValidFrom) ||
		(coupon.ValidTo != nil && now.After(*coupon.ValidTo)) {
		return ErrCouponInactive
	}
	if coupon.IsExhausted() {
		return ErrCouponExhausted
	}

	if coupon.MaxUsesPerUser > 0 {
		var userCount int64
		if err := tx.WithContext(ctx).
			Model(&model.CouponUsage{}).
			Where("coupon_id = ? AND user_id = ?", couponID, userID).
			Count(&userCount).Error; err != nil {
			return err
		}
		if userCount >= int64(coupon.MaxUsesPerUser) {
			return ErrCouponUserLimit
		}
	}

	if err := tx.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("id = ?", couponID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
		return err
	}

	usage := model.CouponUsage{
		CouponID:       couponID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: discount,
		UsedAt:         now,
	}
	return tx.WithContext(ctx).Create(&usage).Error
}

// ==================== 定时任务 ====================

// DeactivateExpired 把有效期已过但仍启用的券批量下线
func (r *couponRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("is_active = ? AND valid_to IS NOT NULL AND valid_to < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
