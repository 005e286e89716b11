package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/session"
)

// ==================== 错误定义 ====================

var (
	// ErrCouponNotFound 优惠码不存在（与“不可用”区分，前端提示不同）
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrCouponNotApplicable 券存在但当前不可用：停用/过期/未开始/门槛不足/次数用尽
	ErrCouponNotApplicable = errors.New("coupon not applicable")
	// ErrCouponExhausted 并发核销中败北或总次数已抢完
	ErrCouponExhausted = repository.ErrCouponExhausted
)

// ==================== CouponService 优惠券服务 ====================

// CouponService 优惠券的应用、校验与后台管理
type CouponService struct {
	couponRepo repository.CouponRepository
	cartRepo   repository.CartRepository
	pricing    *PricingService
	store      session.CouponStore
}

// NewCouponService 工厂方法
func NewCouponService(
	couponRepo repository.CouponRepository,
	cartRepo repository.CartRepository,
	pricing *PricingService,
	store session.CouponStore,
) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		cartRepo:   cartRepo,
		pricing:    pricing,
		store:      store,
	}
}

// ==================== 购物车侧 ====================

// Apply 把优惠码挂到用户购物车上（仅校验与记录，不核销、不加计数）。
// 真正的核销发生在结算事务里。
func (s *CouponService) Apply(ctx context.Context, userID int64, code string) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	if !coupon.IsValid(time.Now()) {
		return nil, ErrCouponNotApplicable
	}

	ok, err := s.CanBeUsedBy(ctx, coupon, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCouponNotApplicable
	}

	// 最低消费按当前购物车校验；后续购物车变动在结算时复核
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !coupon.MeetsMinPurchase(s.pricing.CartTotal(items)) {
		return nil, ErrCouponNotApplicable
	}

	if err := s.store.Set(ctx, userID, coupon.Code); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Remove 从购物车上摘掉优惠码
func (s *CouponService) Remove(ctx context.Context, userID int64) error {
	return s.store.Delete(ctx, userID)
}

// Applied 取用户当前挂着的券；没挂或已失效返回 nil（不报错，购物车展示用）
func (s *CouponService) Applied(ctx context.Context, userID int64) (*model.Coupon, error) {
	code, err := s.store.Get(ctx, userID)
	if err != nil || code == "" {
		return nil, err
	}
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !coupon.IsValid(time.Now()) {
		return nil, nil
	}
	return coupon, nil
}

// CanBeUsedBy 在券本身有效的前提下检查单用户使用上限
func (s *CouponService) CanBeUsedBy(ctx context.Context, coupon *model.Coupon, userID int64) (bool, error) {
	if !coupon.IsValid(time.Now()) {
		return false, nil
	}
	if coupon.MaxUsesPerUser <= 0 {
		return true, nil
	}
	count, err := s.couponRepo.CountUsageByUser(ctx, coupon.ID, userID)
	if err != nil {
		return false, err
	}
	return count < int64(coupon.MaxUsesPerUser), nil
}

// ==================== 后台管理 ====================

// Create 新建优惠券；百分比折扣超过 100 属于配置错误，照存但打告警
func (s *CouponService) Create(ctx context.Context, coupon *model.Coupon) error {
	s.warnSuspiciousValue(coupon)
	if coupon.ValidFrom.IsZero() {
		coupon.ValidFrom = time.Now()
	}
	return s.couponRepo.Create(ctx, coupon)
}

// Update 更新优惠券
func (s *CouponService) Update(ctx context.Context, coupon *model.Coupon) error {
	s.warnSuspiciousValue(coupon)
	return s.couponRepo.Update(ctx, coupon)
}

// Delete 删除优惠券
func (s *CouponService) Delete(ctx context.Context, id int64) error {
	return s.couponRepo.Delete(ctx, id)
}

// List 优惠券列表
func (s *CouponService) List(ctx context.Context, filter repository.CouponFilter) ([]model.Coupon, int64, error) {
	return s.couponRepo.List(ctx, filter)
}

// GetByID 取单张券
func (s *CouponService) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	return s.couponRepo.GetByID(ctx, id)
}

// ListUsages 使用记录列表
func (s *CouponService) ListUsages(ctx context.Context, couponID int64, page, pageSize int) ([]model.CouponUsage, int64, error) {
	return s.couponRepo.ListUsages(ctx, couponID, page, pageSize)
}

// DeleteUsage 删除使用记录并回退计数
func (s *CouponService) DeleteUsage(ctx context.Context, usageID int64) error {
	return s.couponRepo.DeleteUsage(ctx, usageID)
}

func (s *CouponService) warnSuspiciousValue(coupon *model.Coupon) {
	if coupon.CouponType == model.CouponPercentage &&
		coupon.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		log.Printf("[CouponService] 警告: 券 %s 百分比折扣 %s 超过 100，按原值计算", coupon.Code, coupon.DiscountValue)
	}
}
