package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/session"
)

// ==================== 错误定义 ====================

var (
	// ErrEmptyCart 购物车为空不能结算
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInsufficientStock 某商品库存不足
	ErrInsufficientStock = repository.ErrInsufficientStock
)

// ==================== CheckoutService 结算服务 ====================

// CheckoutService 把购物车变成订单
// 关键约束：扣库存、建订单、核销优惠券、累计顾客统计、清空购物车
// 全部在一个数据库事务里，任何一步失败整体回滚
type CheckoutService struct {
	orderRepo  repository.OrderRepository
	cartRepo   repository.CartRepository
	couponRepo repository.CouponRepository
	prodRepo   repository.ProductRepository
	userRepo   repository.UserRepository
	pricing    *PricingService
	store      session.CouponStore
	notify     *NotificationService
}

// NewCheckoutService 工厂方法
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	couponRepo repository.CouponRepository,
	prodRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	pricing *PricingService,
	store session.CouponStore,
	notify *NotificationService,
) *CheckoutService {
	return &CheckoutService{
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		couponRepo: couponRepo,
		prodRepo:   prodRepo,
		userRepo:   userRepo,
		pricing:    pricing,
		store:      store,
		notify:     notify,
	}
}

// ShippingInfo 收货信息
type ShippingInfo struct {
	Name    string
	Email   string
	Mobile  string
	Address string
	City    string
	Pincode string
}

// Checkout 结算下单。
// 挂在购物车上的券在这里才真正核销：事务内锁行复核，
// 两个并发请求抢同一张只剩一个名额的券时只有一个能成功，
// 另一个收到 ErrCouponExhausted / ErrCouponNotApplicable。
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, shipping ShippingInfo, paymentMode string) (*model.Order, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	// 报价：小计按当前售价快照
	subtotal := s.pricing.CartTotal(items)

	// 取挂在购物车上的券并预检（终审在事务内）
	var coupon *model.Coupon
	code, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if code != "" {
		coupon, err = s.loadApplicableCoupon(ctx, code, subtotal)
		if err != nil {
			return nil, err
		}
	}

	discount := s.pricing.ComputeDiscount(coupon, subtotal)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	if paymentMode == "" {
		paymentMode = model.PaymentModeCOD
	}

	order := &model.Order{
		OrderNumber:    model.NewOrderNumber(),
		CustomerID:     userID,
		Subtotal:       subtotal.Round(2),
		DiscountAmount: discount.Round(2),
		TotalAmount:    total.Round(2),
		PaymentMode:    paymentMode,
		PaymentStatus:  model.PaymentStatusPending,
		OrderStatus:    model.OrderStatusPending,
		ShippingName:   shipping.Name,
		ShippingEmail:  shipping.Email,
		ShippingMobile: shipping.Mobile,
		ShippingAddress: datatypes.JSONMap{
			"address": shipping.Address,
			"city":    shipping.City,
			"pincode": shipping.Pincode,
		},
	}
	if coupon != nil {
		order.CouponID = &coupon.ID
		order.CouponCode = coupon.Code
	}

	// 订单行快照：成交单价固定在下单时刻
	for i := range items {
		if items[i].Product == nil {
			return nil, fmt.Errorf("购物车商品 %d 不存在", items[i].ProductID)
		}
		order.Items = append(order.Items, model.OrderItem{
			ProductID: items[i].ProductID,
			Quantity:  items[i].Quantity,
			Price:     items[i].Product.EffectivePrice().Round(2),
		})
	}

	err = s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		// 1. 扣库存（条件更新，不足即回滚）
		for i := range items {
			if err := s.prodRepo.DecrementStock(ctx, tx, items[i].ProductID, items[i].Quantity); err != nil {
				return fmt.Errorf("商品 %s: %w", items[i].Product.Name, err)
			}
		}

		// 2. 建订单（连同订单行）
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}

		// 3. 核销优惠券：锁行 → 复核上限 → 计数 +1 → 写使用记录
		if coupon != nil {
			if err := s.couponRepo.Redeem(ctx, tx, coupon.ID, userID, order.ID, order.DiscountAmount); err != nil {
				return err
			}
		}

		// 4. 顾客累计
		if err := s.userRepo.IncrementCustomerStats(ctx, tx, userID, order.TotalAmount); err != nil {
			return err
		}

		// 5. 清空购物车
		return s.cartRepo.Clear(ctx, tx, userID)
	})
	if err != nil {
		return nil, s.translateRedeemErr(err)
	}

	// 事务之外的收尾：失败只记日志，不影响已成立的订单
	if err := s.store.Delete(ctx, userID); err != nil {
		log.Printf("[CheckoutService] 清除会话优惠码失败 user=%d: %v", userID, err)
	}
	if s.notify != nil {
		if err := s.notify.SendOrderCreated(ctx, order); err != nil {
			log.Printf("[CheckoutService] 下单通知发送失败 order=%s: %v", order.OrderNumber, err)
		}
	}

	return order, nil
}

// loadApplicableCoupon 结算前复核：存在、有效、够门槛。
// 单人/全局次数的终审在事务内的 Redeem 里做。
func (s *CheckoutService) loadApplicableCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (*model.Coupon, error) {
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
	if !coupon.MeetsMinPurchase(subtotal) {
		return nil, ErrCouponNotApplicable
	}
	return coupon, nil
}

// translateRedeemErr 把仓储层核销错误映射成对外错误类别
func (s *CheckoutService) translateRedeemErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrCouponExhausted):
		return ErrCouponExhausted
	case errors.Is(err, repository.ErrCouponUserLimit),
		errors.Is(err, repository.ErrCouponInactive):
		return ErrCouponNotApplicable
	default:
		return err
	}
}
