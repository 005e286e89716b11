package service

import (
	"time"

	"github.com/shopspring/decimal"

	"nutriharvest_mall_v1_202608/internal/model"
)

// ==================== PricingService 计价引擎 ====================

// PricingService 购物车计价与优惠计算
// 所有金额用 decimal 全精度运算，只在出参处四舍五入到分
type PricingService struct{}

// NewPricingService 工厂方法
func NewPricingService() *PricingService {
	return &PricingService{}
}

// PriceQuote 一次报价结果（对外展示口径，已舍入到两位小数）
type PriceQuote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// CartTotal 购物车小计 = Σ 数量 × 当前售价（全精度）
func (s *PricingService) CartTotal(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].TotalPrice())
	}
	return total
}

// ComputeDiscount 按券型计算优惠金额（全精度，不舍入）。
// 返回 0 的情形：无券、券当前无效、未达最低消费门槛。
// 规则：
//   - percentage: 小计 × 折扣值 / 100。折扣值 > 100 属于配置错误，
//     照算不截断，由后台录入处告警（见 coupon_svc）
//   - fixed: min(折扣值, 小计)，永不把总价打成负数
//   - free_shipping: 对商品小计的优惠为 0（运费体系在外部系统）
func (s *PricingService) ComputeDiscount(coupon *model.Coupon, cartTotal decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	if !coupon.IsValid(time.Now()) {
		return decimal.Zero
	}
	if !coupon.MeetsMinPurchase(cartTotal) {
		return decimal.Zero
	}

	switch coupon.CouponType {
	case model.CouponPercentage:
		return cartTotal.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100))
	case model.CouponFixed:
		if coupon.DiscountValue.GreaterThan(cartTotal) {
			return cartTotal
		}
		return coupon.DiscountValue
	case model.CouponFreeShipping:
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// Quote 出一份完整报价：小计、优惠、应付，统一舍入到分（四舍五入）
func (s *PricingService) Quote(items []model.CartItem, coupon *model.Coupon) PriceQuote {
	subtotal := s.CartTotal(items)
	discount := s.ComputeDiscount(coupon, subtotal)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return PriceQuote{
		Subtotal: subtotal.Round(2),
		Discount: discount.Round(2),
		Total:    total.Round(2),
	}
}
