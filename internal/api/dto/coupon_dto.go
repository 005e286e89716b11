package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 购物车侧 ====================

// ApplyCouponRequest 应用优惠码请求
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
}

// ==================== 后台管理 ====================

// CreateCouponRequest 新建优惠券请求
// 金额与百分比统一走 discount_value，按 coupon_type 解释
type CreateCouponRequest struct {
	Code              string           `json:"code" binding:"required,min=1,max=50"`
	CouponType        string           `json:"coupon_type" binding:"required,oneof=percentage fixed free_shipping"`
	DiscountValue     decimal.Decimal  `json:"discount_value" binding:"required"`
	Application       string           `json:"application" binding:"omitempty,oneof=cart category product"`
	CategoryID        *int64           `json:"category_id"`
	ProductID         *int64           `json:"product_id"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount"`
	MaxUses           *int             `json:"max_uses"`
	MaxUsesPerUser    int              `json:"max_uses_per_user"`
	ValidFrom         *time.Time       `json:"valid_from"`
	ValidTo           *time.Time       `json:"valid_to"`
	IsActive          *bool            `json:"is_active"`
}

// UpdateCouponRequest 更新优惠券请求
type UpdateCouponRequest struct {
	DiscountValue     *decimal.Decimal `json:"discount_value"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount"`
	MaxUses           *int             `json:"max_uses"`
	MaxUsesPerUser    *int             `json:"max_uses_per_user"`
	ValidFrom         *time.Time       `json:"valid_from"`
	ValidTo           *time.Time       `json:"valid_to"`
	IsActive          *bool            `json:"is_active"`
}

// CouponListRequest 优惠券列表请求
type CouponListRequest struct {
	Keyword  string `form:"keyword"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}
