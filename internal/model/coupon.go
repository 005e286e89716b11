package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 优惠券常量 ====================

// CouponType 优惠类型
type CouponType string

const (
	CouponPercentage   CouponType = "percentage"    // 按比例折扣
	CouponFixed        CouponType = "fixed"         // 固定金额折扣
	CouponFreeShipping CouponType = "free_shipping" // 免运费（不影响商品小计）
)

// CouponApplication 优惠作用范围
// 注意：当前结算链路对 category / product 范围不做逐行过滤，
// 折扣始终按整车小计计算（与历史行为保持一致，见 DESIGN.md）
type CouponApplication string

const (
	ApplyCart     CouponApplication = "cart"
	ApplyCategory CouponApplication = "category"
	ApplyProduct  CouponApplication = "product"
)

// ==================== Coupon 优惠券 ====================

// Coupon 优惠券
type Coupon struct {
	ID            int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string            `gorm:"size:50;uniqueIndex;not null" json:"code"`
	CouponType    CouponType        `gorm:"size:20;not null" json:"coupon_type"`
	DiscountValue decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"discount_value"`
	Application   CouponApplication `gorm:"size:20;default:cart" json:"application"`

	// 可选范围（仅做记录）
	CategoryID *int64 `json:"category_id"`
	ProductID  *int64 `json:"product_id"`

	// 使用上限：MaxUses 为空表示不限总次数
	MaxUses        *int `json:"max_uses"`
	UsedCount      int  `gorm:"default:0" json:"used_count"`
	MaxUsesPerUser int  `gorm:"default:1" json:"max_uses_per_user"`

	// 有效期：ValidTo 为空表示长期有效
	IsActive  bool       `gorm:"default:true;index" json:"is_active"`
	ValidFrom time.Time  `json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to"`

	// 最低消费门槛，为空表示无门槛
	MinPurchaseAmount *decimal.Decimal `gorm:"type:decimal(10,2)" json:"min_purchase_amount"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Coupon) TableName() string { return "coupons" }

// IsValid 判断当前时刻是否可用（不含单用户限制，单用户限制需要查使用记录）
// 规则：启用中 且 在有效期窗口内 且 总次数未用完
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) {
		return false
	}
	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return false
	}
	if c.MaxUses != nil && *c.MaxUses > 0 && c.UsedCount >= *c.MaxUses {
		return false
	}
	return true
}

// IsExhausted 总使用次数是否已达上限
func (c *Coupon) IsExhausted() bool {
	return c.MaxUses != nil && *c.MaxUses > 0 && c.UsedCount >= *c.MaxUses
}

// MeetsMinPurchase 是否满足最低消费门槛
func (c *Coupon) MeetsMinPurchase(cartTotal decimal.Decimal) bool {
	if c.MinPurchaseAmount == nil {
		return true
	}
	return cartTotal.GreaterThanOrEqual(*c.MinPurchaseAmount)
}

// ==================== CouponUsage 使用记录 ====================

// CouponUsage 一次核销记录
// (coupon, user, order) 联合唯一，用于统计单用户使用次数
type CouponUsage struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CouponID int64 `gorm:"not null;uniqueIndex:idx_coupon_user_order;index" json:"coupon_id"`
	UserID   int64 `gorm:"not null;uniqueIndex:idx_coupon_user_order;index" json:"user_id"`
	OrderID  int64 `gorm:"not null;uniqueIndex:idx_coupon_user_order" json:"order_id"`

	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"discount_amount"`
	UsedAt         time.Time       `gorm:"index" json:"used_at"`

	Coupon *Coupon `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
}

func (CouponUsage) TableName() string { return "coupon_usages" }
