package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"nutriharvest_mall_v1_202608/internal/model"
)

// ==================== 测试辅助 ====================

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func cartWith(prices map[string]int) []model.CartItem {
	items := make([]model.CartItem, 0, len(prices))
	var id int64 = 1
	for price, qty := range prices {
		p := d(price)
		items = append(items, model.CartItem{
			ProductID: id,
			Quantity:  qty,
			Product:   &model.Product{ID: id, Name: "p", Price: p},
		})
		id++
	}
	return items
}

func percentCoupon(code string, percent, minPurchase string) *model.Coupon {
	c := &model.Coupon{
		Code:          code,
		CouponType:    model.CouponPercentage,
		DiscountValue: d(percent),
		IsActive:      true,
		ValidFrom:     time.Now().Add(-time.Hour),
	}
	if minPurchase != "" {
		mp := d(minPurchase)
		c.MinPurchaseAmount = &mp
	}
	return c
}

func fixedCoupon(code, amount string) *model.Coupon {
	return &model.Coupon{
		Code:          code,
		CouponType:    model.CouponFixed,
		DiscountValue: d(amount),
		IsActive:      true,
		ValidFrom:     time.Now().Add(-time.Hour),
	}
}

// ==================== 单元测试 ====================

func TestComputeDiscount_Percentage(t *testing.T) {
	svc := NewPricingService()
	coupon := percentCoupon("SAVE10", "10", "50")

	// 满 50 减 10%
	got := svc.ComputeDiscount(coupon, d("100"))
	if !got.Equal(d("10")) {
		t.Errorf("discount = %s, want 10", got)
	}

	// 未达门槛不打折
	got = svc.ComputeDiscount(coupon, d("40"))
	if !got.IsZero() {
		t.Errorf("discount = %s, want 0", got)
	}

	// 恰好等于门槛可用
	got = svc.ComputeDiscount(coupon, d("50"))
	if !got.Equal(d("5")) {
		t.Errorf("discount = %s, want 5", got)
	}
}

func TestComputeDiscount_PercentagePrecision(t *testing.T) {
	svc := NewPricingService()
	coupon := percentCoupon("SAVE15", "15", "")

	// 中间结果保持全精度，不提前舍入
	got := svc.ComputeDiscount(coupon, d("33.33"))
	if !got.Equal(d("4.9995")) {
		t.Errorf("discount = %s, want 4.9995", got)
	}

	// 出参处才四舍五入到分
	quote := svc.Quote(cartWith(map[string]int{"33.33": 1}), coupon)
	if !quote.Discount.Equal(d("5.00")) {
		t.Errorf("quote discount = %s, want 5.00", quote.Discount)
	}
	if !quote.Total.Equal(d("28.33")) {
		t.Errorf("quote total = %s, want 28.33", quote.Total)
	}
}

func TestComputeDiscount_PercentageOver100(t *testing.T) {
	svc := NewPricingService()
	coupon := percentCoupon("CRAZY", "150", "")

	// 超过 100% 按原值计算，不截断；总价在 Quote 层兜底为 0
	got := svc.ComputeDiscount(coupon, d("100"))
	if !got.Equal(d("150")) {
		t.Errorf("discount = %s, want 150", got)
	}

	quote := svc.Quote(cartWith(map[string]int{"100.00": 1}), coupon)
	if !quote.Total.IsZero() {
		t.Errorf("total = %s, want 0", quote.Total)
	}
}

func TestComputeDiscount_Fixed(t *testing.T) {
	svc := NewPricingService()
	coupon := fixedCoupon("FLAT20", "20")

	got := svc.ComputeDiscount(coupon, d("80"))
	if !got.Equal(d("20")) {
		t.Errorf("discount = %s, want 20", got)
	}

	// 固定金额封顶到小计，总价不会变负
	got = svc.ComputeDiscount(coupon, d("15"))
	if !got.Equal(d("15")) {
		t.Errorf("discount = %s, want 15 (capped)", got)
	}
}

func TestComputeDiscount_FreeShipping(t *testing.T) {
	svc := NewPricingService()
	coupon := &model.Coupon{
		Code:          "FREESHIP",
		CouponType:    model.CouponFreeShipping,
		DiscountValue: d("0"),
		IsActive:      true,
		ValidFrom:     time.Now().Add(-time.Hour),
	}

	// 免运费不影响商品小计
	got := svc.ComputeDiscount(coupon, d("100"))
	if !got.IsZero() {
		t.Errorf("discount = %s, want 0", got)
	}
}

func TestComputeDiscount_InvalidCoupon(t *testing.T) {
	svc := NewPricingService()

	// 无券
	if got := svc.ComputeDiscount(nil, d("100")); !got.IsZero() {
		t.Errorf("nil coupon discount = %s, want 0", got)
	}

	// 停用
	coupon := fixedCoupon("OFF", "10")
	coupon.IsActive = false
	if got := svc.ComputeDiscount(coupon, d("100")); !got.IsZero() {
		t.Errorf("inactive discount = %s, want 0", got)
	}

	// 已过期
	coupon = fixedCoupon("EXPIRED", "10")
	past := time.Now().Add(-time.Minute)
	coupon.ValidTo = &past
	if got := svc.ComputeDiscount(coupon, d("100")); !got.IsZero() {
		t.Errorf("expired discount = %s, want 0", got)
	}

	// 未开始
	coupon = fixedCoupon("SOON", "10")
	coupon.ValidFrom = time.Now().Add(time.Hour)
	if got := svc.ComputeDiscount(coupon, d("100")); !got.IsZero() {
		t.Errorf("not-started discount = %s, want 0", got)
	}

	// 总次数用尽
	coupon = fixedCoupon("USED", "10")
	maxUses := 5
	coupon.MaxUses = &maxUses
	coupon.UsedCount = 5
	if got := svc.ComputeDiscount(coupon, d("100")); !got.IsZero() {
		t.Errorf("exhausted discount = %s, want 0", got)
	}
}

func TestCartTotal(t *testing.T) {
	svc := NewPricingService()

	items := []model.CartItem{
		{ProductID: 1, Quantity: 2, Product: &model.Product{ID: 1, Price: d("19.99")}},
		{ProductID: 2, Quantity: 1, Product: &model.Product{ID: 2, Price: d("5.50")}},
	}
	if got := svc.CartTotal(items); !got.Equal(d("45.48")) {
		t.Errorf("total = %s, want 45.48", got)
	}

	// 折扣价生效时按折扣价计
	dp := d("10.00")
	items[0].Product.DiscountPrice = &dp
	if got := svc.CartTotal(items); !got.Equal(d("25.50")) {
		t.Errorf("total with discount price = %s, want 25.50", got)
	}

	// 空购物车
	if got := svc.CartTotal(nil); !got.IsZero() {
		t.Errorf("empty cart total = %s, want 0", got)
	}
}

func TestQuote_ZeroValueCoupon(t *testing.T) {
	svc := NewPricingService()
	coupon := percentCoupon("ZERO", "0", "")

	quote := svc.Quote(cartWith(map[string]int{"50.00": 1}), coupon)
	if !quote.Discount.IsZero() {
		t.Errorf("discount = %s, want 0", quote.Discount)
	}
	if !quote.Total.Equal(d("50.00")) {
		t.Errorf("total = %s, want 50.00", quote.Total)
	}
}
