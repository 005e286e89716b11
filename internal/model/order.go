package model

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== 订单状态常量 ====================

// OrderStatus 订单状态
const (
	OrderStatusPending    = "pending"    // 待处理
	OrderStatusProcessing = "processing" // 处理中
	OrderStatusShipped    = "shipped"    // 已发货
	OrderStatusDelivered  = "delivered"  // 已签收
	OrderStatusCancelled  = "cancelled"  // 已取消
)

// PaymentMode 支付方式
const (
	PaymentModeCOD    = "cod"    // 货到付款
	PaymentModeOnline = "online" // 在线支付（网关对接在外部系统）
)

// PaymentStatus 支付状态
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// ==================== CartItem 购物车 ====================

// CartItem 购物车行，(user, product) 唯一，结算后清空
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_user_product;index" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_user_product;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string { return "cart_items" }

// TotalPrice 行小计 = 数量 × 当前售价
func (ci *CartItem) TotalPrice() decimal.Decimal {
	if ci.Product == nil {
		return decimal.Zero
	}
	return ci.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// ==================== Order 订单 ====================

// Order 订单主表
// 金额与收货信息在下单时刻快照，后续商品改价不回溯
type Order struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string `gorm:"size:20;uniqueIndex;not null" json:"order_number"`
	CustomerID  int64 `gorm:"index;not null" json:"customer_id"`
	Customer    *User `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	// 金额快照
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	CouponID       *int64          `json:"coupon_id"`
	CouponCode     string          `gorm:"size:50" json:"coupon_code"`

	// 支付
	PaymentMode   string `gorm:"size:10;default:cod" json:"payment_mode"`
	PaymentStatus string `gorm:"size:10;default:pending;index" json:"payment_status"`
	OrderStatus   string `gorm:"size:15;default:pending;index" json:"order_status"`

	// 收货信息快照
	ShippingName    string            `gorm:"size:100" json:"shipping_name"`
	ShippingEmail   string            `gorm:"size:100" json:"shipping_email"`
	ShippingMobile  string            `gorm:"size:15" json:"shipping_mobile"`
	ShippingAddress datatypes.JSONMap `gorm:"type:jsonb" json:"shipping_address"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string { return "orders" }

// CanProcess 待处理订单才能进入处理
func (o *Order) CanProcess() bool { return o.OrderStatus == OrderStatusPending }

// CanShip 处理中订单才能发货
func (o *Order) CanShip() bool { return o.OrderStatus == OrderStatusProcessing }

// CanCancel 发货前可取消
func (o *Order) CanCancel() bool {
	return o.OrderStatus == OrderStatusPending || o.OrderStatus == OrderStatusProcessing
}

// NewOrderNumber 生成订单号：NH + 8 位随机数字
func NewOrderNumber() string {
	const digits = "0123456789"
	buf := make([]byte, 8)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			// crypto/rand 不可用时退化为时间戳尾数
			return "NH" + time.Now().Format("15040500")
		}
		buf[i] = digits[n.Int64()]
	}
	return "NH" + string(buf)
}

// ==================== OrderItem 订单行 ====================

// OrderItem 订单行，Price 为下单时刻成交单价
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"index;not null" json:"order_id"`
	ProductID int64           `gorm:"index;not null" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (OrderItem) TableName() string { return "order_items" }

// TotalPrice 行小计 = 数量 × 成交单价
func (oi *OrderItem) TotalPrice() decimal.Decimal {
	return oi.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

// ==================== Wishlist 收藏 ====================

// Wishlist 收藏夹，(user, product) 唯一
type Wishlist struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_wish_user_product;index" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_wish_user_product" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Wishlist) TableName() string { return "wishlists" }
