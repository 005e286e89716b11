package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ==================== Category 商品分类 ====================

// Category 商品分类
type Category struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string         `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string { return "categories" }

// ==================== Product 商品 ====================

// Product 商品
// 金额统一用 decimal 存储，禁止 float 参与运算
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  int64     `gorm:"index;not null" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Slug        string    `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`

	// 价格：DiscountPrice 非空且低于 Price 时生效
	Price         decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount_price"`

	// 库存
	Stock             int `gorm:"default:0" json:"stock"`
	LowStockThreshold int `gorm:"default:10" json:"low_stock_threshold"`

	IsActive   bool `gorm:"default:true;index" json:"is_active"`
	IsFeatured bool `gorm:"default:false" json:"is_featured"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Images []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`
}

func (Product) TableName() string { return "products" }

// EffectivePrice 当前售价（有效折扣价优先）
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.HasDiscount() {
		return *p.DiscountPrice
	}
	return p.Price
}

// HasDiscount 折扣价存在且低于原价才算有折扣
func (p *Product) HasDiscount() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}

// InStock 是否有库存
func (p *Product) InStock() bool { return p.Stock > 0 }

// IsLowStock 是否低于补货阈值
func (p *Product) IsLowStock() bool { return p.Stock <= p.LowStockThreshold }

// ==================== ProductImage 商品图片 ====================

// ProductImage 商品图片，仅保存外部 URL（上传由外部系统负责）
type ProductImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"index;not null" json:"product_id"`
	URL       string    `gorm:"size:500;not null" json:"url"`
	AltText   string    `gorm:"size:200" json:"alt_text"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProductImage) TableName() string { return "product_images" }
