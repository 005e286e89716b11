package dto

import "github.com/shopspring/decimal"

// ==================== 商品管理 ====================

// CreateProductRequest 新建商品请求
type CreateProductRequest struct {
	Name              string           `json:"name" binding:"required,max=200"`
	Slug              string           `json:"slug" binding:"omitempty,max=220"`
	Description       string           `json:"description"`
	CategoryID        int64            `json:"category_id" binding:"required,gt=0"`
	Price             decimal.Decimal  `json:"price" binding:"required"`
	DiscountPrice     *decimal.Decimal `json:"discount_price"`
	Stock             int              `json:"stock" binding:"gte=0"`
	LowStockThreshold int              `json:"low_stock_threshold" binding:"gte=0"`
	IsActive          *bool            `json:"is_active"`
	IsFeatured        *bool            `json:"is_featured"`
}

// UpdateProductRequest 更新商品请求
type UpdateProductRequest struct {
	Name              string           `json:"name" binding:"omitempty,max=200"`
	Description       *string          `json:"description"`
	CategoryID        *int64           `json:"category_id"`
	Price             *decimal.Decimal `json:"price"`
	DiscountPrice     *decimal.Decimal `json:"discount_price"`
	Stock             *int             `json:"stock"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
	IsActive          *bool            `json:"is_active"`
	IsFeatured        *bool            `json:"is_featured"`
}

// ProductListRequest 商品列表请求
type ProductListRequest struct {
	CategoryID int64  `form:"category_id"`
	Keyword    string `form:"keyword"`
	Featured   *bool  `form:"featured"`
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"page_size,default=20"`
}

// AdjustStockRequest 手工调库存请求
type AdjustStockRequest struct {
	Stock *int `json:"stock" binding:"required,gte=0"`
}

// ProductImageInput 商品图片条目（URL 引用，上传在外部系统）
type ProductImageInput struct {
	URL     string `json:"url" binding:"required,url,max=500"`
	AltText string `json:"alt_text" binding:"max=200"`
}

// SetProductImagesRequest 整组覆盖商品图片请求
type SetProductImagesRequest struct {
	Images []ProductImageInput `json:"images" binding:"dive"`
}

// ==================== 分类管理 ====================

// CategoryRequest 新建/更新分类请求
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=120"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}
