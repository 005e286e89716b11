package dto

// ==================== 购物车 ====================

// AddCartItemRequest 加购请求
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItemRequest 改数量请求，0 表示移除
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}

// ==================== 收藏 ====================

// WishlistRequest 收藏请求
type WishlistRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
}
