package dto

// ==================== 结算 ====================

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	ShippingName    string `json:"shipping_name" binding:"required,max=100"`
	ShippingEmail   string `json:"shipping_email" binding:"omitempty,email"`
	ShippingMobile  string `json:"shipping_mobile" binding:"required,max=15"`
	ShippingAddress string `json:"shipping_address" binding:"required"`
	City            string `json:"city" binding:"required,max=50"`
	Pincode         string `json:"pincode" binding:"required,max=10"`
	PaymentMode     string `json:"payment_mode" binding:"omitempty,oneof=cod online"`
}

// ==================== 订单 ====================

// OrderListRequest 订单列表请求
type OrderListRequest struct {
	CustomerID    int64  `form:"customer_id"`
	OrderStatus   string `form:"order_status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=pending paid failed"`
	Page          int    `form:"page,default=1"`
	PageSize      int    `form:"page_size,default=20"`
}
