package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// OrderRepository 订单仓储接口
type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdatePaymentStatus(ctx context.Context, id int64, status string) error

	// 报表
	SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)

	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderFilter 订单过滤条件
type OrderFilter struct {
	CustomerID    int64
	OrderStatus   string
	PaymentStatus string
	Page          int
	PageSize      int
}

// SalesSummary 销售汇总
type SalesSummary struct {
	OrderCount    int64           `json:"order_count"`
	Revenue       decimal.Decimal `json:"revenue"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
}

// ProductSales 商品销量
type ProductSales struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// ==================== 仓储实现 ====================

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Create 订单与订单行一起落库；tx 为 nil 时走默认连接
func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Customer").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.CustomerID > 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.OrderStatus != "" {
		query = query.Where("order_status = ?", filter.OrderStatus)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	err := query.
		Preload("Items").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("order_status", status).Error
}

func (r *orderRepo) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}

// ==================== 报表 ====================

// SalesSummary 区间内订单数 / 营收 / 优惠合计（取消单不计入）
func (r *orderRepo) SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	var row struct {
		OrderCount    int64
		Revenue       decimal.Decimal
		DiscountTotal decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(discount_amount), 0) AS discount_total").
		Where("created_at >= ? AND created_at < ? AND order_status <> ?", from, to, model.OrderStatusCancelled).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &SalesSummary{
		OrderCount:    row.OrderCount,
		Revenue:       row.Revenue,
		DiscountTotal: row.DiscountTotal,
	}, nil
}

// TopProducts 区间内销量前 N 的商品
func (r *orderRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []ProductSales
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id AS product_id, products.name AS name, SUM(order_items.quantity) AS quantity, SUM(order_items.price * order_items.quantity) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.order_status <> ?", from, to, model.OrderStatusCancelled).
		Group("order_items.product_id, products.name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
