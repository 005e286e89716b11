package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutriharvest_mall_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// CartRepository 购物车与收藏仓储接口
type CartRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error)
	GetItem(ctx context.Context, userID, productID int64) (*model.CartItem, error)
	// AddItem (user, product) 已存在则数量累加
	AddItem(ctx context.Context, item *model.CartItem) error
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, tx *gorm.DB, userID int64) error

	// 收藏
	AddWishlist(ctx context.Context, userID, productID int64) error
	RemoveWishlist(ctx context.Context, userID, productID int64) error
	ListWishlist(ctx context.Context, userID int64) ([]model.Wishlist, error)
}

// ==================== 仓储实现 ====================

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&items).Error
	return items, err
}

func (r *cartRepo) GetItem(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddItem 唯一键冲突时累加数量
func (r *cartRepo) AddItem(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("quantity + ?", item.Quantity),
			}),
		}).
		Create(item).Error
}

func (r *cartRepo) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity).Error
}

func (r *cartRepo) RemoveItem(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartItem{}).Error
}

// Clear 结算事务里清空购物车，tx 为 nil 时走默认连接
func (r *cartRepo) Clear(ctx context.Context, tx *gorm.DB, userID int64) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error
}

// ==================== 收藏 ====================

func (r *cartRepo) AddWishlist(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Wishlist{UserID: userID, ProductID: productID}).Error
}

func (r *cartRepo) RemoveWishlist(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.Wishlist{}).Error
}

func (r *cartRepo) ListWishlist(ctx context.Context, userID int64) ([]model.Wishlist, error) {
	var items []model.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}
