package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/session"
)

// ==================== 错误定义 ====================

var (
	// ErrProductNotFound 商品不存在或已下架
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidQuantity 数量必须为正
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// ==================== CartService 购物车服务 ====================

// CartService 购物车与收藏
type CartService struct {
	cartRepo repository.CartRepository
	prodRepo repository.ProductRepository
	coupon   *CouponService
	pricing  *PricingService
	store    session.CouponStore
}

// NewCartService 工厂方法
func NewCartService(
	cartRepo repository.CartRepository,
	prodRepo repository.ProductRepository,
	coupon *CouponService,
	pricing *PricingService,
	store session.CouponStore,
) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		prodRepo: prodRepo,
		coupon:   coupon,
		pricing:  pricing,
		store:    store,
	}
}

// CartView 购物车展示口径：明细 + 报价（含当前挂着的券）
type CartView struct {
	Items  []model.CartItem `json:"items"`
	Coupon *model.Coupon    `json:"coupon,omitempty"`
	Quote  PriceQuote       `json:"quote"`
}

// View 组装购物车页：已失效的券自动摘除
func (s *CartService) View(ctx context.Context, userID int64) (*CartView, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	coupon, err := s.coupon.Applied(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &CartView{
		Items:  items,
		Coupon: coupon,
		Quote:  s.pricing.Quote(items, coupon),
	}, nil
}

// AddItem 加购；商品必须在售
func (s *CartService) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	product, err := s.prodRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if !product.IsActive {
		return ErrProductNotFound
	}
	return s.cartRepo.AddItem(ctx, &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

// UpdateQuantity 改数量；0 等价于移除
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.cartRepo.RemoveItem(ctx, userID, productID)
	}
	return s.cartRepo.UpdateQuantity(ctx, userID, productID, quantity)
}

// RemoveItem 移除一项
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	return s.cartRepo.RemoveItem(ctx, userID, productID)
}

// Clear 清空购物车并摘掉挂着的券
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	if err := s.cartRepo.Clear(ctx, nil, userID); err != nil {
		return err
	}
	return s.store.Delete(ctx, userID)
}

// ==================== 收藏 ====================

// AddWishlist 加入收藏（重复加静默成功）
func (s *CartService) AddWishlist(ctx context.Context, userID, productID int64) error {
	if _, err := s.prodRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return s.cartRepo.AddWishlist(ctx, userID, productID)
}

// RemoveWishlist 取消收藏
func (s *CartService) RemoveWishlist(ctx context.Context, userID, productID int64) error {
	return s.cartRepo.RemoveWishlist(ctx, userID, productID)
}

// ListWishlist 收藏列表
func (s *CartService) ListWishlist(ctx context.Context, userID int64) ([]model.Wishlist, error) {
	return s.cartRepo.ListWishlist(ctx, userID)
}
