package service

import (
	"context"
	"strings"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
)

// ==================== ProductService 商品服务 ====================

// ProductService 商品与分类
type ProductService struct {
	prodRepo repository.ProductRepository
}

// NewProductService 工厂方法
func NewProductService(prodRepo repository.ProductRepository) *ProductService {
	return &ProductService{prodRepo: prodRepo}
}

// Create 新建商品；slug 缺省时由名称生成
func (s *ProductService) Create(ctx context.Context, product *model.Product) error {
	if product.Slug == "" {
		product.Slug = slugify(product.Name)
	}
	return s.prodRepo.Create(ctx, product)
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, product *model.Product) error {
	return s.prodRepo.Update(ctx, product)
}

// Delete 删除商品（软删）
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.prodRepo.Delete(ctx, id)
}

// GetByID 取单个商品
func (s *ProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return s.prodRepo.GetByID(ctx, id)
}

// GetBySlug 前台按 slug 取商品
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return s.prodRepo.GetBySlug(ctx, slug)
}

// List 商品列表
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	return s.prodRepo.List(ctx, filter)
}

// ListLowStock 低库存商品（后台看板与定时预警共用）
func (s *ProductService) ListLowStock(ctx context.Context, limit int) ([]model.Product, error) {
	return s.prodRepo.ListLowStock(ctx, limit)
}

// AdjustStock 后台手工调库存
func (s *ProductService) AdjustStock(ctx context.Context, id int64, stock int) error {
	return s.prodRepo.UpdateFields(ctx, id, map[string]interface{}{"stock": stock})
}

// SetImages 整组覆盖商品图片
func (s *ProductService) SetImages(ctx context.Context, productID int64, images []model.ProductImage) error {
	if _, err := s.prodRepo.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.prodRepo.ReplaceImages(ctx, productID, images)
}

// ==================== 分类 ====================

// CreateCategory 新建分类
func (s *ProductService) CreateCategory(ctx context.Context, category *model.Category) error {
	if category.Slug == "" {
		category.Slug = slugify(category.Name)
	}
	return s.prodRepo.CreateCategory(ctx, category)
}

// GetCategoryByID 取单个分类
func (s *ProductService) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	return s.prodRepo.GetCategoryByID(ctx, id)
}

// UpdateCategory 更新分类
func (s *ProductService) UpdateCategory(ctx context.Context, category *model.Category) error {
	return s.prodRepo.UpdateCategory(ctx, category)
}

// DeleteCategory 删除分类
func (s *ProductService) DeleteCategory(ctx context.Context, id int64) error {
	return s.prodRepo.DeleteCategory(ctx, id)
}

// ListCategories 分类列表
func (s *ProductService) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	return s.prodRepo.ListCategories(ctx, activeOnly)
}

// slugify 名称转 URL 友好标识：小写、空白转连字符、去掉其余符号
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
