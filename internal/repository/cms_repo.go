package repository

import (
	"context"

	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// CMSRepository 内容仓储接口
type CMSRepository interface {
	// 页面
	CreatePage(ctx context.Context, page *model.Page) error
	GetPageBySlug(ctx context.Context, slug string) (*model.Page, error)
	ListPages(ctx context.Context, publishedOnly bool) ([]model.Page, error)
	UpdatePage(ctx context.Context, page *model.Page) error
	DeletePage(ctx context.Context, id int64) error

	// 横幅
	CreateBanner(ctx context.Context, banner *model.Banner) error
	ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error)
	UpdateBanner(ctx context.Context, banner *model.Banner) error
	DeleteBanner(ctx context.Context, id int64) error
}

// ==================== 仓储实现 ====================

type cmsRepo struct {
	db *gorm.DB
}

// NewCMSRepository 创建内容仓储
func NewCMSRepository(db *gorm.DB) CMSRepository {
	return &cmsRepo{db: db}
}

func (r *cmsRepo) CreatePage(ctx context.Context, page *model.Page) error {
	return r.db.WithContext(ctx).Create(page).Error
}

func (r *cmsRepo) GetPageBySlug(ctx context.Context, slug string) (*model.Page, error) {
	var page model.Page
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *cmsRepo) ListPages(ctx context.Context, publishedOnly bool) ([]model.Page, error) {
	var pages []model.Page
	query := r.db.WithContext(ctx)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	err := query.Order("updated_at DESC").Find(&pages).Error
	return pages, err
}

func (r *cmsRepo) UpdatePage(ctx context.Context, page *model.Page) error {
	return r.db.WithContext(ctx).Save(page).Error
}

func (r *cmsRepo) DeletePage(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Page{}, id).Error
}

// ==================== 横幅 ====================

func (r *cmsRepo) CreateBanner(ctx context.Context, banner *model.Banner) error {
	return r.db.WithContext(ctx).Create(banner).Error
}

func (r *cmsRepo) ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error) {
	var banners []model.Banner
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("sort_order, id").Find(&banners).Error
	return banners, err
}

func (r *cmsRepo) UpdateBanner(ctx context.Context, banner *model.Banner) error {
	return r.db.WithContext(ctx).Save(banner).Error
}

func (r *cmsRepo) DeleteBanner(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Banner{}, id).Error
}
