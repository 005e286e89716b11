package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
)

// ErrPageNotFound 页面不存在或未发布
var ErrPageNotFound = errors.New("page not found")

// ==================== CMSService 内容服务 ====================

// CMSService 静态页面与首页横幅
type CMSService struct {
	cmsRepo repository.CMSRepository
}

// NewCMSService 工厂方法
func NewCMSService(cmsRepo repository.CMSRepository) *CMSService {
	return &CMSService{cmsRepo: cmsRepo}
}

// GetPublishedPage 前台按 slug 取已发布页面
func (s *CMSService) GetPublishedPage(ctx context.Context, slug string) (*model.Page, error) {
	page, err := s.cmsRepo.GetPageBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	if !page.IsPublished {
		return nil, ErrPageNotFound
	}
	return page, nil
}

// GetPage 后台按 slug 取页面，不看发布状态
func (s *CMSService) GetPage(ctx context.Context, slug string) (*model.Page, error) {
	page, err := s.cmsRepo.GetPageBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return page, nil
}

// CreatePage 新建页面；slug 缺省由标题生成
func (s *CMSService) CreatePage(ctx context.Context, page *model.Page) error {
	if page.Slug == "" {
		page.Slug = slugify(page.Title)
	}
	return s.cmsRepo.CreatePage(ctx, page)
}

// UpdatePage 更新页面
func (s *CMSService) UpdatePage(ctx context.Context, page *model.Page) error {
	return s.cmsRepo.UpdatePage(ctx, page)
}

// DeletePage 删除页面
func (s *CMSService) DeletePage(ctx context.Context, id int64) error {
	return s.cmsRepo.DeletePage(ctx, id)
}

// ListPages 页面列表，前台只看已发布
func (s *CMSService) ListPages(ctx context.Context, publishedOnly bool) ([]model.Page, error) {
	return s.cmsRepo.ListPages(ctx, publishedOnly)
}

// ==================== 横幅 ====================

// CreateBanner 新建横幅
func (s *CMSService) CreateBanner(ctx context.Context, banner *model.Banner) error {
	return s.cmsRepo.CreateBanner(ctx, banner)
}

// UpdateBanner 更新横幅
func (s *CMSService) UpdateBanner(ctx context.Context, banner *model.Banner) error {
	return s.cmsRepo.UpdateBanner(ctx, banner)
}

// DeleteBanner 删除横幅
func (s *CMSService) DeleteBanner(ctx context.Context, id int64) error {
	return s.cmsRepo.DeleteBanner(ctx, id)
}

// ListBanners 横幅列表，前台只看启用中的
func (s *CMSService) ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error) {
	return s.cmsRepo.ListBanners(ctx, activeOnly)
}
