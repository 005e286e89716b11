package service

import (
	"context"
	"time"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
)

// ==================== ReportService 报表服务 ====================

// ReportService 销售汇总与看板数据
type ReportService struct {
	orderRepo repository.OrderRepository
	prodRepo  repository.ProductRepository
}

// NewReportService 工厂方法
func NewReportService(orderRepo repository.OrderRepository, prodRepo repository.ProductRepository) *ReportService {
	return &ReportService{orderRepo: orderRepo, prodRepo: prodRepo}
}

// SalesSummary 区间销售汇总；区间缺省为最近 30 天
func (s *ReportService) SalesSummary(ctx context.Context, from, to time.Time) (*repository.SalesSummary, error) {
	from, to = normalizeRange(from, to)
	return s.orderRepo.SalesSummary(ctx, from, to)
}

// TopProducts 区间销量榜
func (s *ReportService) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.ProductSales, error) {
	from, to = normalizeRange(from, to)
	return s.orderRepo.TopProducts(ctx, from, to, limit)
}

// Dashboard 后台首页看板：当日汇总 + 本月汇总 + 低库存清单
type Dashboard struct {
	Today    *repository.SalesSummary `json:"today"`
	Month    *repository.SalesSummary `json:"month"`
	LowStock []model.Product          `json:"low_stock"`
}

// Dashboard 组装看板数据
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	today, err := s.orderRepo.SalesSummary(ctx, dayStart, now.Add(time.Second))
	if err != nil {
		return nil, err
	}
	month, err := s.orderRepo.SalesSummary(ctx, monthStart, now.Add(time.Second))
	if err != nil {
		return nil, err
	}
	lowStock, err := s.prodRepo.ListLowStock(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &Dashboard{Today: today, Month: month, LowStock: lowStock}, nil
}

func normalizeRange(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return from, to
}
