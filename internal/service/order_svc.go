package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
)

// ==================== 错误定义 ====================

var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition 当前状态不允许该流转
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// ==================== OrderService 订单服务 ====================

// OrderService 订单查询与状态流转
// 流转规则：pending → processing → shipped → delivered，发货前可取消
type OrderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService 工厂方法
func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// GetByID 取订单（含订单行与商品）
func (s *OrderService) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// GetByNumber 按订单号取订单
func (s *OrderService) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	order, err := s.orderRepo.GetByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// GetOwnedByUser 顾客只能看自己的订单
func (s *OrderService) GetOwnedByUser(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List 订单列表
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.List(ctx, filter)
}

// ==================== 状态流转 ====================

// Process 待处理 → 处理中
func (s *OrderService) Process(ctx context.Context, id int64) error {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.CanProcess() {
		return fmt.Errorf("%w: %s → processing", ErrInvalidTransition, order.OrderStatus)
	}
	return s.orderRepo.UpdateStatus(ctx, id, model.OrderStatusProcessing)
}

// Ship 处理中 → 已发货
func (s *OrderService) Ship(ctx context.Context, id int64) error {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.CanShip() {
		return fmt.Errorf("%w: %s → shipped", ErrInvalidTransition, order.OrderStatus)
	}
	return s.orderRepo.UpdateStatus(ctx, id, model.OrderStatusShipped)
}

// Deliver 已发货 → 已签收
func (s *OrderService) Deliver(ctx context.Context, id int64) error {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order.OrderStatus != model.OrderStatusShipped {
		return fmt.Errorf("%w: %s → delivered", ErrInvalidTransition, order.OrderStatus)
	}
	return s.orderRepo.UpdateStatus(ctx, id, model.OrderStatusDelivered)
}

// Cancel 取消订单；顾客侧调用时带 userID 校验归属，后台侧传 0 跳过
func (s *OrderService) Cancel(ctx context.Context, userID, id int64) error {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if userID > 0 && order.CustomerID != userID {
		return ErrOrderNotFound
	}
	if !order.CanCancel() {
		return fmt.Errorf("%w: %s → cancelled", ErrInvalidTransition, order.OrderStatus)
	}
	return s.orderRepo.UpdateStatus(ctx, id, model.OrderStatusCancelled)
}

// MarkPaid 支付回执：标记已支付
func (s *OrderService) MarkPaid(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.orderRepo.UpdatePaymentStatus(ctx, id, model.PaymentStatusPaid)
}
