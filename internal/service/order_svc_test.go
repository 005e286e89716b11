package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	err = db.AutoMigrate(
		&model.Role{}, &model.User{}, &model.Category{}, &model.Product{},
		&model.Order{}, &model.OrderItem{},
	)
	if err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, customerID int64, status string) *model.Order {
	order := model.Order{
		OrderNumber: model.NewOrderNumber(),
		CustomerID:  customerID,
		Subtotal:    d("100"), TotalAmount: d("100"),
		PaymentMode: model.PaymentModeCOD, PaymentStatus: model.PaymentStatusPending,
		OrderStatus: status,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("创建订单失败: %v", err)
	}
	return &order
}

func orderStatus(t *testing.T, db *gorm.DB, id int64) string {
	var order model.Order
	if err := db.First(&order, id).Error; err != nil {
		t.Fatalf("查询订单失败: %v", err)
	}
	return order.OrderStatus
}

// ==================== 单元测试 ====================

func TestOrderLifecycle(t *testing.T) {
	db := setupOrderTestDB(t)
	svc := NewOrderService(repository.NewOrderRepository(db))
	ctx := context.Background()
	order := seedOrder(t, db, 1, model.OrderStatusPending)

	// pending → processing → shipped → delivered
	if err := svc.Process(ctx, order.ID); err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if err := svc.Ship(ctx, order.ID); err != nil {
		t.Fatalf("Ship 失败: %v", err)
	}
	if err := svc.Deliver(ctx, order.ID); err != nil {
		t.Fatalf("Deliver 失败: %v", err)
	}
	if got := orderStatus(t, db, order.ID); got != model.OrderStatusDelivered {
		t.Errorf("status = %s, want delivered", got)
	}
}

func TestOrderTransition_Invalid(t *testing.T) {
	db := setupOrderTestDB(t)
	svc := NewOrderService(repository.NewOrderRepository(db))
	ctx := context.Background()

	// 待处理订单不能直接发货
	pending := seedOrder(t, db, 1, model.OrderStatusPending)
	if err := svc.Ship(ctx, pending.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Ship(pending) err = %v, want ErrInvalidTransition", err)
	}

	// 已签收订单不能取消
	delivered := seedOrder(t, db, 1, model.OrderStatusDelivered)
	if err := svc.Cancel(ctx, 0, delivered.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Cancel(delivered) err = %v, want ErrInvalidTransition", err)
	}

	// 已取消订单不能再处理
	cancelled := seedOrder(t, db, 1, model.OrderStatusCancelled)
	if err := svc.Process(ctx, cancelled.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Process(cancelled) err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancel_Ownership(t *testing.T) {
	db := setupOrderTestDB(t)
	svc := NewOrderService(repository.NewOrderRepository(db))
	ctx := context.Background()
	order := seedOrder(t, db, 1, model.OrderStatusPending)

	// 别人的订单取消不了，对外表现为不存在
	if err := svc.Cancel(ctx, 2, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("err = %v, want ErrOrderNotFound", err)
	}

	// 本人可取消
	if err := svc.Cancel(ctx, 1, order.ID); err != nil {
		t.Fatalf("Cancel 失败: %v", err)
	}
	if got := orderStatus(t, db, order.ID); got != model.OrderStatusCancelled {
		t.Errorf("status = %s, want cancelled", got)
	}

	// 后台传 0 跳过归属校验
	other := seedOrder(t, db, 5, model.OrderStatusProcessing)
	if err := svc.Cancel(ctx, 0, other.ID); err != nil {
		t.Fatalf("后台取消失败: %v", err)
	}
}

func TestGetOwnedByUser(t *testing.T) {
	db := setupOrderTestDB(t)
	svc := NewOrderService(repository.NewOrderRepository(db))
	ctx := context.Background()
	order := seedOrder(t, db, 1, model.OrderStatusPending)

	if _, err := svc.GetOwnedByUser(ctx, 1, order.ID); err != nil {
		t.Errorf("本人查询失败: %v", err)
	}
	if _, err := svc.GetOwnedByUser(ctx, 2, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("err = %v, want ErrOrderNotFound", err)
	}
}
