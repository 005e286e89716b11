package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
)

// ==================== NotificationService 通知服务 ====================

// NotificationService 站内通知 + 外部网关（邮件/短信）投递
// 网关投递是尽力而为：失败只记日志，站内记录始终落库
type NotificationService struct {
	repo       repository.NotificationRepository
	client     *resty.Client
	gatewayURL string
}

// NewNotificationService 工厂方法。gatewayURL 为空时只写站内通知
func NewNotificationService(repo repository.NotificationRepository, gatewayURL string) *NotificationService {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &NotificationService{
		repo:       repo,
		client:     client,
		gatewayURL: gatewayURL,
	}
}

// gatewayPayload 外部通知网关的请求体
type gatewayPayload struct {
	Channel string `json:"channel"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendOrderCreated 下单成功通知买家
func (s *NotificationService) SendOrderCreated(ctx context.Context, order *model.Order) error {
	params := map[string]string{
		"order_number": order.OrderNumber,
		"total":        order.TotalAmount.StringFixed(2),
		"name":         order.ShippingName,
	}
	subject, body := s.renderOrDefault(ctx, "order_created",
		"订单已创建",
		"您的订单 {{order_number}} 已创建，应付金额 {{total}} 元。", params)

	n := &model.Notification{
		UserID:    &order.CustomerID,
		Channel:   model.ChannelInApp,
		Title:     subject,
		Message:   body,
		DedupeKey: "order_created:" + order.OrderNumber,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return err
	}

	if order.ShippingEmail != "" {
		s.deliver(ctx, n.ID, gatewayPayload{
			Channel: string(model.ChannelEmail),
			To:      order.ShippingEmail,
			Subject: subject,
			Body:    body,
		})
	}
	return nil
}

// SendLowStockAlert 低库存预警，投给全体管理员（UserID 为空）。
// DedupeKey 按商品 + 自然日去重，避免定时任务重复轰炸
func (s *NotificationService) SendLowStockAlert(ctx context.Context, product *model.Product) error {
	params := map[string]string{
		"product": product.Name,
		"stock":   fmt.Sprintf("%d", product.Stock),
	}
	subject, body := s.renderOrDefault(ctx, "low_stock",
		"库存预警",
		"商品 {{product}} 库存仅剩 {{stock}}，请及时补货。", params)

	n := &model.Notification{
		Channel:   model.ChannelInApp,
		Title:     subject,
		Message:   body,
		DedupeKey: fmt.Sprintf("low_stock:%d:%s", product.ID, time.Now().Format("20060102")),
	}
	return s.repo.CreateNotification(ctx, n)
}

// ListByUser 用户通知列表（含全员系统通知）
func (s *NotificationService) ListByUser(ctx context.Context, userID int64, unreadOnly bool, page, pageSize int) ([]model.Notification, int64, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, page, pageSize)
}

// MarkRead 标记已读
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// SaveTemplate 后台维护通知模板
func (s *NotificationService) SaveTemplate(ctx context.Context, tpl *model.NotificationTemplate) error {
	return s.repo.SaveTemplate(ctx, tpl)
}

// renderOrDefault 有模板按模板渲染，没有用内置文案
func (s *NotificationService) renderOrDefault(ctx context.Context, name, defSubject, defBody string, params map[string]string) (string, string) {
	tpl, err := s.repo.GetTemplateByName(ctx, name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[NotificationService] 读取模板 %s 失败: %v", name, err)
		}
		fallback := &model.NotificationTemplate{Subject: defSubject, Body: defBody}
		return defSubject, fallback.Render(params)
	}
	return tpl.Subject, tpl.Render(params)
}

// deliver 调外部网关投递；成功回写 sent_at，失败只记日志
func (s *NotificationService) deliver(ctx context.Context, notificationID int64, payload gatewayPayload) {
	if s.gatewayURL == "" {
		return
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(s.gatewayURL + "/v1/messages")
	if err != nil {
		log.Printf("[NotificationService] 网关投递失败 channel=%s: %v", payload.Channel, err)
		return
	}
	if resp.IsError() {
		log.Printf("[NotificationService] 网关返回 %d channel=%s", resp.StatusCode(), payload.Channel)
		return
	}
	if err := s.repo.MarkSent(ctx, notificationID, time.Now()); err != nil {
		log.Printf("[NotificationService] 回写 sent_at 失败 id=%d: %v", notificationID, err)
	}
}
