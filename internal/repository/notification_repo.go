package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutriharvest_mall_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// NotificationRepository 通知仓储接口
type NotificationRepository interface {
	GetTemplateByName(ctx context.Context, name string) (*model.NotificationTemplate, error)
	SaveTemplate(ctx context.Context, tpl *model.NotificationTemplate) error

	// CreateNotification 按 DedupeKey 去重，重复投递静默跳过
	CreateNotification(ctx context.Context, n *model.Notification) error
	MarkSent(ctx context.Context, id int64, at time.Time) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, page, pageSize int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id int64) error
}

// ==================== 仓储实现 ====================

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) GetTemplateByName(ctx context.Context, name string) (*model.NotificationTemplate, error) {
	var tpl model.NotificationTemplate
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// SaveTemplate 模板名冲突时覆盖内容
func (r *notificationRepo) SaveTemplate(ctx context.Context, tpl *model.NotificationTemplate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"channel", "subject", "body", "default_params", "is_active", "updated_at",
			}),
		}).
		Create(tpl).Error
}

func (r *notificationRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(n).Error
}

func (r *notificationRepo) MarkSent(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Update("sent_at", at).Error
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID int64, unreadOnly bool, page, pageSize int) ([]model.Notification, int64, error) {
	var items []model.Notification
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? OR user_id IS NULL", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	err := query.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	return items, total, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, userID, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND (user_id = ? OR user_id IS NULL)", id, userID).
		Update("is_read", true).Error
}
