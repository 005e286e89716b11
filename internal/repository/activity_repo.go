package repository

import (
	"context"

	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// ActivityRepository 操作日志仓储接口
type ActivityRepository interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
	List(ctx context.Context, userID int64, module string, page, pageSize int) ([]model.ActivityLog, int64, error)
}

// ==================== 仓储实现 ====================

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepository 创建操作日志仓储
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, entry *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityRepo) List(ctx context.Context, userID int64, module string, page, pageSize int) ([]model.ActivityLog, int64, error) {
	var logs []model.ActivityLog
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ActivityLog{})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if module != "" {
		query = query.Where("module = ?", module)
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
		Find(&logs).Error
	return logs, total, err
}
