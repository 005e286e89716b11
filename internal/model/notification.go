package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ==================== 通知常量 ====================

// NotifyChannel 通知渠道
type NotifyChannel string

const (
	ChannelEmail NotifyChannel = "email"
	ChannelSMS   NotifyChannel = "sms"
	ChannelInApp NotifyChannel = "inapp"
)

// ==================== NotificationTemplate 通知模板 ====================

// NotificationTemplate 通知模板
// Body 中使用 {{key}} 占位符，DefaultParams 提供缺省值
type NotificationTemplate struct {
	ID            int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string            `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Channel       NotifyChannel     `gorm:"size:10;not null" json:"channel"`
	Subject       string            `gorm:"size:200" json:"subject"`
	Body          string            `gorm:"type:text;not null" json:"body"`
	DefaultParams datatypes.JSONMap `gorm:"type:jsonb" json:"default_params,omitempty"`
	IsActive      bool              `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (NotificationTemplate) TableName() string { return "notification_templates" }

// Render 简单占位符替换，未提供的参数回落到 DefaultParams
func (t *NotificationTemplate) Render(params map[string]string) string {
	body := t.Body
	for k, v := range t.DefaultParams {
		if s, ok := v.(string); ok {
			if _, overridden := params[k]; !overridden {
				body = strings.ReplaceAll(body, "{{"+k+"}}", s)
			}
		}
	}
	for k, v := range params {
		body = strings.ReplaceAll(body, "{{"+k+"}}", v)
	}
	return body
}

// ==================== Notification 通知记录 ====================

// Notification 已产生的通知
// UserID 为空表示面向全体管理员的系统通知（如库存预警）
type Notification struct {
	ID        int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *int64        `gorm:"index" json:"user_id"`
	Channel   NotifyChannel `gorm:"size:10;not null" json:"channel"`
	Title     string        `gorm:"size:200" json:"title"`
	Message   string        `gorm:"type:text;not null" json:"message"`
	// DedupeKey 防止同一事件重复投递（如同一商品的低库存告警）
	DedupeKey string    `gorm:"size:64;uniqueIndex" json:"dedupe_key"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	SentAt    *time.Time `json:"sent_at"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
