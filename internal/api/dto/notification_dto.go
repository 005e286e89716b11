package dto

// NotificationTemplateRequest 新建/覆盖通知模板请求
type NotificationTemplateRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Channel  string `json:"channel" binding:"required,oneof=email sms inapp"`
	Subject  string `json:"subject" binding:"max=200"`
	Body     string `json:"body" binding:"required"`
	IsActive *bool  `json:"is_active"`
}
