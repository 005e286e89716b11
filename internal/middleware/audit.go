package middleware

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
)

// ==================== 审计日志 ====================

// ContextKeyRequestID 请求 ID 的 Context Key
const ContextKeyRequestID = "request_id"

// RequestID 为每个请求生成 UUID，写响应头并放入 Context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(ContextKeyRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// GetRequestID 从 Context 获取请求 ID
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(ContextKeyRequestID); exists {
		return id.(string)
	}
	return ""
}

// AuditLog 后台写操作审计中间件。
// 只记录已登录用户的非 GET 请求，落库失败不影响业务响应
func AuditLog(activityRepo repository.ActivityRepository, module model.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" {
			return
		}
		userID := GetUserID(c)
		if userID == 0 {
			return
		}

		entry := &model.ActivityLog{
			UserID:      userID,
			RequestID:   GetRequestID(c),
			Action:      c.Request.Method + " " + c.FullPath(),
			Module:      string(module),
			Description: c.Request.Method + " " + c.Request.URL.Path,
			IPAddress:   c.ClientIP(),
			Metadata: datatypes.JSONMap{
				"status": c.Writer.Status(),
			},
		}
		if err := activityRepo.Create(c.Request.Context(), entry); err != nil {
			log.Printf("[AuditLog] 写入操作日志失败 user=%d: %v", userID, err)
		}
	}
}
