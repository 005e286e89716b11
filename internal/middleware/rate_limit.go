package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// ==================== 限流 ====================

// RateLimit 按客户端 IP 限流，format 形如 "10-M"（每分钟 10 次）。
// 登录/注册入口用它挡撞库，内存存储即可，多实例部署时换共享存储。
func RateLimit(format string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(format)
	if err != nil {
		log.Fatalf("[RateLimit] 速率格式错误 %q: %v", format, err)
	}

	instance := limiter.New(memory.NewStore(), rate)

	return func(c *gin.Context) {
		limiterCtx, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			// 限流器故障时放行
			log.Printf("[RateLimit] 获取限流状态失败: %v", err)
			c.Next()
			return
		}

		if limiterCtx.Reached {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "请求过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
