package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ==================== Config 应用配置 ====================

// Config 应用配置，全部来自环境变量（.env 可选）
type Config struct {
	// 服务
	ServerPort string
	GinMode    string

	// 数据库
	DatabaseDSN string

	// Redis（购物车优惠码会话）
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CouponTTL     time.Duration

	// JWT
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// 外部通知网关，留空则只写站内通知
	NotifyGatewayURL string
}

// Load 读取配置；.env 不存在时静默跳过（生产环境直接注入环境变量）
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] 未找到 .env 文件，使用环境变量")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),

		DatabaseDSN: getEnv("DATABASE_DSN",
			"host=localhost user=postgres password=postgres dbname=nutriharvest port=5432 sslmode=disable TimeZone=Asia/Shanghai"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CouponTTL:     getEnvDuration("COUPON_SESSION_TTL", 24*time.Hour),

		JWTSecret:       getEnv("JWT_SECRET", "nutriharvest-mall-secret-change-in-production"),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 2*time.Hour),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		NotifyGatewayURL: getEnv("NOTIFY_GATEWAY_URL", ""),
	}
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("[Config] %s 不是合法整数，使用默认值 %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("[Config] %s 不是合法时长，使用默认值 %s", key, defaultValue)
	}
	return defaultValue
}
