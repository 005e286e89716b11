package database

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// InitRedis 初始化 Redis 连接并探活
func InitRedis(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis 连接失败: %v", err)
	}

	log.Println("Redis 连接成功 (Redis Connected Successfully)")
	return client
}
