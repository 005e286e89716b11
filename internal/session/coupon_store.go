package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ==================== 接口定义 ====================

// CouponStore 记录每个用户当前挂在购物车上的优惠码
// 等价于 Web 会话里的 coupon_code 字段：结算成功或手动移除后删除
type CouponStore interface {
	Set(ctx context.Context, userID int64, code string) error
	// Get 未设置时返回空串且无错误
	Get(ctx context.Context, userID int64) (string, error)
	Delete(ctx context.Context, userID int64) error
}

// ==================== Redis 实现 ====================

type redisCouponStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCouponStore ttl 到期自动清除，避免遗留的死会话
func NewRedisCouponStore(rdb *redis.Client, ttl time.Duration) CouponStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisCouponStore{rdb: rdb, ttl: ttl}
}

func couponKey(userID int64) string {
	return fmt.Sprintf("cart:coupon:%d", userID)
}

func (s *redisCouponStore) Set(ctx context.Context, userID int64, code string) error {
	return s.rdb.Set(ctx, couponKey(userID), code, s.ttl).Err()
}

func (s *redisCouponStore) Get(ctx context.Context, userID int64) (string, error) {
	code, err := s.rdb.Get(ctx, couponKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *redisCouponStore) Delete(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, couponKey(userID)).Err()
}

// ==================== 内存实现（测试用） ====================

type memoryCouponStore struct {
	mu    sync.RWMutex
	codes map[int64]string
}

// NewMemoryCouponStore 单元测试与本地开发使用
func NewMemoryCouponStore() CouponStore {
	return &memoryCouponStore{codes: make(map[int64]string)}
}

func (s *memoryCouponStore) Set(_ context.Context, userID int64, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[userID] = code
	return nil
}

func (s *memoryCouponStore) Get(_ context.Context, userID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codes[userID], nil
}

func (s *memoryCouponStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, userID)
	return nil
}
