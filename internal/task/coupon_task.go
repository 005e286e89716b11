package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"nutriharvest_mall_v1_202608/internal/repository"
)

// ==================== CouponExpiryTask 优惠券过期任务 ====================

// CouponExpiryTask 定时把有效期已过的优惠券批量下线。
// 计价路径本身会校验有效期，这个任务只是让后台列表状态不骗人。
type CouponExpiryTask struct {
	couponRepo repository.CouponRepository
	cron       *cron.Cron
}

// NewCouponExpiryTask 创建优惠券过期任务
func NewCouponExpiryTask(couponRepo repository.CouponRepository) *CouponExpiryTask {
	return &CouponExpiryTask{
		couponRepo: couponRepo,
		cron:       cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *CouponExpiryTask) Start() {
	// 定时策略：每小时整点执行
	_, err := t.cron.AddFunc("0 0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		t.execute(ctx)
	})
	if err != nil {
		log.Fatalf("[CouponExpiryTask] 无法启动定时任务: %v", err)
	}

	t.cron.Start()
	log.Println("[CouponExpiryTask] 优惠券过期任务已启动 (每小时检查)")
}

// Stop 停止任务
func (t *CouponExpiryTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[CouponExpiryTask] 已停止")
}

// execute 执行一次任务
func (t *CouponExpiryTask) execute(ctx context.Context) {
	affected, err := t.couponRepo.DeactivateExpired(ctx, time.Now())
	if err != nil {
		log.Printf("[CouponExpiryTask] 批量下线失败: %v", err)
		return
	}
	if affected > 0 {
		log.Printf("[CouponExpiryTask] 已下线 %d 张过期优惠券", affected)
	}
}
