package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/service"
)

// ==================== StockAlertTask 库存预警任务 ====================

// StockAlertTask 定时扫描低库存商品并产生预警通知。
// 通知按商品 + 自然日去重，同一天重复扫描不会重复投递。
type StockAlertTask struct {
	prodRepo      repository.ProductRepository
	notifyService *service.NotificationService
	cron          *cron.Cron

	batchSize int
}

// NewStockAlertTask 创建库存预警任务
func NewStockAlertTask(prodRepo repository.ProductRepository, notifyService *service.NotificationService) *StockAlertTask {
	return &StockAlertTask{
		prodRepo:      prodRepo,
		notifyService: notifyService,
		cron:          cron.New(cron.WithSeconds()),
		batchSize:     100,
	}
}

// Start 启动定时任务
func (t *StockAlertTask) Start() {
	// 定时策略：每 30 分钟执行
	_, err := t.cron.AddFunc("0 */30 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		t.execute(ctx)
	})
	if err != nil {
		log.Fatalf("[StockAlertTask] 无法启动定时任务: %v", err)
	}

	t.cron.Start()
	log.Println("[StockAlertTask] 库存预警任务已启动 (每 30 分钟检查)")
}

// Stop 停止任务
func (t *StockAlertTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[StockAlertTask] 已停止")
}

// execute 执行一次任务
func (t *StockAlertTask) execute(ctx context.Context) {
	products, err := t.prodRepo.ListLowStock(ctx, t.batchSize)
	if err != nil {
		log.Printf("[StockAlertTask] 查询低库存商品失败: %v", err)
		return
	}
	if len(products) == 0 {
		return
	}

	log.Printf("[StockAlertTask] 发现 %d 个低库存商品", len(products))
	for i := range products {
		if err := t.notifyService.SendLowStockAlert(ctx, &products[i]); err != nil {
			log.Printf("[StockAlertTask] 商品 %d 预警失败: %v", products[i].ID, err)
		}
	}
}
