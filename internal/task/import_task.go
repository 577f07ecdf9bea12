package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"pcparts_dev_v1/internal/service"
	"pcparts_dev_v1/pkg/logger"
)

// ==================== ListingImportTask 目录刷新任务 ====================

// ListingImportTask 定时刷新配件目录
// 默认每日凌晨 3 点全量抓取一次；同一时刻最多一轮在跑
type ListingImportTask struct {
	importSvc *service.ImportService
	cron      *cron.Cron
	spec      string
	timeout   time.Duration
	running   chan struct{}
	log       logger.Logger
}

// NewListingImportTask 创建目录刷新任务
func NewListingImportTask(importSvc *service.ImportService, spec string, log logger.Logger) *ListingImportTask {
	return &ListingImportTask{
		importSvc: importSvc,
		cron:      cron.New(cron.WithSeconds()),
		spec:      spec,
		timeout:   time.Hour,
		running:   make(chan struct{}, 1),
		log:       log,
	}
}

// Start 启动定时任务
func (t *ListingImportTask) Start() error {
	if _, err := t.cron.AddFunc(t.spec, t.runOnce); err != nil {
		return err
	}
	t.cron.Start()
	t.log.Infof("目录刷新任务已启动: %s", t.spec)
	return nil
}

// Stop 停止任务，等待在跑的一轮结束
func (t *ListingImportTask) Stop() {
	<-t.cron.Stop().Done()
}

func (t *ListingImportTask) runOnce() {
	select {
	case t.running <- struct{}{}:
		defer func() { <-t.running }()
	default:
		t.log.Warnf("上一轮目录刷新还在跑，本次跳过")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	t.importSvc.RefreshCatalog(ctx)
}
