/*
 * @Description: 定时任务调度器：注册、启动与优雅停止
 * @Author: 安知鱼
 * @Date: 2025-09-04 14:50:26
 * @LastEditTime: 2025-11-07 20:25:18
 * @LastEditors: 安知鱼
 */
package task

import (
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/anzhiyu-c/anwen-blog/pkg/domain/repository"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/utility"
)

// Scheduler 封装了 cron 实例和任务依赖，
// 负责所有定时任务的注册、启动和停止。
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	postRepo repository.PostRepository
	cacheSvc utility.CacheService
}

// NewScheduler 是 Scheduler 的构造函数
func NewScheduler(postRepo repository.PostRepository, cacheSvc utility.CacheService) *Scheduler {
	slogHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(slogHandler).With("system", "cron")

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
			cron.DelayIfStillRunning(cron.DefaultLogger),
		),
	)

	return &Scheduler{
		cron:     c,
		logger:   logger,
		postRepo: postRepo,
		cacheSvc: cacheSvc,
	}
}

// RegisterJobs 在调度器中注册所有定义好的定时任务。
func (s *Scheduler) RegisterJobs() {
	s.logger.Info("Registering all periodic jobs...")

	// 浏览量同步：每分钟把缓存中的增量刷回存储层
	syncViewsJob := NewSyncViewCountsJob(s.postRepo, s.cacheSvc)
	if _, err := s.cron.AddJob("0 * * * * *", syncViewsJob); err != nil {
		s.logger.Error("Failed to add 'SyncPostViewCountsJob'", slog.Any("error", err))
		os.Exit(1)
	}
	s.logger.Info("-> Successfully registered 'SyncPostViewCountsJob'", "schedule", "every minute")

	s.logger.Info("All periodic jobs registered.")
}

// Start 启动 cron 调度器。
func (s *Scheduler) Start() {
	s.logger.Info("Cron scheduler started.")
	s.cron.Start()
}

// Stop 优雅地停止 cron 调度器，等待在跑的任务结束。
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler gracefully stopped.")
}
