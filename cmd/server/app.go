/*
 * @Description: 应用装配：配置、基础设施、仓库、服务与路由的依赖注入
 * @Author: 安知鱼
 * @Date: 2025-09-04 17:02:40
 * @LastEditTime: 2025-11-07 22:15:33
 * @LastEditors: 安知鱼
 */
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anwen-blog/internal/app/bootstrap"
	"github.com/anzhiyu-c/anwen-blog/internal/app/middleware"
	"github.com/anzhiyu-c/anwen-blog/internal/app/task"
	"github.com/anzhiyu-c/anwen-blog/internal/infra/persistence/database"
	mongo_impl "github.com/anzhiyu-c/anwen-blog/internal/infra/persistence/mongo"
	"github.com/anzhiyu-c/anwen-blog/internal/infra/router"
	"github.com/anzhiyu-c/anwen-blog/pkg/config"
	auth_handler "github.com/anzhiyu-c/anwen-blog/pkg/handler/auth"
	post_handler "github.com/anzhiyu-c/anwen-blog/pkg/handler/post"
	user_handler "github.com/anzhiyu-c/anwen-blog/pkg/handler/user"
	auth_service "github.com/anzhiyu-c/anwen-blog/pkg/service/auth"
	post_service "github.com/anzhiyu-c/anwen-blog/pkg/service/post"
	user_service "github.com/anzhiyu-c/anwen-blog/pkg/service/user"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/utility"
)

// App 持有应用的全部长生命周期组件
type App struct {
	cfg       *config.Config
	engine    *gin.Engine
	scheduler *task.Scheduler
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp() (*App, func(), error) {
	ctx := context.Background()

	// --- Phase 1: 加载外部配置 ---
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// --- Phase 2: 初始化基础设施 ---
	db, dbCleanup, err := database.NewMongoDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// Redis 不可用时返回 nil，缓存工厂会降级到内存实现
	redisClient := database.NewRedisClient(ctx, cfg)

	cleanup := func() {
		log.Println("执行清理操作：关闭数据库连接...")
		dbCleanup()
		if redisClient != nil {
			log.Println("关闭 Redis 连接...")
			redisClient.Close()
		}
	}

	// --- Phase 3: 初始化数据仓库层 ---
	userRepo := mongo_impl.NewUserRepository(db)
	postRepo := mongo_impl.NewPostRepository(db)

	// --- Phase 4: 启动引导（索引、JWT 密钥、初始管理员）---
	if err := bootstrap.Run(ctx, cfg, db, userRepo); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("启动引导失败: %w", err)
	}

	// --- Phase 5: 初始化服务层 ---
	cacheSvc := utility.NewCacheService(redisClient)
	tokenSvc := auth_service.NewTokenService(cfg)
	authSvc := auth_service.NewService(userRepo, tokenSvc)
	postSvc := post_service.NewService(postRepo, userRepo, cacheSvc)
	userSvc := user_service.NewService(userRepo, postRepo, postSvc)

	// --- Phase 6: 初始化 Handler 与路由 ---
	mw := middleware.NewMiddleware(tokenSvc)
	engine := router.New(
		auth_handler.NewHandler(authSvc),
		post_handler.NewHandler(postSvc),
		user_handler.NewHandler(userSvc),
		mw,
	).Setup(cfg.GetBool(config.KeyServerDebug))

	// --- Phase 7: 初始化定时任务 ---
	scheduler := task.NewScheduler(postRepo, cacheSvc)
	scheduler.RegisterJobs()

	return &App{
		cfg:       cfg,
		engine:    engine,
		scheduler: scheduler,
	}, cleanup, nil
}

// Run 启动定时任务与 HTTP 服务，阻塞到收到退出信号后优雅关停
func (a *App) Run() error {
	a.scheduler.Start()

	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: a.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("应用程序启动成功，正在监听端口: %s\n", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.scheduler.Stop()
		return err
	case sig := <-quit:
		log.Printf("收到退出信号 %v，开始优雅关停...", sig)
	}

	// 先停调度器，让最后一次浏览量同步有机会跑完
	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP 服务关停失败: %w", err)
	}

	log.Println("应用程序已退出。")
	return nil
}
