package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ssq-board/internal/api"
	"ssq-board/internal/cache"
	"ssq-board/internal/config"
	"ssq-board/internal/dashboard"
	"ssq-board/internal/logger"
	"ssq-board/internal/lottery"
	"ssq-board/internal/telegram"
	"ssq-board/internal/web"
)

const shutdownTimeout = 5 * time.Second

// broadcaster 开奖推送
type broadcaster interface {
	BroadcastDrawResult(snap *api.Snapshot, res lottery.Resolution) int
}

// App 应用程序主结构
type App struct {
	config       *config.Config
	cacheManager *cache.Manager
	apiClient    *api.Client
	server       *web.Server
	telegramBot  *telegram.Bot
	broadcaster  broadcaster

	// 刷新串行执行
	refreshMu sync.Mutex

	// 控制通道
	stopChannel chan struct{}
	errChannel  chan error
	wg          sync.WaitGroup

	// 错误状态跟踪（避免重复日志）
	lastLoadError string
}

// NewApp 创建应用程序实例
func NewApp(cfg *config.Config) (*App, error) {
	fmt.Println("🚀 启动双色球预测对比面板...")

	cacheManager := cache.NewManager(cfg.App.CacheSize, cfg.App.ViewTTL)
	fmt.Println("✅ 缓存系统初始化完成")

	app := &App{
		config:       cfg,
		cacheManager: cacheManager,
		apiClient:    api.NewClient(&cfg.Data),
		stopChannel:  make(chan struct{}),
		errChannel:   make(chan error, 1),
	}

	server, err := web.NewServer(&cfg.Server, cacheManager, app)
	if err != nil {
		cacheManager.Close()
		return nil, fmt.Errorf("failed to initialize web server: %w", err)
	}
	app.server = server
	fmt.Println("✅ Web服务初始化完成")

	if cfg.Telegram.Enabled {
		bot, err := telegram.NewBot(&cfg.Telegram, cacheManager)
		if err != nil {
			cacheManager.Close()
			return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
		}
		app.telegramBot = bot
		app.broadcaster = bot
		fmt.Println("✅ Telegram机器人连接成功")
	} else {
		fmt.Println("ℹ️  Telegram机器人未启用")
	}

	fmt.Println("🎯 应用程序初始化完成")
	return app, nil
}

// Start 启动应用程序
func (a *App) Start() error {
	fmt.Println("🔄 启动所有服务...")

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Data.Timeout*3)
	defer cancel()

	if err := a.apiClient.HealthCheck(ctx); err != nil {
		logger.Warnf("%v", err)
		fmt.Println("⚠️  数据源暂不可用")
	}

	if err := a.Refresh(ctx); err != nil {
		logger.Warnf("Initial data load failed: %v", err)
		fmt.Println("⚠️  首次加载数据失败，将在下次轮询时重试")
	} else {
		fmt.Println("✅ 数据加载完成")
	}

	if a.telegramBot != nil {
		a.telegramBot.Start()
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Start(); err != nil {
			a.errChannel <- err
		}
	}()

	a.wg.Add(1)
	go a.refreshLoop()

	fmt.Println("✅ 所有服务启动完成")
	fmt.Printf("🌐 访问地址: %s\n", a.config.Server.Addr)
	fmt.Printf("⏰ 刷新间隔: %v\n", a.config.App.RefreshInterval)
	fmt.Println("💡 按 Ctrl+C 停止程序")
	fmt.Println("")
	return nil
}

// Errors 服务运行期间的致命错误
func (a *App) Errors() <-chan error {
	return a.errChannel
}

// Stop 停止应用程序
func (a *App) Stop() error {
	fmt.Println("🛑 正在停止应用程序...")

	close(a.stopChannel)

	if a.telegramBot != nil {
		a.telegramBot.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		logger.Errorf("Failed to shut down web server: %v", err)
	}

	a.wg.Wait()
	a.cacheManager.Close()

	fmt.Println("✅ 应用程序已安全停止")
	return nil
}

// Refresh 加载一次完整的数据快照，失败时保留上一份快照
func (a *App) Refresh(ctx context.Context) error {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	snap, err := a.apiClient.LoadAll(ctx)
	if err != nil {
		if a.lastLoadError != err.Error() {
			logger.Errorf("Failed to load data: %v", err)
			a.lastLoadError = err.Error()
		}
		return fmt.Errorf("failed to refresh data: %w", err)
	}
	a.lastLoadError = ""

	prev := a.cacheManager.OnNewSnapshot(snap)

	res, changed := dashboard.StatusChanged(prev, snap)
	logger.WithFields(logger.Fields{
		"target": res.TargetPeriod,
		"latest": res.LatestPeriod,
		"status": res.Status.String(),
	}).Debug("Snapshot refreshed")

	if changed {
		logger.Infof("Period %s has been drawn", res.TargetPeriod)
		if a.broadcaster != nil {
			a.broadcaster.BroadcastDrawResult(snap, res)
		}
	}
	return nil
}

// refreshLoop 定时刷新数据
func (a *App) refreshLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.config.App.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopChannel:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), a.config.Data.Timeout*3)
			if err := a.Refresh(ctx); err != nil {
				logger.Debugf("Scheduled refresh failed: %v", err)
			}
			cancel()
		}
	}
}
