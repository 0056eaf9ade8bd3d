package main

import (
	"time"

	"github.com/credvault/cvs/internal/config"
	"github.com/credvault/cvs/internal/ethereum"
	"github.com/credvault/cvs/internal/event"
	"github.com/credvault/cvs/internal/ledger"
	"github.com/credvault/cvs/internal/logger"
	"github.com/credvault/cvs/internal/router"
	"github.com/credvault/cvs/internal/scheduler"
	"github.com/credvault/cvs/internal/store/gormstore"
	"github.com/credvault/cvs/internal/store/memstore"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		logger.Fatal("Failed to setup logger: %v", err)
	}
	defer logger.Sync()

	// 初始化存储
	var store ledger.Store
	switch cfg.Storage.Driver {
	case "memory":
		store = memstore.New()
		logger.Warn("Using in-memory storage, all state is lost on restart")
	default:
		gs, err := gormstore.Init(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to initialize database: %v", err)
		}
		store = gs
	}

	// 初始化账本
	l := ledger.NewLedger(store, nil)
	l.Subscribe(ledger.SubscriberFunc(func(n ledger.Notification) {
		logger.Debug("Ledger notification: %s campaign=%d address=%s", n.Type, n.CampaignId, n.Address)
	}))

	// 启动链上事件同步
	if cfg.Chain.Enabled {
		ethClient, err := ethereum.Init(cfg.Chain)
		if err != nil {
			logger.Fatal("Failed to initialize ethereum client: %v", err)
		}

		monitor := event.NewMonitor(ethClient, store, l,
			time.Duration(cfg.Chain.PollInterval)*time.Second)
		if err := monitor.Start(); err != nil {
			logger.Fatal("Failed to start blockchain monitor: %v", err)
		}
		defer monitor.Stop()
	}

	// 启动定时任务
	sched, err := scheduler.Start(l, cfg)
	if err != nil {
		logger.Fatal("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由并启动服务器
	r := router.Setup(l, store, cfg.Storage.Driver)

	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
