package scheduler

import (
	"github.com/credvault/cvs/internal/config"
	"github.com/credvault/cvs/internal/ledger"
	"github.com/credvault/cvs/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// Manager 定时任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	ledger    *ledger.Ledger
	config    *config.Config
}

// NewManager 创建定时任务管理器
func NewManager(l *ledger.Ledger, cfg *config.Config) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Manager{
		scheduler: s,
		ledger:    l,
		config:    cfg,
	}, nil
}

// Start 启动定时任务
func Start(l *ledger.Ledger, cfg *config.Config) (*Manager, error) {
	manager, err := NewManager(l, cfg)
	if err != nil {
		return nil, err
	}

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Scheduler started successfully")
	return manager, nil
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 注册活动状态终结任务
	m.registerJob(NewCampaignStatusJob(m.ledger, m.config))
}

// Job 定时任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// registerJob 注册单个任务
func (m *Manager) registerJob(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Scheduler stopped")
}
