package scheduler

import (
	"context"
	"time"

	"github.com/credvault/cvs/internal/config"
	"github.com/credvault/cvs/internal/ledger"
	"github.com/credvault/cvs/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// CampaignStatusJob 活动状态终结任务
//
// 周期性把到期或达标的活动移入终态，状态迁移单向不可逆。
type CampaignStatusJob struct {
	ledger *ledger.Ledger
	config *config.Config
}

// NewCampaignStatusJob 创建活动状态终结任务
func NewCampaignStatusJob(l *ledger.Ledger, cfg *config.Config) *CampaignStatusJob {
	return &CampaignStatusJob{
		ledger: l,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *CampaignStatusJob) GetName() string {
	return "campaign_status_finalizer"
}

// GetSchedule 获取调度配置
func (j *CampaignStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.Interval) * time.Second)
}

// Execute 执行任务
func (j *CampaignStatusJob) Execute() {
	updated, err := j.ledger.FinalizeExpired(context.Background(), time.Now())
	if err != nil {
		logger.Error("Campaign status job failed: %v", err)
		return
	}

	if updated > 0 {
		logger.Info("Campaign status job completed, finalized %d campaigns", updated)
	}
}
