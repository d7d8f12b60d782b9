package task

import (
	"time"

	"github.com/blues/sfl/internal/config"
	"github.com/blues/sfl/internal/ledger"
	"github.com/blues/sfl/internal/logger"
	"github.com/blues/sfl/internal/metrics"
	"github.com/go-co-op/gocron/v2"
)

// LedgerStatsJob 账本统计任务
type LedgerStatsJob struct {
	ledger *ledger.Ledger
	config *config.Config
}

// NewLedgerStatsJob 创建账本统计任务
func NewLedgerStatsJob(l *ledger.Ledger, cfg *config.Config) *LedgerStatsJob {
	return &LedgerStatsJob{ledger: l, config: cfg}
}

// GetName 获取任务名称
func (j *LedgerStatsJob) GetName() string {
	return "ledger_stats"
}

// GetSchedule 获取调度配置
func (j *LedgerStatsJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *LedgerStatsJob) Execute() {
	stats := j.ledger.Snapshot()

	metrics.ActiveCampaigns.Set(float64(stats.ActiveCampaigns))

	logger.Info("账本统计: 活动总数=%d 进行中=%d 在途解密请求=%d 手续费池=%d",
		stats.TotalCampaigns, stats.ActiveCampaigns, stats.PendingRequests, stats.FeePoolBalance)
}
