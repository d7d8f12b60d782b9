package task

import (
	"time"

	"github.com/blues/sfl/internal/config"
	"github.com/blues/sfl/internal/ledger"
	"github.com/blues/sfl/internal/logger"
	"github.com/blues/sfl/internal/metrics"
	"github.com/go-co-op/gocron/v2"
)

// TimeoutWatchJob 解密超时观察任务
//
// 周期性统计已过解密截止期仍未终结的活动。只观察不动手：
// 超时退款是贡献者主动领取的路径，在途请求也不会被主动过期。
type TimeoutWatchJob struct {
	ledger *ledger.Ledger
	config *config.Config
}

// NewTimeoutWatchJob 创建超时观察任务
func NewTimeoutWatchJob(l *ledger.Ledger, cfg *config.Config) *TimeoutWatchJob {
	return &TimeoutWatchJob{ledger: l, config: cfg}
}

// GetName 获取任务名称
func (j *TimeoutWatchJob) GetName() string {
	return "decryption_timeout_watcher"
}

// GetSchedule 获取调度配置
func (j *TimeoutWatchJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *TimeoutWatchJob) Execute() {
	stats := j.ledger.Snapshot()

	metrics.TimeoutEligibleCampaigns.Set(float64(stats.TimeoutEligible))
	metrics.PendingDecryptionRequests.Set(float64(stats.PendingRequests))

	if stats.TimeoutEligible > 0 {
		logger.Warn("有 %d 个活动已过解密截止期，贡献者可走超时退款路径（在途请求 %d 个）",
			stats.TimeoutEligible, stats.PendingRequests)
	}
}
