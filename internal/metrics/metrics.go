package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CampaignsCreated 累计创建的活动数
	CampaignsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sfl_campaigns_created_total",
		Help: "Total number of campaigns created",
	})

	// ContributionsTotal 累计贡献笔数，按结果分类
	ContributionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sfl_contributions_total",
		Help: "Total number of contribution attempts",
	}, []string{"status"}) // accepted / rejected

	// PayoutsTotal 累计支付次数，按路径分类
	PayoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sfl_payouts_total",
		Help: "Total number of successful payouts",
	}, []string{"path"}) // refund / timeout_refund / withdraw / fee_withdraw

	// PayoutAmount 累计支付金额，按路径分类
	PayoutAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sfl_payout_amount_total",
		Help: "Total amount paid out in base units",
	}, []string{"path"})

	// TransferFailures 划转失败次数（标志已置位，需人工介入）
	TransferFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sfl_transfer_failures_total",
		Help: "Total number of failed value transfers requiring operator intervention",
	})

	// ActiveCampaigns 当前进行中的活动数
	ActiveCampaigns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sfl_active_campaigns",
		Help: "Number of campaigns currently active",
	})

	// TimeoutEligibleCampaigns 已过解密截止期、可走超时退款的活动数
	TimeoutEligibleCampaigns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sfl_timeout_eligible_campaigns",
		Help: "Number of campaigns past their decryption deadline and open to timeout refunds",
	})

	// PendingDecryptionRequests 等待网关回调的请求数
	PendingDecryptionRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sfl_pending_decryption_requests",
		Help: "Number of decryption requests awaiting a gateway callback",
	})
)
