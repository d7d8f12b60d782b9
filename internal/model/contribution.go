package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Contribution 贡献记录
//
// 每个（活动, 贡献者）对一条记录，多次贡献累加到同一条。
// ActualAmount 是唯一要求精确的金额，用于退款结算；
// ObfuscatedAmount 只是混淆承诺值，永不参与资金划转。
type Contribution struct {
	CampaignId  uint64         `json:"campaign_id"`
	Contributor common.Address `json:"contributor"`

	ActualAmount     int64  `json:"actual_amount"`
	ObfuscatedAmount uint64 `json:"obfuscated_amount"`

	FirstContributedAt time.Time `json:"first_contributed_at"`

	// 一次性标志：置位后此贡献者在此活动中永远不能再收到任何退款
	RefundClaimed bool `json:"refund_claimed"`
}
