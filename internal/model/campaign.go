package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Campaign 众筹活动账本记录
//
// 活动一经创建永不删除（追加式账本语义）。目标金额只保存承诺哈希，
// 明文目标从不落账。Multiplier 为链下私有字段，不参与序列化。
type Campaign struct {
	Id        uint64    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// 创建者信息
	Creator common.Address `json:"creator"`

	// 承诺信息
	TargetCommitment  common.Hash `json:"target_commitment"`
	CurrentCommitment uint64      `json:"current_commitment"`
	Multiplier        uint64      `json:"-"`

	// 时间信息
	FundingDeadline    time.Time `json:"funding_deadline"`
	DecryptionDeadline time.Time `json:"decryption_deadline"`

	// 状态
	Status CampaignStatus `json:"status"`

	// 解密请求关联（同一时刻至多一个在途请求）
	ActiveRequestId *common.Hash `json:"active_request_id,omitempty"`

	// 资金信息（实际转入净额与平台手续费，单位为最小面额）
	TotalRaisedActual  int64 `json:"total_raised_actual"`
	PlatformFeeAccrued int64 `json:"platform_fee_accrued"`

	// 已经由超时退款路径发放出去的本金累计，提现时从资金池中扣除，
	// 保证两条路径共享同一个预算
	TimeoutRefundedActual int64 `json:"timeout_refunded_actual"`

	// 贡献记录，按贡献者地址索引，归活动记录独占所有
	Contributions map[common.Address]*Contribution `json:"-"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusActive           CampaignStatus = "active"            // 进行中
	CampaignStatusFundingSuccess   CampaignStatus = "funding_success"   // 达标成功
	CampaignStatusFundingFailed    CampaignStatus = "funding_failed"    // 未达标
	CampaignStatusDecryptionFailed CampaignStatus = "decryption_failed" // 解密失败
	CampaignStatusClosed           CampaignStatus = "closed"            // 创建者已提现
)

// Terminal 是否处于终止状态（不可再回到 active）
func (s CampaignStatus) Terminal() bool {
	switch s {
	case CampaignStatusFundingSuccess, CampaignStatusFundingFailed,
		CampaignStatusDecryptionFailed, CampaignStatusClosed:
		return true
	}
	return false
}
