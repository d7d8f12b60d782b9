package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DecryptionRequest 解密请求记录
//
// 每次网关往返一条，终态只写一次。CampaignId 是弱引用，仅供回查。
// 网关永不回调的请求停留在 pending，由超时退款路径兜底，追踪器本身不做过期。
type DecryptionRequest struct {
	Id         common.Hash    `json:"id"`
	CampaignId uint64         `json:"campaign_id"`
	Requester  common.Address `json:"requester"`

	RequestedAt time.Time     `json:"requested_at"`
	Status      RequestStatus `json:"status"`

	// 仅在 completed 时填充
	RevealedTarget  uint64 `json:"revealed_target,omitempty"`
	RevealedCurrent uint64 `json:"revealed_current,omitempty"`

	// 仅在 failed 时填充
	FailReason string `json:"fail_reason,omitempty"`
}

// RequestStatus 解密请求状态
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"   // 等待网关回调
	RequestStatusCompleted RequestStatus = "completed" // 网关解密成功
	RequestStatusFailed    RequestStatus = "failed"    // 网关解密失败
)

// Terminal 是否已写入终态
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusFailed
}
