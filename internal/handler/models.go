package handler

import (
	"time"

	"github.com/blues/sfl/internal/model"
)

// 请求模型

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Creator          string `json:"creator" binding:"required"`
	TargetCommitment string `json:"target_commitment" binding:"required"`
	DurationSeconds  int64  `json:"duration_seconds" binding:"required"`
}

// ContributeRequest 贡献请求
type ContributeRequest struct {
	Contributor string `json:"contributor" binding:"required"`
	Amount      int64  `json:"amount" binding:"required"`
	Commitment  uint64 `json:"commitment"`
}

// RevealRequest 发起解密请求
type RevealRequest struct {
	Requester string `json:"requester" binding:"required"`
}

// DecryptionSuccessRequest 网关解密成功回调
type DecryptionSuccessRequest struct {
	CampaignId      uint64 `json:"campaign_id" binding:"required"`
	RequestId       string `json:"request_id" binding:"required"`
	RevealedTarget  uint64 `json:"revealed_target" binding:"required"`
	RevealedCurrent uint64 `json:"revealed_current"`
}

// DecryptionFailureRequest 网关解密失败回调
type DecryptionFailureRequest struct {
	CampaignId uint64 `json:"campaign_id" binding:"required"`
	RequestId  string `json:"request_id" binding:"required"`
	Reason     string `json:"reason"`
}

// ClaimRequest 退款领取请求
type ClaimRequest struct {
	Contributor string `json:"contributor" binding:"required"`
}

// WithdrawRequest 创建者提现请求
type WithdrawRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// FeeWithdrawRequest 手续费提现请求
type FeeWithdrawRequest struct {
	Operator string `json:"operator" binding:"required"`
}

// SetGatewayRequest 设置网关身份请求
type SetGatewayRequest struct {
	Operator string `json:"operator" binding:"required"`
	Gateway  string `json:"gateway" binding:"required"`
}

// 响应模型

// CampaignResponse 活动响应模型
type CampaignResponse struct {
	Id                    uint64    `json:"id"`
	Creator               string    `json:"creator"`
	TargetCommitment      string    `json:"targetCommitment"`
	CurrentCommitment     uint64    `json:"currentCommitment"`
	FundingDeadline       time.Time `json:"fundingDeadline"`
	DecryptionDeadline    time.Time `json:"decryptionDeadline"`
	Status                string    `json:"status"`
	ActiveRequestId       string    `json:"activeRequestId,omitempty"`
	TotalRaisedActual     int64     `json:"totalRaisedActual"`
	PlatformFeeAccrued    int64     `json:"platformFeeAccrued"`
	TimeoutRefundedActual int64     `json:"timeoutRefundedActual"`
	CreatedAt             time.Time `json:"createdAt"`
}

// ToCampaignResponse 转换活动快照
func ToCampaignResponse(c model.Campaign) CampaignResponse {
	resp := CampaignResponse{
		Id:                    c.Id,
		Creator:               c.Creator.Hex(),
		TargetCommitment:      c.TargetCommitment.Hex(),
		CurrentCommitment:     c.CurrentCommitment,
		FundingDeadline:       c.FundingDeadline,
		DecryptionDeadline:    c.DecryptionDeadline,
		Status:                string(c.Status),
		TotalRaisedActual:     c.TotalRaisedActual,
		PlatformFeeAccrued:    c.PlatformFeeAccrued,
		TimeoutRefundedActual: c.TimeoutRefundedActual,
		CreatedAt:             c.CreatedAt,
	}
	if c.ActiveRequestId != nil {
		resp.ActiveRequestId = c.ActiveRequestId.Hex()
	}
	return resp
}

// ToCampaignResponseList 转换活动快照列表
func ToCampaignResponseList(cs []model.Campaign) []CampaignResponse {
	out := make([]CampaignResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, ToCampaignResponse(c))
	}
	return out
}

// ContributionResponse 贡献记录响应模型
type ContributionResponse struct {
	CampaignId         uint64    `json:"campaignId"`
	Contributor        string    `json:"contributor"`
	ActualAmount       int64     `json:"actualAmount"`
	ObfuscatedAmount   uint64    `json:"obfuscatedAmount"`
	FirstContributedAt time.Time `json:"firstContributedAt"`
	RefundClaimed      bool      `json:"refundClaimed"`
}

// ToContributionResponse 转换贡献记录快照
func ToContributionResponse(ctb model.Contribution) ContributionResponse {
	return ContributionResponse{
		CampaignId:         ctb.CampaignId,
		Contributor:        ctb.Contributor.Hex(),
		ActualAmount:       ctb.ActualAmount,
		ObfuscatedAmount:   ctb.ObfuscatedAmount,
		FirstContributedAt: ctb.FirstContributedAt,
		RefundClaimed:      ctb.RefundClaimed,
	}
}

// ToContributionResponseList 转换贡献记录列表
func ToContributionResponseList(ctbs []model.Contribution) []ContributionResponse {
	out := make([]ContributionResponse, 0, len(ctbs))
	for _, ctb := range ctbs {
		out = append(out, ToContributionResponse(ctb))
	}
	return out
}

// PayoutResponse 支付结果响应
type PayoutResponse struct {
	CampaignId uint64 `json:"campaignId,omitempty"`
	Recipient  string `json:"recipient"`
	Amount     int64  `json:"amount"`
}

// RevealResponse 解密请求响应
type RevealResponse struct {
	RequestId string `json:"requestId"`
}

// EventResponse 审计事件响应模型
type EventResponse struct {
	Id         int64     `json:"id"`
	EventName  string    `json:"eventName"`
	CampaignId uint64    `json:"campaignId"`
	EmittedAt  time.Time `json:"emittedAt"`
	Payload    string    `json:"payload"`
}

// ToEventResponseList 转换事件记录列表
func ToEventResponseList(evs []model.LedgerEventModel) []EventResponse {
	out := make([]EventResponse, 0, len(evs))
	for _, ev := range evs {
		out = append(out, EventResponse{
			Id:         ev.Id,
			EventName:  ev.EventName,
			CampaignId: ev.CampaignId,
			EmittedAt:  ev.EmittedAt,
			Payload:    ev.Payload,
		})
	}
	return out
}
