package model

import (
	"time"
)

// EventName 审计事件类型
type EventName string

const (
	EventCampaignCreated     EventName = "CampaignCreated"
	EventContributionMade    EventName = "ContributionMade"
	EventDecryptionRequested EventName = "DecryptionRequested"
	EventDecryptionCompleted EventName = "DecryptionCompleted"
	EventDecryptionFailed    EventName = "DecryptionFailed"
	EventRefundIssued        EventName = "RefundIssued"
	EventTimeoutTriggered    EventName = "TimeoutTriggered"
	EventWithdrawn           EventName = "Withdrawn"
	EventFeeWithdrawn        EventName = "FeeWithdrawn"
)

// LedgerEvent 账本审计事件
//
// 每个状态变更操作对外发出一条，供外部索引消费；核心从不回读。
type LedgerEvent struct {
	Name       EventName      `json:"name"`
	CampaignId uint64         `json:"campaign_id"`
	EmittedAt  time.Time      `json:"emitted_at"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// LedgerEventModel 审计事件落库记录
type LedgerEventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	EventName  string    `json:"event_name" gorm:"not null;index"`
	CampaignId uint64    `json:"campaign_id" gorm:"not null;index"`
	EmittedAt  time.Time `json:"emitted_at" gorm:"not null"`
	Payload    string    `json:"payload" gorm:"type:text"`
}

// TableName 自定义表名
func (LedgerEventModel) TableName() string {
	return "ledger_event"
}
