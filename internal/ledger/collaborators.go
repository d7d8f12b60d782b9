package ledger

import (
	"time"

	"github.com/blues/sfl/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

// Clock 外部时钟协作方，账本自身不持有时间状态
type Clock interface {
	Now() time.Time
}

// Transferer 资金划转协作方
//
// 划转失败对账本是致命错误：调用方的标志位已经置位且不会回滚，
// 返回的错误会被包装为 TRANSFER_FAILED 上报，等待人工介入，绝不自动重试。
type Transferer interface {
	Transfer(to common.Address, amount int64) error
}

// Notifier 网关通知协作方，单向 fire-and-forget 信号
type Notifier interface {
	NotifyDecryptionRequested(campaignId uint64, requestId common.Hash, requestedAt time.Time)
}

// Emitter 审计事件出口，核心只写不读
type Emitter interface {
	Emit(ev model.LedgerEvent)
}

// systemClock 默认时钟实现
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// nopNotifier 未配置网关通知端点时的占位实现
type nopNotifier struct{}

func (nopNotifier) NotifyDecryptionRequested(uint64, common.Hash, time.Time) {}

// nopEmitter 未接事件下游时的占位实现
type nopEmitter struct{}

func (nopEmitter) Emit(model.LedgerEvent) {}
