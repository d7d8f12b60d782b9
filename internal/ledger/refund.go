package ledger

import (
	"github.com/blues/sfl/internal/logger"
	"github.com/blues/sfl/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

// 三条互斥的支付路径：标准退款、超时退款、创建者提现。
// 统一顺序：先置位标志/状态，再划转资金；划转失败不回滚标志，
// 返回 TRANSFER_FAILED 并记错误日志，等待人工介入。
// 至多一次支付优先于可用性。

// feeRefundFor 计算超时退款的手续费返还 actual * 2 / 98
//
// 2/98 是 2%/98% 的逆变换，按比例返还预扣的手续费。与 feeFor 相同的
// 商余分解，对任意 int64 本金都不会中间溢出；结果恒小于本金，必然可表示。
func feeRefundFor(actual int64) int64 {
	q := actual / 98
	r := actual % 98
	return q*2 + r*2/98
}

// Refund 标准退款
//
// 前置条件：贡献记录存在且净额大于0、未领取过退款、活动处于
// funding_failed 或 decryption_failed。退整笔净额（手续费已预扣，不退）。
func (l *Ledger) Refund(campaignId uint64, contributor common.Address) (int64, error) {
	e, err := l.entry(campaignId)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.c

	ctb := c.Contributions[contributor]
	if ctb == nil || ctb.ActualAmount <= 0 {
		return 0, newError(CodeNotFound, "贡献记录不存在: 活动=%d 贡献者=%s", campaignId, contributor.Hex())
	}
	if ctb.RefundClaimed {
		return 0, newError(CodeAlreadyClaimed, "退款已领取: 活动=%d 贡献者=%s", campaignId, contributor.Hex())
	}
	if c.Status != model.CampaignStatusFundingFailed && c.Status != model.CampaignStatusDecryptionFailed {
		return 0, newError(CodePreconditionFailed, "活动状态不满足标准退款条件: 状态=%s", c.Status)
	}

	amount := ctb.ActualAmount

	// 先置位，再划转
	ctb.RefundClaimed = true
	if err := l.treasury.Transfer(contributor, amount); err != nil {
		logger.Error("退款划转失败，标志已置位，需要人工介入: 活动=%d 贡献者=%s 金额=%d err=%v",
			campaignId, contributor.Hex(), amount, err)
		return 0, wrapError(CodeTransferFailed, err, "退款划转失败: 贡献者=%s 金额=%d", contributor.Hex(), amount)
	}

	logger.Info("标准退款已发放: 活动=%d 贡献者=%s 金额=%d", campaignId, contributor.Hex(), amount)
	l.emit(model.EventRefundIssued, campaignId, map[string]any{
		"contributor": contributor.Hex(),
		"amount":      amount,
	})

	return amount, nil
}

// TimeoutRefund 超时退款（应急兜底路径）
//
// 解密截止期一过即可用，不看活动状态——唯一例外是 closed：创建者
// 已经提走资金池，活动对一切后续支付路径失效。退 净额 + 净额*2/98
// （按比例返还预扣的2%手续费），并发出独立的超时触发事件。
// 活动状态保持不变，在途请求也不被主动过期。
func (l *Ledger) TimeoutRefund(campaignId uint64, contributor common.Address) (int64, error) {
	e, err := l.entry(campaignId)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.c

	ctb := c.Contributions[contributor]
	if ctb == nil || ctb.ActualAmount <= 0 {
		return 0, newError(CodeNotFound, "贡献记录不存在: 活动=%d 贡献者=%s", campaignId, contributor.Hex())
	}
	if ctb.RefundClaimed {
		return 0, newError(CodeAlreadyClaimed, "退款已领取: 活动=%d 贡献者=%s", campaignId, contributor.Hex())
	}
	if c.Status == model.CampaignStatusClosed {
		return 0, newError(CodePreconditionFailed, "创建者已提现，活动不再支持任何退款")
	}
	now := l.clock.Now()
	if now.Before(c.DecryptionDeadline) {
		return 0, newError(CodePreconditionFailed, "解密截止期未到，无法超时退款: 截止=%s", c.DecryptionDeadline)
	}

	feeRefund := feeRefundFor(ctb.ActualAmount)
	amount, ok := checkedAddInt64(ctb.ActualAmount, feeRefund)
	if !ok {
		return 0, newError(CodeOverflow, "超时退款金额溢出: 贡献者=%s", contributor.Hex())
	}

	ctb.RefundClaimed = true
	// 本金计入超时退款累计，提现时从资金池中扣除
	c.TimeoutRefundedActual += ctb.ActualAmount
	if err := l.treasury.Transfer(contributor, amount); err != nil {
		logger.Error("超时退款划转失败，标志已置位，需要人工介入: 活动=%d 贡献者=%s 金额=%d err=%v",
			campaignId, contributor.Hex(), amount, err)
		return 0, wrapError(CodeTransferFailed, err, "超时退款划转失败: 贡献者=%s 金额=%d", contributor.Hex(), amount)
	}

	logger.Info("超时退款已发放: 活动=%d 贡献者=%s 净额=%d 手续费返还=%d", campaignId, contributor.Hex(), ctb.ActualAmount, feeRefund)
	l.emit(model.EventTimeoutTriggered, campaignId, map[string]any{
		"contributor": contributor.Hex(),
		"amount":      amount,
		"fee_refund":  feeRefund,
	})

	return amount, nil
}

// Withdraw 创建者提现
//
// 前置条件：调用者为创建者、活动 funding_success。可提金额为实收净额
// 扣除已由超时退款路径发放的本金（两条路径共享同一个预算，任何
// 时序下支付总额都不超过实收净额加手续费返还）。先把状态迁到 closed
// （兼作防重入与防重复提现标志，并令活动对一切后续支付路径失效），
// 再划转。
func (l *Ledger) Withdraw(campaignId uint64, caller common.Address) (int64, error) {
	e, err := l.entry(campaignId)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.c

	if caller != c.Creator {
		return 0, newError(CodeUnauthorized, "只有活动创建者可以提现")
	}
	if c.Status != model.CampaignStatusFundingSuccess {
		return 0, newError(CodePreconditionFailed, "活动状态不满足提现条件: 状态=%s", c.Status)
	}

	amount := c.TotalRaisedActual - c.TimeoutRefundedActual
	if amount <= 0 {
		return 0, newError(CodePreconditionFailed, "资金池已全额经超时退款发放，无可提现余额")
	}

	c.Status = model.CampaignStatusClosed
	if err := l.treasury.Transfer(caller, amount); err != nil {
		logger.Error("提现划转失败，活动已关闭，需要人工介入: 活动=%d 创建者=%s 金额=%d err=%v",
			campaignId, caller.Hex(), amount, err)
		return 0, wrapError(CodeTransferFailed, err, "提现划转失败: 创建者=%s 金额=%d", caller.Hex(), amount)
	}

	logger.Info("创建者已提现: 活动=%d 创建者=%s 金额=%d", campaignId, caller.Hex(), amount)
	l.emit(model.EventWithdrawn, campaignId, map[string]any{
		"creator": caller.Hex(),
		"amount":  amount,
	})

	return amount, nil
}
