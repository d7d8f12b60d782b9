package ledger

import (
	"github.com/blues/sfl/internal/logger"
	"github.com/blues/sfl/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

// WithdrawFees 运营方提取平台手续费池
//
// 一次性清空全池。池先清零再划转，与其他支付路径同一顺序；
// 划转失败不恢复余额，返回 TRANSFER_FAILED 等待人工介入。
func (l *Ledger) WithdrawFees(caller common.Address) (int64, error) {
	if caller != l.operator {
		return 0, newError(CodeUnauthorized, "只有运营方可以提取手续费")
	}

	l.feeMu.Lock()
	amount := l.feePool.Balance
	if amount <= 0 {
		l.feeMu.Unlock()
		return 0, newError(CodeNothingToWithdraw, "手续费池为空")
	}
	l.feePool.Balance = 0
	l.feePool.WithdrawnTotal += amount
	l.feeMu.Unlock()

	if err := l.treasury.Transfer(caller, amount); err != nil {
		logger.Error("手续费划转失败，池已清零，需要人工介入: 运营方=%s 金额=%d err=%v",
			caller.Hex(), amount, err)
		return 0, wrapError(CodeTransferFailed, err, "手续费划转失败: 金额=%d", amount)
	}

	logger.Info("平台手续费已提取: 运营方=%s 金额=%d", caller.Hex(), amount)
	l.emit(model.EventFeeWithdrawn, 0, map[string]any{
		"operator": caller.Hex(),
		"amount":   amount,
	})

	return amount, nil
}
