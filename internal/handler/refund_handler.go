package handler

import (
	"net/http"

	"github.com/blues/sfl/internal/ledger"
	"github.com/blues/sfl/internal/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// RefundHandler 退款与提现处理器
type RefundHandler struct {
	ledger *ledger.Ledger
}

// NewRefundHandler 创建退款处理器
func NewRefundHandler(l *ledger.Ledger) *RefundHandler {
	return &RefundHandler{ledger: l}
}

// Refund 标准退款
func (h *RefundHandler) Refund(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !common.IsHexAddress(req.Contributor) {
		ErrorResponse(c, http.StatusBadRequest, "无效的贡献者地址")
		return
	}

	contributor := common.HexToAddress(req.Contributor)
	amount, err := h.ledger.Refund(id, contributor)
	if err != nil {
		if ledger.IsCode(err, ledger.CodeTransferFailed) {
			metrics.TransferFailures.Inc()
		}
		LedgerErrorResponse(c, err)
		return
	}
	metrics.PayoutsTotal.WithLabelValues("refund").Inc()
	metrics.PayoutAmount.WithLabelValues("refund").Add(float64(amount))

	SuccessResponse(c, http.StatusOK, "退款成功", PayoutResponse{
		CampaignId: id,
		Recipient:  contributor.Hex(),
		Amount:     amount,
	})
}

// TimeoutRefund 超时退款
func (h *RefundHandler) TimeoutRefund(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !common.IsHexAddress(req.Contributor) {
		ErrorResponse(c, http.StatusBadRequest, "无效的贡献者地址")
		return
	}

	contributor := common.HexToAddress(req.Contributor)
	amount, err := h.ledger.TimeoutRefund(id, contributor)
	if err != nil {
		if ledger.IsCode(err, ledger.CodeTransferFailed) {
			metrics.TransferFailures.Inc()
		}
		LedgerErrorResponse(c, err)
		return
	}
	metrics.PayoutsTotal.WithLabelValues("timeout_refund").Inc()
	metrics.PayoutAmount.WithLabelValues("timeout_refund").Add(float64(amount))

	SuccessResponse(c, http.StatusOK, "超时退款成功", PayoutResponse{
		CampaignId: id,
		Recipient:  contributor.Hex(),
		Amount:     amount,
	})
}

// Withdraw 创建者提现
func (h *RefundHandler) Withdraw(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !common.IsHexAddress(req.Caller) {
		ErrorResponse(c, http.StatusBadRequest, "无效的调用者地址")
		return
	}

	caller := common.HexToAddress(req.Caller)
	amount, err := h.ledger.Withdraw(id, caller)
	if err != nil {
		if ledger.IsCode(err, ledger.CodeTransferFailed) {
			metrics.TransferFailures.Inc()
		}
		LedgerErrorResponse(c, err)
		return
	}
	metrics.PayoutsTotal.WithLabelValues("withdraw").Inc()
	metrics.PayoutAmount.WithLabelValues("withdraw").Add(float64(amount))

	SuccessResponse(c, http.StatusOK, "提现成功", PayoutResponse{
		CampaignId: id,
		Recipient:  caller.Hex(),
		Amount:     amount,
	})
}
