package handler

import (
	"net/http"

	"github.com/blues/sfl/internal/ledger"
	"github.com/blues/sfl/internal/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// PlatformHandler 平台运营处理器
type PlatformHandler struct {
	ledger *ledger.Ledger
}

// NewPlatformHandler 创建平台处理器
func NewPlatformHandler(l *ledger.Ledger) *PlatformHandler {
	return &PlatformHandler{ledger: l}
}

// WithdrawFees 运营方提取手续费池
func (h *PlatformHandler) WithdrawFees(c *gin.Context) {
	var req FeeWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !common.IsHexAddress(req.Operator) {
		ErrorResponse(c, http.StatusBadRequest, "无效的运营方地址")
		return
	}

	operator := common.HexToAddress(req.Operator)
	amount, err := h.ledger.WithdrawFees(operator)
	if err != nil {
		if ledger.IsCode(err, ledger.CodeTransferFailed) {
			metrics.TransferFailures.Inc()
		}
		LedgerErrorResponse(c, err)
		return
	}
	metrics.PayoutsTotal.WithLabelValues("fee_withdraw").Inc()
	metrics.PayoutAmount.WithLabelValues("fee_withdraw").Add(float64(amount))

	SuccessResponse(c, http.StatusOK, "手续费提取成功", PayoutResponse{
		Recipient: operator.Hex(),
		Amount:    amount,
	})
}

// SetGateway 运营方设置或替换网关身份
func (h *PlatformHandler) SetGateway(c *gin.Context) {
	var req SetGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !common.IsHexAddress(req.Operator) || !common.IsHexAddress(req.Gateway) {
		ErrorResponse(c, http.StatusBadRequest, "无效的地址")
		return
	}

	if err := h.ledger.SetGateway(common.HexToAddress(req.Operator), common.HexToAddress(req.Gateway)); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "网关身份设置成功", gin.H{"gateway": req.Gateway})
}

// GetFeePool 查询手续费池
func (h *PlatformHandler) GetFeePool(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "获取手续费池成功", h.ledger.FeePool())
}

// GetStats 查询账本统计
func (h *PlatformHandler) GetStats(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "获取账本统计成功", h.ledger.Snapshot())
}
