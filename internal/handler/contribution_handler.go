package handler

import (
	"net/http"

	"github.com/blues/sfl/internal/ledger"
	"github.com/blues/sfl/internal/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// ContributionHandler 贡献处理器
type ContributionHandler struct {
	ledger *ledger.Ledger
}

// NewContributionHandler 创建贡献处理器
func NewContributionHandler(l *ledger.Ledger) *ContributionHandler {
	return &ContributionHandler{ledger: l}
}

// Contribute 记录贡献
func (h *ContributionHandler) Contribute(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !common.IsHexAddress(req.Contributor) {
		ErrorResponse(c, http.StatusBadRequest, "无效的贡献者地址")
		return
	}

	contributor := common.HexToAddress(req.Contributor)
	if err := h.ledger.Contribute(id, contributor, req.Amount, req.Commitment); err != nil {
		metrics.ContributionsTotal.WithLabelValues("rejected").Inc()
		LedgerErrorResponse(c, err)
		return
	}
	metrics.ContributionsTotal.WithLabelValues("accepted").Inc()

	contribution, err := h.ledger.GetContribution(id, contributor)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "贡献记录成功", ToContributionResponse(contribution))
}

// GetContribution 获取单个贡献记录
func (h *ContributionHandler) GetContribution(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	addr := c.Param("contributor")
	if !common.IsHexAddress(addr) {
		ErrorResponse(c, http.StatusBadRequest, "无效的贡献者地址")
		return
	}

	contribution, err := h.ledger.GetContribution(id, common.HexToAddress(addr))
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取贡献记录成功", ToContributionResponse(contribution))
}
