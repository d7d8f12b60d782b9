package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/blues/sfl/internal/ledger"
	"github.com/blues/sfl/internal/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// CampaignHandler 活动处理器
type CampaignHandler struct {
	ledger *ledger.Ledger
}

// NewCampaignHandler 创建活动处理器
func NewCampaignHandler(l *ledger.Ledger) *CampaignHandler {
	return &CampaignHandler{ledger: l}
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if !common.IsHexAddress(req.Creator) {
		ErrorResponse(c, http.StatusBadRequest, "无效的创建者地址")
		return
	}

	id, err := h.ledger.CreateCampaign(
		common.HexToAddress(req.Creator),
		common.HexToHash(req.TargetCommitment),
		time.Duration(req.DurationSeconds)*time.Second,
	)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}
	metrics.CampaignsCreated.Inc()

	campaign, err := h.ledger.GetCampaign(id)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "活动创建成功", ToCampaignResponse(campaign))
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	campaigns := h.ledger.ListCampaigns()
	SuccessResponse(c, http.StatusOK, "获取活动列表成功", ToCampaignResponseList(campaigns))
}

// GetCampaign 获取单个活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	campaign, err := h.ledger.GetCampaign(id)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动详情成功", ToCampaignResponse(campaign))
}

// GetCampaignContributions 获取活动贡献记录
func (h *CampaignHandler) GetCampaignContributions(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	contributions, err := h.ledger.ListContributions(id)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取贡献记录成功", ToContributionResponseList(contributions))
}

// parseCampaignId 解析路径中的活动ID，失败时已写响应
func parseCampaignId(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return 0, err
	}
	return id, nil
}
