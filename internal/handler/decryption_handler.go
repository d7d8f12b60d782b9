package handler

import (
	"net/http"

	"github.com/blues/sfl/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// DecryptionHandler 解密流程处理器
//
// 覆盖出站的解密请求发起与入站的网关回调两端。
type DecryptionHandler struct {
	ledger *ledger.Ledger
}

// NewDecryptionHandler 创建解密处理器
func NewDecryptionHandler(l *ledger.Ledger) *DecryptionHandler {
	return &DecryptionHandler{ledger: l}
}

// GatewayAuthMiddleware 网关回调鉴权
//
// 回调必须携带 X-Gateway-Address 头，其值作为调用者身份交给账本
// 与配置的网关身份比对；头缺失或格式非法直接拒绝。
func GatewayAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := c.GetHeader("X-Gateway-Address")
		if !common.IsHexAddress(addr) {
			ErrorResponse(c, http.StatusUnauthorized, "缺少或非法的网关身份头")
			c.Abort()
			return
		}
		c.Set("gateway_caller", common.HexToAddress(addr))
		c.Next()
	}
}

// gatewayCaller 取出中间件写入的网关调用者身份
func gatewayCaller(c *gin.Context) common.Address {
	v, _ := c.Get("gateway_caller")
	addr, _ := v.(common.Address)
	return addr
}

// RequestReveal 创建者发起解密请求
func (h *DecryptionHandler) RequestReveal(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	var req RevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !common.IsHexAddress(req.Requester) {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求者地址")
		return
	}

	requestId, err := h.ledger.BeginDecryption(id, common.HexToAddress(req.Requester))
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusAccepted, "解密请求已发起", RevealResponse{RequestId: requestId.Hex()})
}

// DecryptionSuccess 网关解密成功回调
func (h *DecryptionHandler) DecryptionSuccess(c *gin.Context) {
	var req DecryptionSuccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.ledger.FinalizeSuccess(
		gatewayCaller(c),
		req.CampaignId,
		common.HexToHash(req.RequestId),
		req.RevealedTarget,
		req.RevealedCurrent,
	)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	campaign, err := h.ledger.GetCampaign(req.CampaignId)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "解密结果已应用", ToCampaignResponse(campaign))
}

// DecryptionFailure 网关解密失败回调
func (h *DecryptionHandler) DecryptionFailure(c *gin.Context) {
	var req DecryptionFailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.ledger.FinalizeFailure(
		gatewayCaller(c),
		req.CampaignId,
		common.HexToHash(req.RequestId),
		req.Reason,
	)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "解密失败已记录", nil)
}

// GetRequest 查询解密请求
func (h *DecryptionHandler) GetRequest(c *gin.Context) {
	idStr := c.Param("requestId")
	req, err := h.ledger.GetRequest(common.HexToHash(idStr))
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取解密请求成功", req)
}
