package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/blues/sfl/internal/logger"
	"github.com/ethereum/go-ethereum/common"
)

// Client 网关通知客户端
//
// 解密请求的出站信号，单向 fire-and-forget：通知失败只记日志，
// 从不向账本传播，也不重试——网关永不响应时由超时退款路径兜底。
type Client struct {
	notifyUrl  string
	httpClient *http.Client
}

// NewClient 创建网关客户端
func NewClient(notifyUrl string) *Client {
	return &Client{
		notifyUrl: notifyUrl,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// notifyPayload 解密请求通知消息
type notifyPayload struct {
	CampaignId  uint64 `json:"campaign_id"`
	RequestId   string `json:"request_id"`
	RequestedAt int64  `json:"requested_at"`
}

// NotifyDecryptionRequested 实现 ledger.Notifier
func (c *Client) NotifyDecryptionRequested(campaignId uint64, requestId common.Hash, requestedAt time.Time) {
	if c.notifyUrl == "" {
		logger.Warn("网关通知端点未配置，跳过通知: 活动=%d 请求=%s", campaignId, requestId.Hex())
		return
	}

	body, err := json.Marshal(notifyPayload{
		CampaignId:  campaignId,
		RequestId:   requestId.Hex(),
		RequestedAt: requestedAt.Unix(),
	})
	if err != nil {
		logger.Error("网关通知序列化失败: %v", err)
		return
	}

	resp, err := c.httpClient.Post(c.notifyUrl, "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Error("网关通知发送失败: 活动=%d 请求=%s err=%v", campaignId, requestId.Hex(), err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Error("网关通知被拒绝: 活动=%d 请求=%s status=%d", campaignId, requestId.Hex(), resp.StatusCode)
		return
	}

	logger.Info("网关通知已发送: 活动=%d 请求=%s", campaignId, requestId.Hex())
}
