package treasury

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// 划转失败类别
var (
	// ErrInsufficientFunds 资金方余额不足
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUnreachable 资金方不可达
	ErrUnreachable = errors.New("treasury unreachable")
)

// Client 资金划转客户端
//
// 账本的价值划转协作方。划转失败由账本按 TRANSFER_FAILED 上报，
// 这里只负责把远端失败归类，绝不自行重试。
type Client struct {
	baseUrl    string
	httpClient *http.Client
}

// NewClient 创建划转客户端
func NewClient(baseUrl string) *Client {
	return &Client{
		baseUrl: baseUrl,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// transferRequest 划转请求体
type transferRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// Transfer 实现 ledger.Transferer
func (c *Client) Transfer(to common.Address, amount int64) error {
	if c.baseUrl == "" {
		return fmt.Errorf("%w: 划转服务端点未配置", ErrUnreachable)
	}

	body, err := json.Marshal(transferRequest{To: to.Hex(), Amount: amount})
	if err != nil {
		return fmt.Errorf("划转请求序列化失败: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseUrl+"/transfer", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusPaymentRequired:
		return fmt.Errorf("%w: to=%s amount=%d", ErrInsufficientFunds, to.Hex(), amount)
	default:
		return fmt.Errorf("%w: status=%d", ErrUnreachable, resp.StatusCode)
	}
}
