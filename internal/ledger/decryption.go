package ledger

import (
	"encoding/binary"
	"time"

	"github.com/blues/sfl/internal/logger"
	"github.com/blues/sfl/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// requestId 派生解密请求ID：keccak(活动ID, 时间戳, 请求者)
func requestId(campaignId uint64, requestedAt time.Time, requester common.Address) common.Hash {
	buf := make([]byte, 0, 8+8+common.AddressLength)
	buf = binary.BigEndian.AppendUint64(buf, campaignId)
	buf = binary.BigEndian.AppendUint64(buf, uint64(requestedAt.UnixNano()))
	buf = append(buf, requester.Bytes()...)
	return crypto.Keccak256Hash(buf)
}

// BeginDecryption 由创建者在筹款截止后发起解密请求
//
// 前置条件：调用者为创建者、活动 active、已过筹款截止期、网关已配置、
// 且当前没有在途请求。请求ID做显式碰撞检查落表，碰撞视为致命错误，
// 调用方不得在同一时刻用相同输入重试。状态机不变（回调前保持 active）。
// 网关通知在原子变更提交后发出，fire-and-forget。
func (l *Ledger) BeginDecryption(campaignId uint64, requester common.Address) (common.Hash, error) {
	gateway := l.Gateway()
	if gateway == (common.Address{}) {
		return common.Hash{}, newError(CodePreconditionFailed, "网关身份尚未配置，无法发起解密请求")
	}

	e, err := l.entry(campaignId)
	if err != nil {
		return common.Hash{}, err
	}

	e.mu.Lock()
	c := e.c

	if requester != c.Creator {
		e.mu.Unlock()
		return common.Hash{}, newError(CodeUnauthorized, "只有活动创建者可以发起解密请求")
	}
	if c.Status != model.CampaignStatusActive {
		e.mu.Unlock()
		return common.Hash{}, newError(CodePreconditionFailed, "活动已结束，无法发起解密请求: 状态=%s", c.Status)
	}
	now := l.clock.Now()
	if now.Before(c.FundingDeadline) {
		e.mu.Unlock()
		return common.Hash{}, newError(CodePreconditionFailed, "筹款尚未截止，无法发起解密请求")
	}
	if c.ActiveRequestId != nil {
		e.mu.Unlock()
		return common.Hash{}, newError(CodePreconditionFailed, "已有在途解密请求: %s", c.ActiveRequestId.Hex())
	}

	id := requestId(campaignId, now, requester)

	l.requestsMu.Lock()
	if _, exists := l.requests[id]; exists {
		l.requestsMu.Unlock()
		e.mu.Unlock()
		return common.Hash{}, newError(CodeIdCollision, "解密请求ID碰撞: %s", id.Hex())
	}
	l.requests[id] = &model.DecryptionRequest{
		Id:          id,
		CampaignId:  campaignId,
		Requester:   requester,
		RequestedAt: now,
		Status:      model.RequestStatusPending,
	}
	l.requestsMu.Unlock()

	rid := id
	c.ActiveRequestId = &rid
	e.mu.Unlock()

	logger.Info("解密请求已发起: 活动=%d 请求=%s", campaignId, id.Hex())
	l.emit(model.EventDecryptionRequested, campaignId, map[string]any{
		"request_id": id.Hex(),
		"requester":  requester.Hex(),
	})

	// 变更已提交，通知放在锁外，失败只记日志
	l.notifier.NotifyDecryptionRequested(campaignId, id, now)

	return id, nil
}

// FinalizeSuccess 网关回调：解密成功
//
// 仅网关身份可调用。请求终态只写一次，重放返回 ALREADY_RESOLVED 且
// 不会二次应用状态迁移；请求ID与活动当前在途请求不符（陈旧/错配的
// 回调）一律拒绝。revealed_current >= revealed_target 则达标成功，
// 否则未达标，并清除在途请求。
func (l *Ledger) FinalizeSuccess(caller common.Address, campaignId uint64, reqId common.Hash, revealedTarget, revealedCurrent uint64) error {
	if caller != l.Gateway() || caller == (common.Address{}) {
		return newError(CodeUnauthorized, "只有网关身份可以提交解密结果")
	}
	if revealedTarget == 0 {
		return newError(CodeInvalidArgument, "解密出的目标金额必须大于0")
	}

	e, err := l.entry(campaignId)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.c

	req, err := l.pendingRequest(reqId, campaignId)
	if err != nil {
		return err
	}
	if c.ActiveRequestId == nil || *c.ActiveRequestId != reqId {
		return newError(CodePreconditionFailed, "请求ID与活动在途请求不符: %s", reqId.Hex())
	}
	if c.Status != model.CampaignStatusActive {
		return newError(CodePreconditionFailed, "活动已结束，拒绝解密回调: 状态=%s", c.Status)
	}

	l.requestsMu.Lock()
	req.Status = model.RequestStatusCompleted
	req.RevealedTarget = revealedTarget
	req.RevealedCurrent = revealedCurrent
	l.requestsMu.Unlock()

	if revealedCurrent >= revealedTarget {
		c.Status = model.CampaignStatusFundingSuccess
	} else {
		c.Status = model.CampaignStatusFundingFailed
	}
	c.ActiveRequestId = nil

	logger.Info("解密完成: 活动=%d 请求=%s target=%d current=%d 状态=%s",
		campaignId, reqId.Hex(), revealedTarget, revealedCurrent, c.Status)
	l.emit(model.EventDecryptionCompleted, campaignId, map[string]any{
		"request_id":       reqId.Hex(),
		"revealed_target":  revealedTarget,
		"revealed_current": revealedCurrent,
		"status":           string(c.Status),
	})

	return nil
}

// FinalizeFailure 网关回调：解密失败
//
// 仅网关身份可调用，请求ID必须与在途请求一致。活动转入 decryption_failed
// 终态，贡献者走标准退款路径。
func (l *Ledger) FinalizeFailure(caller common.Address, campaignId uint64, reqId common.Hash, reason string) error {
	if caller != l.Gateway() || caller == (common.Address{}) {
		return newError(CodeUnauthorized, "只有网关身份可以提交解密结果")
	}

	e, err := l.entry(campaignId)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.c

	req, err := l.pendingRequest(reqId, campaignId)
	if err != nil {
		return err
	}
	if c.ActiveRequestId == nil || *c.ActiveRequestId != reqId {
		return newError(CodePreconditionFailed, "请求ID与活动在途请求不符: %s", reqId.Hex())
	}
	if c.Status != model.CampaignStatusActive {
		return newError(CodePreconditionFailed, "活动已结束，拒绝解密回调: 状态=%s", c.Status)
	}

	l.requestsMu.Lock()
	req.Status = model.RequestStatusFailed
	req.FailReason = reason
	l.requestsMu.Unlock()

	c.Status = model.CampaignStatusDecryptionFailed
	c.ActiveRequestId = nil

	logger.Warn("解密失败: 活动=%d 请求=%s 原因=%s", campaignId, reqId.Hex(), reason)
	l.emit(model.EventDecryptionFailed, campaignId, map[string]any{
		"request_id": reqId.Hex(),
		"reason":     reason,
	})

	return nil
}

// pendingRequest 校验请求存在、归属正确且尚未写入终态
func (l *Ledger) pendingRequest(reqId common.Hash, campaignId uint64) (*model.DecryptionRequest, error) {
	l.requestsMu.RLock()
	req, ok := l.requests[reqId]
	l.requestsMu.RUnlock()
	if !ok {
		return nil, newError(CodeNotFound, "解密请求不存在: %s", reqId.Hex())
	}
	if req.CampaignId != campaignId {
		return nil, newError(CodePreconditionFailed, "解密请求不属于该活动: 请求=%s 活动=%d", reqId.Hex(), campaignId)
	}
	if req.Status.Terminal() {
		return nil, newError(CodeAlreadyResolved, "解密请求已写入终态: %s 状态=%s", reqId.Hex(), req.Status)
	}
	return req, nil
}

// GetRequest 获取解密请求快照
func (l *Ledger) GetRequest(reqId common.Hash) (model.DecryptionRequest, error) {
	l.requestsMu.RLock()
	defer l.requestsMu.RUnlock()
	req, ok := l.requests[reqId]
	if !ok {
		return model.DecryptionRequest{}, newError(CodeNotFound, "解密请求不存在: %s", reqId.Hex())
	}
	return *req, nil
}
