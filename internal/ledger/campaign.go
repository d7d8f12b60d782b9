package ledger

import (
	"time"

	"github.com/blues/sfl/internal/logger"
	"github.com/blues/sfl/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

// CreateCampaign 创建众筹活动
//
// duration 必须落在 (0, MaxDuration]。分配单调递增且永不复用的活动ID，
// 计算两个截止期（解密截止期恒晚于筹款截止期），派生混淆乘数，
// 初始状态 active。任何前置条件不满足都不产生部分写入。
func (l *Ledger) CreateCampaign(creator common.Address, targetCommitment common.Hash, duration time.Duration) (uint64, error) {
	if creator == (common.Address{}) {
		return 0, newError(CodeInvalidArgument, "创建者地址不能为空")
	}
	if targetCommitment == (common.Hash{}) {
		return 0, newError(CodeInvalidArgument, "目标承诺不能为空")
	}
	if duration <= 0 || duration > MaxDuration {
		return 0, newError(CodeInvalidArgument, "筹款时长必须在 (0, %v] 之间: %v", MaxDuration, duration)
	}

	now := l.clock.Now()

	l.mu.Lock()
	id := l.nextId
	l.nextId++

	c := &model.Campaign{
		Id:                 id,
		CreatedAt:          now,
		Creator:            creator,
		TargetCommitment:   targetCommitment,
		Multiplier:         deriveMultiplier(now, creator, id),
		FundingDeadline:    now.Add(duration),
		DecryptionDeadline: now.Add(duration).Add(RefundTimeout),
		Status:             model.CampaignStatusActive,
		Contributions:      make(map[common.Address]*model.Contribution),
	}
	l.campaigns[id] = &campaignEntry{c: c}
	l.mu.Unlock()

	logger.Info("活动已创建: id=%d creator=%s 筹款截止=%s", id, creator.Hex(), c.FundingDeadline.Format(time.RFC3339))
	l.emit(model.EventCampaignCreated, id, map[string]any{
		"creator":             creator.Hex(),
		"target_commitment":   targetCommitment.Hex(),
		"funding_deadline":    c.FundingDeadline,
		"decryption_deadline": c.DecryptionDeadline,
	})

	return id, nil
}

// feeFor 计算平台手续费 amount * FeeBps / BpsDenominator
//
// 按商余分解计算，等价于直接乘除但对任意 int64 金额都不会中间溢出。
func feeFor(amount int64) int64 {
	q := amount / BpsDenominator
	r := amount % BpsDenominator
	return q*FeeBps + r*FeeBps/BpsDenominator
}

// Contribute 记录一笔贡献
//
// 仅在活动 active 且严格早于筹款截止期时接受。手续费 = 金额 * FeeBps / 10000，
// 净额计入活动与贡献者记录，手续费计入平台费池，混淆增量按乘除变换
// 累加到当前承诺。任何一步会溢出都整体拒绝，不产生部分写入。
func (l *Ledger) Contribute(campaignId uint64, contributor common.Address, amount int64, rawCommitment uint64) error {
	if contributor == (common.Address{}) {
		return newError(CodeInvalidArgument, "贡献者地址不能为空")
	}
	if amount <= 0 {
		return newError(CodeInvalidArgument, "贡献金额必须大于0: %d", amount)
	}

	e, err := l.entry(campaignId)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.c

	if c.Status != model.CampaignStatusActive {
		return newError(CodePreconditionFailed, "活动不在进行中，无法接受贡献: 状态=%s", c.Status)
	}
	now := l.clock.Now()
	if !now.Before(c.FundingDeadline) {
		return newError(CodePreconditionFailed, "筹款已截止，无法接受贡献")
	}

	fee := feeFor(amount)
	net := amount - fee

	// 先做全部溢出检查，再一次性提交，保证全有或全无
	newTotal, ok := checkedAddInt64(c.TotalRaisedActual, net)
	if !ok {
		return newError(CodeOverflow, "活动累计净额溢出: 活动=%d", campaignId)
	}
	newFeeAccrued, ok := checkedAddInt64(c.PlatformFeeAccrued, fee)
	if !ok {
		return newError(CodeOverflow, "活动累计手续费溢出: 活动=%d", campaignId)
	}

	obfuscated, err := obfuscate(rawCommitment, c.Multiplier)
	if err != nil {
		return err
	}
	newCommitment, ok := checkedAddUint64(c.CurrentCommitment, obfuscated)
	if !ok {
		return newError(CodeOverflow, "活动承诺累计值溢出: 活动=%d", campaignId)
	}

	var (
		ctbActual     int64
		ctbObfuscated uint64
	)
	ctb := c.Contributions[contributor]
	if ctb != nil {
		ctbActual, ok = checkedAddInt64(ctb.ActualAmount, net)
		if !ok {
			return newError(CodeOverflow, "贡献者累计净额溢出: 贡献者=%s", contributor.Hex())
		}
		ctbObfuscated, ok = checkedAddUint64(ctb.ObfuscatedAmount, obfuscated)
		if !ok {
			return newError(CodeOverflow, "贡献者混淆累计值溢出: 贡献者=%s", contributor.Hex())
		}
	} else {
		ctbActual, ctbObfuscated = net, obfuscated
	}

	l.feeMu.Lock()
	newPool, ok := checkedAddInt64(l.feePool.Balance, fee)
	if !ok {
		l.feeMu.Unlock()
		return newError(CodeOverflow, "平台手续费池溢出")
	}
	l.feePool.Balance = newPool
	l.feeMu.Unlock()

	// 检查全部通过，提交
	if ctb == nil {
		ctb = &model.Contribution{
			CampaignId:         campaignId,
			Contributor:        contributor,
			FirstContributedAt: now,
		}
		c.Contributions[contributor] = ctb
	}
	ctb.ActualAmount = ctbActual
	ctb.ObfuscatedAmount = ctbObfuscated
	c.TotalRaisedActual = newTotal
	c.PlatformFeeAccrued = newFeeAccrued
	c.CurrentCommitment = newCommitment

	logger.Info("贡献已记录: 活动=%d 贡献者=%s 金额=%d 净额=%d 手续费=%d",
		campaignId, contributor.Hex(), amount, net, fee)
	l.emit(model.EventContributionMade, campaignId, map[string]any{
		"contributor": contributor.Hex(),
		"amount":      amount,
		"net":         net,
		"fee":         fee,
	})

	return nil
}
