package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/blues/sfl/internal/logger"
	"github.com/blues/sfl/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

// 账本常量
const (
	// FeeBps 平台手续费率，万分之二百（2%）
	FeeBps = 200
	// BpsDenominator 费率基数
	BpsDenominator = 10_000
	// RefundTimeout 解密截止期 = 筹款截止期 + RefundTimeout，超时退款兜底
	RefundTimeout = 30 * 24 * time.Hour
	// MaxDuration 筹款期上限
	MaxDuration = 365 * 24 * time.Hour
)

// Ledger 确定性众筹账本状态机
//
// 所有资金与状态的权威记录。同一活动上的每个变更操作在该活动自己的
// 互斥锁下原子执行，跨活动操作互不共享锁；唯一的"挂起"是网关的
// 异步往返，它被建模为两次独立的原子调用，靠请求ID关联，不跨调用持锁。
type Ledger struct {
	mu        sync.RWMutex // 保护 campaigns、nextId、gateway
	campaigns map[uint64]*campaignEntry
	nextId    uint64

	requestsMu sync.RWMutex
	requests   map[common.Hash]*model.DecryptionRequest

	feeMu   sync.Mutex
	feePool model.FeePool

	// 平台配置状态：显式注入，不做包级全局
	operator common.Address
	gateway  common.Address

	clock    Clock
	treasury Transferer
	notifier Notifier
	emitter  Emitter
}

// campaignEntry 活动记录及其串行化锁
type campaignEntry struct {
	mu sync.Mutex
	c  *model.Campaign
}

// Deps 账本的外部协作方
type Deps struct {
	Clock    Clock
	Treasury Transferer
	Notifier Notifier
	Emitter  Emitter
}

// New 创建账本
//
// operator 为平台运营方身份，必须非零；gateway 可先为零值，
// 之后由运营方通过 SetGateway 设置（可替换）。
func New(operator common.Address, gateway common.Address, deps Deps) (*Ledger, error) {
	if operator == (common.Address{}) {
		return nil, newError(CodeInvalidArgument, "运营方地址不能为空")
	}
	if deps.Clock == nil {
		deps.Clock = systemClock{}
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Emitter == nil {
		deps.Emitter = nopEmitter{}
	}
	if deps.Treasury == nil {
		return nil, newError(CodeInvalidArgument, "资金划转协作方不能为空")
	}

	return &Ledger{
		campaigns: make(map[uint64]*campaignEntry),
		nextId:    1,
		requests:  make(map[common.Hash]*model.DecryptionRequest),
		operator:  operator,
		gateway:   gateway,
		clock:     deps.Clock,
		treasury:  deps.Treasury,
		notifier:  deps.Notifier,
		emitter:   deps.Emitter,
	}, nil
}

// Operator 平台运营方身份
func (l *Ledger) Operator() common.Address {
	return l.operator
}

// Gateway 当前配置的网关身份
func (l *Ledger) Gateway() common.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gateway
}

// SetGateway 由运营方设置或替换网关身份
func (l *Ledger) SetGateway(caller common.Address, gateway common.Address) error {
	if caller != l.operator {
		return newError(CodeUnauthorized, "只有运营方可以设置网关身份")
	}
	if gateway == (common.Address{}) {
		return newError(CodeInvalidArgument, "网关地址不能为空")
	}

	l.mu.Lock()
	old := l.gateway
	l.gateway = gateway
	l.mu.Unlock()

	logger.Info("网关身份已更新: %s -> %s", old.Hex(), gateway.Hex())
	return nil
}

// entry 查找活动记录，调用方负责后续加锁
func (l *Ledger) entry(campaignId uint64) (*campaignEntry, error) {
	l.mu.RLock()
	e, ok := l.campaigns[campaignId]
	l.mu.RUnlock()
	if !ok {
		return nil, newError(CodeNotFound, "活动不存在: %d", campaignId)
	}
	return e, nil
}

// GetCampaign 获取活动快照（副本，不含贡献明细）
func (l *Ledger) GetCampaign(campaignId uint64) (model.Campaign, error) {
	e, err := l.entry(campaignId)
	if err != nil {
		return model.Campaign{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshotCampaign(e.c), nil
}

// ListCampaigns 获取全部活动快照，按ID升序
func (l *Ledger) ListCampaigns() []model.Campaign {
	l.mu.RLock()
	entries := make([]*campaignEntry, 0, len(l.campaigns))
	for _, e := range l.campaigns {
		entries = append(entries, e)
	}
	l.mu.RUnlock()

	out := make([]model.Campaign, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, snapshotCampaign(e.c))
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// GetContribution 获取单个贡献记录快照
func (l *Ledger) GetContribution(campaignId uint64, contributor common.Address) (model.Contribution, error) {
	e, err := l.entry(campaignId)
	if err != nil {
		return model.Contribution{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	ctb, ok := e.c.Contributions[contributor]
	if !ok {
		return model.Contribution{}, newError(CodeNotFound, "贡献记录不存在: 活动=%d 贡献者=%s", campaignId, contributor.Hex())
	}
	return *ctb, nil
}

// ListContributions 获取活动的全部贡献记录快照
func (l *Ledger) ListContributions(campaignId uint64) ([]model.Contribution, error) {
	e, err := l.entry(campaignId)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Contribution, 0, len(e.c.Contributions))
	for _, ctb := range e.c.Contributions {
		out = append(out, *ctb)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Contributor.Hex() < out[j].Contributor.Hex()
	})
	return out, nil
}

// FeePool 手续费池快照
func (l *Ledger) FeePool() model.FeePool {
	l.feeMu.Lock()
	defer l.feeMu.Unlock()
	return l.feePool
}

// Stats 账本运行统计
type Stats struct {
	TotalCampaigns  int   `json:"total_campaigns"`
	ActiveCampaigns int   `json:"active_campaigns"`
	TimeoutEligible int   `json:"timeout_eligible"`
	PendingRequests int   `json:"pending_requests"`
	FeePoolBalance  int64 `json:"fee_pool_balance"`
}

// Snapshot 统计当前账本状态，供定时任务与指标上报使用
func (l *Ledger) Snapshot() Stats {
	now := l.clock.Now()

	l.mu.RLock()
	entries := make([]*campaignEntry, 0, len(l.campaigns))
	for _, e := range l.campaigns {
		entries = append(entries, e)
	}
	l.mu.RUnlock()

	var s Stats
	s.TotalCampaigns = len(entries)
	for _, e := range entries {
		e.mu.Lock()
		if e.c.Status == model.CampaignStatusActive {
			s.ActiveCampaigns++
		}
		if e.c.Status != model.CampaignStatusClosed && !now.Before(e.c.DecryptionDeadline) {
			s.TimeoutEligible++
		}
		e.mu.Unlock()
	}

	l.requestsMu.RLock()
	for _, r := range l.requests {
		if r.Status == model.RequestStatusPending {
			s.PendingRequests++
		}
	}
	l.requestsMu.RUnlock()

	l.feeMu.Lock()
	s.FeePoolBalance = l.feePool.Balance
	l.feeMu.Unlock()

	return s
}

// snapshotCampaign 复制活动记录，屏蔽内部所有权
func snapshotCampaign(c *model.Campaign) model.Campaign {
	cp := *c
	cp.Contributions = nil
	if c.ActiveRequestId != nil {
		id := *c.ActiveRequestId
		cp.ActiveRequestId = &id
	}
	return cp
}

// emit 发出审计事件
func (l *Ledger) emit(name model.EventName, campaignId uint64, fields map[string]any) {
	l.emitter.Emit(model.LedgerEvent{
		Name:       name,
		CampaignId: campaignId,
		EmittedAt:  l.clock.Now(),
		Fields:     fields,
	})
}
