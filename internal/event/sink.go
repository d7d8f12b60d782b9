package event

import (
	"encoding/json"
	"fmt"

	"github.com/blues/sfl/internal/logger"
	"github.com/blues/sfl/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// Sink 审计事件下游
//
// 账本每次状态变更发出一条事件，由协程池异步落库并记日志，
// 不阻塞发出事件的调用。核心从不回读这些记录。
type Sink struct {
	db   *gorm.DB
	pool *ants.Pool
}

// NewSink 创建事件下游
func NewSink(db *gorm.DB, poolSize int) (*Sink, error) {
	if poolSize <= 0 {
		poolSize = 8
	}
	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("failed to create event worker pool: %w", err)
	}
	return &Sink{db: db, pool: pool}, nil
}

// Emit 实现 ledger.Emitter
func (s *Sink) Emit(ev model.LedgerEvent) {
	if err := s.pool.Submit(func() { s.persist(ev) }); err != nil {
		logger.Error("事件任务提交失败: %s 活动=%d err=%v", ev.Name, ev.CampaignId, err)
	}
}

// persist 落库单条事件
func (s *Sink) persist(ev model.LedgerEvent) {
	payload, err := json.Marshal(ev.Fields)
	if err != nil {
		logger.Error("事件负载序列化失败: %s 活动=%d err=%v", ev.Name, ev.CampaignId, err)
		payload = []byte("{}")
	}

	record := model.LedgerEventModel{
		EventName:  string(ev.Name),
		CampaignId: ev.CampaignId,
		EmittedAt:  ev.EmittedAt,
		Payload:    string(payload),
	}
	if err := s.db.Create(&record).Error; err != nil {
		logger.Error("事件落库失败: %s 活动=%d err=%v", ev.Name, ev.CampaignId, err)
		return
	}

	logger.Debug("事件已记录: %s 活动=%d", ev.Name, ev.CampaignId)
}

// Close 关闭协程池，丢弃未提交的任务
func (s *Sink) Close() {
	s.pool.Release()
}

// ListEvents 分页查询审计事件
//
// campaignId 为 0 时不过滤活动，eventName 为空时不过滤类型。
func ListEvents(db *gorm.DB, campaignId uint64, eventName string, page, pageSize int) ([]model.LedgerEventModel, int64, error) {
	var events []model.LedgerEventModel
	var total int64

	query := db.Model(&model.LedgerEventModel{})
	if campaignId > 0 {
		query = query.Where("campaign_id = ?", campaignId)
	}
	if eventName != "" {
		query = query.Where("event_name = ?", eventName)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事件总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事件列表失败: %w", err)
	}

	return events, total, nil
}
