package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/sfl/internal/event"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EventHandler 审计事件查询处理器
type EventHandler struct {
	db *gorm.DB
}

// NewEventHandler 创建事件处理器
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{db: db}
}

// GetEvents 分页查询审计事件
func (h *EventHandler) GetEvents(c *gin.Context) {
	campaignId, _ := strconv.ParseUint(c.DefaultQuery("campaign_id", "0"), 10, 64)
	eventName := c.Query("event_name")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	events, total, err := event.ListEvents(h.db, campaignId, eventName, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	pagination := Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	SuccessResponse(c, http.StatusOK, "获取事件列表成功", gin.H{
		"events":     ToEventResponseList(events),
		"pagination": pagination,
	})
}
