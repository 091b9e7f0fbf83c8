package dto

import (
	"time"
)

// 信息流事件类型：标记该行由哪个时间戳产生
const (
	FeedEventCreate = "is_create"
	FeedEventUpdate = "is_update"
)

// FeedItem 信息流条目：通知行投影出事件类型、事件时间与页内序号
// 一条通知必产生一条is_create条目；被修改过（updated_at != created_at）时
// 额外产生一条is_update条目
type FeedItem struct {
	ID             uint      `gorm:"column:id" json:"id"`
	Sender         string    `gorm:"column:sender" json:"sender"`
	Receiver       string    `gorm:"column:receiver" json:"receiver"`
	Title          string    `gorm:"column:title" json:"title"`
	Body           string    `gorm:"column:body" json:"body"`
	Label          string    `gorm:"column:label" json:"label"`
	Link           string    `gorm:"column:link" json:"link"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
	EventType      string    `gorm:"column:event_type" json:"event_type"`
	EventTimestamp time.Time `gorm:"column:event_timestamp" json:"event_timestamp"`
	RowNumber      int       `gorm:"-" json:"row_number"`
}

// FeedPageRequest 按游标分页拉取信息流的请求
type FeedPageRequest struct {
	// StartingDate 分页锚点，返回该时刻之前的事件；缺省为请求时刻
	StartingDate *time.Time `form:"starting_date" time_format:"2006-01-02T15:04:05.999999999Z07:00"`
	// PageChunkSize 每页条数，[1,50]，缺省10
	PageChunkSize int `form:"page_chunk_size" binding:"omitempty,min=1,max=50"`
}

// CreateGlobalNotificationRequest 创建全局通知请求
type CreateGlobalNotificationRequest struct {
	ReceiverRole string `json:"receiver_role" binding:"required,role"`
	Title        string `json:"title" binding:"required,max=255"`
	Body         string `json:"body" binding:"required,max=255"`
	Label        string `json:"label" binding:"required,max=255"`
	Link         string `json:"link" binding:"omitempty,max=255"`
}

// CreatePersonalNotificationRequest 创建个人通知请求
type CreatePersonalNotificationRequest struct {
	ReceiverEmail string `json:"receiver_email" binding:"required,email"`
	Title         string `json:"title" binding:"required,max=255"`
	Body          string `json:"body" binding:"required,max=255"`
	Label         string `json:"label" binding:"required,max=255"`
	Link          string `json:"link" binding:"omitempty,max=255"`
}

// HasNewNotificationsResponse 未读检查响应
type HasNewNotificationsResponse struct {
	HasNewGlobalNotifications   bool `json:"has_new_global_notifications"`
	HasNewPersonalNotifications bool `json:"has_new_personal_notifications"`
}

// StreamEvent 推送通道单条消息负载
type StreamEvent struct {
	ID                          string `json:"id"`
	HasNewGlobalNotifications   bool   `json:"has_new_global_notifications"`
	HasNewPersonalNotifications bool   `json:"has_new_personal_notifications"`
}
