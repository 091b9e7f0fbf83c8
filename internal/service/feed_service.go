package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teamhub/internal/dto"
	"teamhub/internal/logger"
)

// NotificationKind 通知类别，决定信息流查询绑定的表与接收者列
type NotificationKind int

const (
	// GlobalKind 全局通知（按角色投递）
	GlobalKind NotificationKind = iota
	// PersonalKind 个人通知（按邮箱投递）
	PersonalKind
)

// table 通知表名
func (k NotificationKind) table() string {
	if k == PersonalKind {
		return "personal_notifications"
	}
	return "global_notifications"
}

// receiverColumn 接收者过滤列
func (k NotificationKind) receiverColumn() string {
	if k == PersonalKind {
		return "receiver_email"
	}
	return "receiver_role"
}

// FeedScope 信息流接收范围：角色集合（全局）或单个邮箱（个人），二选一
type FeedScope struct {
	Roles []string
	Email string
}

// valid 校验范围与通知类别是否匹配
func (s FeedScope) valid(kind NotificationKind) bool {
	if kind == PersonalKind {
		return s.Email != ""
	}
	return len(s.Roles) > 0
}

// arg 接收者过滤条件的绑定参数
func (s FeedScope) arg(kind NotificationKind) interface{} {
	if kind == PersonalKind {
		return s.Email
	}
	return s.Roles
}

// condition 接收者过滤条件SQL片段
func (s FeedScope) condition(kind NotificationKind) string {
	if kind == PersonalKind {
		return "receiver_email = ?"
	}
	return "receiver_role IN ?"
}

// FeedQuery 信息流查询，两种取页模式互斥：
//   - StartingDate：按游标分页，返回锚点之前的事件，受PageChunkSize限制
//   - LastReadAt：按已读边界，返回锚点之后的全部事件，不限页大小
type FeedQuery struct {
	Scope         FeedScope
	StartingDate  *time.Time
	LastReadAt    *time.Time
	PageChunkSize int
}

// FeedService 信息流查询引擎：把同一张通知表里的创建事件与修改事件
// 合并为一条按事件时间倒序、游标分页的时间线
type FeedService struct {
	logger *zap.SugaredLogger
}

// NewFeedService 创建信息流查询引擎
func NewFeedService() *FeedService {
	return &FeedService{
		logger: logger.GetSugaredLogger(),
	}
}

// 按游标分页的合并查询。
// 两个子查询各自先按锚点过滤、倒序、截断到页大小，再做合并重排：
// 这样深分页不必扫全表。代价是当某一类事件占满整页时，合并去重后的
// 结果可能少于页大小——这是刻意的分页取舍，不是缺陷。
// OFFSET分页会随页数加深越来越慢，这里始终用锚点+LIMIT代替。
const feedPageQuery = `
SELECT * FROM (
  SELECT * FROM (
    SELECT
      id, sender, %[2]s AS receiver, title, body, label, link,
      created_at, updated_at,
      updated_at AS event_timestamp,
      'is_update' AS event_type
    FROM %[1]s
    WHERE updated_at < ? AND updated_at <> created_at AND %[3]s
    ORDER BY updated_at DESC
    LIMIT ?
  ) AS update_events
  UNION ALL
  SELECT * FROM (
    SELECT
      id, sender, %[2]s AS receiver, title, body, label, link,
      created_at, updated_at,
      created_at AS event_timestamp,
      'is_create' AS event_type
    FROM %[1]s
    WHERE created_at < ? AND %[3]s
    ORDER BY created_at DESC
    LIMIT ?
  ) AS create_events
) AS feed
ORDER BY event_timestamp DESC, id DESC
LIMIT ?
`

// 按已读边界的合并查询：返回边界之后的全部未读事件，不分页
const feedByLastReadQuery = `
SELECT * FROM (
  SELECT
    id, sender, %[2]s AS receiver, title, body, label, link,
    created_at, updated_at,
    updated_at AS event_timestamp,
    'is_update' AS event_type
  FROM %[1]s
  WHERE updated_at > ? AND updated_at <> created_at AND %[3]s
  UNION ALL
  SELECT
    id, sender, %[2]s AS receiver, title, body, label, link,
    created_at, updated_at,
    created_at AS event_timestamp,
    'is_create' AS event_type
  FROM %[1]s
  WHERE created_at > ? AND %[3]s
) AS feed
ORDER BY event_timestamp DESC, id DESC
`

// 未读存在性检查：只判断有无，不取行。
// updated_at在创建时等于created_at，因此单列即可覆盖两类事件。
const hasNewQuery = `
SELECT EXISTS(
  SELECT 1 FROM %[1]s
  WHERE updated_at > ? AND %[2]s
) AS has_new
`

// FetchFeed 执行合并信息流查询，返回按事件时间倒序、
// 带页内序号的条目；无匹配时返回空切片
func (s *FeedService) FetchFeed(tx *gorm.DB, kind NotificationKind, q FeedQuery) ([]dto.FeedItem, error) {
	if !q.Scope.valid(kind) {
		return nil, ErrInvalidFeedParams
	}
	if (q.StartingDate == nil) == (q.LastReadAt == nil) {
		return nil, ErrInvalidFeedParams
	}

	var (
		query string
		args  []interface{}
	)
	recvArg := q.Scope.arg(kind)
	cond := q.Scope.condition(kind)

	if q.StartingDate != nil {
		anchor := *q.StartingDate
		query = fmt.Sprintf(feedPageQuery, kind.table(), kind.receiverColumn(), cond)
		args = []interface{}{
			anchor, recvArg, q.PageChunkSize,
			anchor, recvArg, q.PageChunkSize,
			q.PageChunkSize,
		}
	} else {
		anchor := *q.LastReadAt
		query = fmt.Sprintf(feedByLastReadQuery, kind.table(), kind.receiverColumn(), cond)
		args = []interface{}{
			anchor, recvArg,
			anchor, recvArg,
		}
	}

	items := make([]dto.FeedItem, 0)
	if err := tx.Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("查询信息流失败: %w", err)
	}

	// 页内序号按最终排序赋值
	for i := range items {
		items[i].RowNumber = i + 1
	}
	return items, nil
}

// HasNew 检查范围内是否存在边界之后的事件，存在性查询而非取页
func (s *FeedService) HasNew(tx *gorm.DB, kind NotificationKind, scope FeedScope, since time.Time) (bool, error) {
	if !scope.valid(kind) {
		return false, ErrInvalidFeedParams
	}

	query := fmt.Sprintf(hasNewQuery, kind.table(), scope.condition(kind))
	var hasNew bool
	if err := tx.Raw(query, since, scope.arg(kind)).Scan(&hasNew).Error; err != nil {
		return false, fmt.Errorf("检查未读通知失败: %w", err)
	}
	return hasNew, nil
}
