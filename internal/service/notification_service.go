package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"teamhub/internal/config"
	"teamhub/internal/dto"
	"teamhub/internal/logger"
	"teamhub/internal/model"
)

// NotificationService 通知服务：通知的创建、删除、信息流拉取、
// 未读检查与已读游标推进
type NotificationService struct {
	db        *gorm.DB
	logger    *zap.SugaredLogger
	feed      *FeedService
	sanitizer *bluemonday.Policy
}

// NewNotificationService 创建通知服务实例
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		db:     db,
		logger: logger.GetSugaredLogger(),
		feed:   NewFeedService(),
		// 通知内容按纯文本处理，剥除所有HTML
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// cursorGracePeriod 已读游标推进的宽限期
func cursorGracePeriod() time.Duration {
	return time.Duration(config.GlobalConfig.Notification.CursorGraceSeconds) * time.Second
}

// shouldAdvanceCursor 判断本次拉取是否应推进已读游标。
// 只有锚点落在当前时间的宽限窗口内（即一次"实时拉取"）才推进；
// 向历史翻页的锚点是旧时间戳，不会把翻过的页误标记为已读。
func shouldAdvanceCursor(anchor, now time.Time) bool {
	return anchor.Add(cursorGracePeriod()).After(now)
}

// advanceCursor 推进用户的已读游标，WHERE条件保证游标只会单调前移
func advanceCursor(tx *gorm.DB, userID uint, column string, to time.Time) error {
	err := tx.Model(&model.User{}).
		Where("id = ? AND "+column+" < ?", userID, to).
		Update(column, to).Error
	if err != nil {
		return fmt.Errorf("推进已读游标失败: %w", err)
	}
	return nil
}

// cursorColumn 类别对应的游标列
func cursorColumn(kind NotificationKind) string {
	if kind == PersonalKind {
		return "last_personal_notification_at"
	}
	return "last_global_notification_at"
}

// scopeFor 用户在某类通知下的接收范围
func scopeFor(user *model.User, kind NotificationKind) FeedScope {
	if kind == PersonalKind {
		return FeedScope{Email: user.Email}
	}
	return FeedScope{Roles: model.VisibleRoles(user.Role)}
}

// cursorFor 用户在某类通知下的已读边界
func cursorFor(user *model.User, kind NotificationKind) time.Time {
	if kind == PersonalKind {
		return user.LastPersonalNotificationAt
	}
	return user.LastGlobalNotificationAt
}

// normalizeChunkSize 分页大小缺省与上限收敛
func normalizeChunkSize(chunk int) int {
	cfg := config.GlobalConfig.Notification
	if chunk <= 0 {
		return cfg.PageChunkSize
	}
	if chunk > cfg.MaxPageChunkSize {
		return cfg.MaxPageChunkSize
	}
	return chunk
}

// CreateGlobalNotification 创建全局通知
func (s *NotificationService) CreateGlobalNotification(sender string, req *dto.CreateGlobalNotificationRequest) (*model.GlobalNotification, error) {
	if !model.IsValidRole(req.ReceiverRole) {
		return nil, ErrInvalidNotification
	}
	if err := s.checkUserExists(sender); err != nil {
		return nil, err
	}

	notification := &model.GlobalNotification{
		Sender:       sender,
		ReceiverRole: req.ReceiverRole,
		Title:        s.sanitizer.Sanitize(req.Title),
		Body:         s.sanitizer.Sanitize(req.Body),
		Label:        s.sanitizer.Sanitize(req.Label),
		Link:         req.Link,
	}
	if err := s.db.Create(notification).Error; err != nil {
		s.logger.Errorf("创建全局通知失败: %v", err)
		return nil, ErrInvalidNotification
	}
	return notification, nil
}

// DeleteGlobalNotification 删除全局通知，管理员权限由路由层保证
func (s *NotificationService) DeleteGlobalNotification(id uint) error {
	result := s.db.Delete(&model.GlobalNotification{}, id)
	if result.Error != nil {
		return fmt.Errorf("删除全局通知失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// CreatePersonalNotification 创建个人通知，接收者必须是已注册用户
func (s *NotificationService) CreatePersonalNotification(sender string, req *dto.CreatePersonalNotificationRequest) (*model.PersonalNotification, error) {
	if err := s.checkUserExists(sender); err != nil {
		return nil, err
	}
	if err := s.checkUserExists(req.ReceiverEmail); err != nil {
		return nil, err
	}

	notification := &model.PersonalNotification{
		Sender:        sender,
		ReceiverEmail: req.ReceiverEmail,
		Title:         s.sanitizer.Sanitize(req.Title),
		Body:          s.sanitizer.Sanitize(req.Body),
		Label:         s.sanitizer.Sanitize(req.Label),
		Link:          req.Link,
	}
	if err := s.db.Create(notification).Error; err != nil {
		s.logger.Errorf("创建个人通知失败: %v", err)
		return nil, ErrInvalidNotification
	}
	return notification, nil
}

// DeletePersonalNotification 删除个人通知，只有发送者本人可删除
func (s *NotificationService) DeletePersonalNotification(id uint, requesterEmail string) error {
	var notification model.PersonalNotification
	if err := s.db.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("查询个人通知失败: %w", err)
	}

	if notification.Sender != requesterEmail {
		return ErrNotificationForbidden
	}

	if err := s.db.Delete(&notification).Error; err != nil {
		return fmt.Errorf("删除个人通知失败: %w", err)
	}
	return nil
}

// FetchFeedPage 按游标分页拉取信息流。
// 取页与游标推进在同一事务内完成：锚点接近当前时间的实时拉取
// 会把已读游标推进到锚点，向历史翻页则不动游标。
func (s *NotificationService) FetchFeedPage(user *model.User, kind NotificationKind, startingDate time.Time, chunkSize int) ([]dto.FeedItem, error) {
	var items []dto.FeedItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		items, err = s.feed.FetchFeed(tx, kind, FeedQuery{
			Scope:         scopeFor(user, kind),
			StartingDate:  &startingDate,
			PageChunkSize: normalizeChunkSize(chunkSize),
		})
		if err != nil {
			return err
		}

		if shouldAdvanceCursor(startingDate, time.Now()) {
			return advanceCursor(tx, user.ID, cursorColumn(kind), startingDate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FetchGlobalFeedByLastRead 拉取已读边界之后的全部未读事件，
// 并在同一事务内把游标推进到当前时间
func (s *NotificationService) FetchGlobalFeedByLastRead(user *model.User) ([]dto.FeedItem, error) {
	return s.fetchByLastRead(user, GlobalKind)
}

// FetchPersonalFeedByLastRead 个人通知的按已读边界拉取
func (s *NotificationService) FetchPersonalFeedByLastRead(user *model.User) ([]dto.FeedItem, error) {
	return s.fetchByLastRead(user, PersonalKind)
}

func (s *NotificationService) fetchByLastRead(user *model.User, kind NotificationKind) ([]dto.FeedItem, error) {
	var items []dto.FeedItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lastRead := cursorFor(user, kind)
		var err error
		items, err = s.feed.FetchFeed(tx, kind, FeedQuery{
			Scope:      scopeFor(user, kind),
			LastReadAt: &lastRead,
		})
		if err != nil {
			return err
		}
		return advanceCursor(tx, user.ID, cursorColumn(kind), time.Now())
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// HasNewNotifications 检查用户两类信息流是否有未读事件
func (s *NotificationService) HasNewNotifications(user *model.User) (*dto.HasNewNotificationsResponse, error) {
	hasGlobal, err := s.feed.HasNew(s.db, GlobalKind, scopeFor(user, GlobalKind), user.LastGlobalNotificationAt)
	if err != nil {
		return nil, err
	}
	hasPersonal, err := s.feed.HasNew(s.db, PersonalKind, scopeFor(user, PersonalKind), user.LastPersonalNotificationAt)
	if err != nil {
		return nil, err
	}
	return &dto.HasNewNotificationsResponse{
		HasNewGlobalNotifications:   hasGlobal,
		HasNewPersonalNotifications: hasPersonal,
	}, nil
}

// CleanupOldNotifications 清理超过保留期的通知（定时任务调用）
func (s *NotificationService) CleanupOldNotifications(days int) error {
	if days <= 0 {
		days = config.GlobalConfig.Notification.CleanupDays
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	result := s.db.Where("updated_at < ?", cutoff).Delete(&model.GlobalNotification{})
	if result.Error != nil {
		return fmt.Errorf("清理全局通知失败: %w", result.Error)
	}
	deleted := result.RowsAffected

	result = s.db.Where("updated_at < ?", cutoff).Delete(&model.PersonalNotification{})
	if result.Error != nil {
		return fmt.Errorf("清理个人通知失败: %w", result.Error)
	}
	deleted += result.RowsAffected

	if deleted > 0 {
		s.logger.Infof("清理了 %d 条过期通知", deleted)
	}
	return nil
}

// checkUserExists 发送者/接收者必须是已注册用户
func (s *NotificationService) checkUserExists(email string) error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("查询用户失败: %w", err)
	}
	if count == 0 {
		return ErrInvalidNotification
	}
	return nil
}
