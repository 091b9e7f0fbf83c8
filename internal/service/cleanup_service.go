package service

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"teamhub/internal/logger"
)

// CleanupService 定时清理过期通知
type CleanupService struct {
	cron         *cron.Cron
	notification *NotificationService
	logger       *zap.SugaredLogger
}

// NewCleanupService 创建清理服务实例
func NewCleanupService(db *gorm.DB) *CleanupService {
	return &CleanupService{
		cron:         cron.New(),
		notification: NewNotificationService(db),
		logger:       logger.GetSugaredLogger(),
	}
}

// Start 启动定时任务，每天凌晨3点清理一次
func (s *CleanupService) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		if err := s.notification.CleanupOldNotifications(0); err != nil {
			s.logger.Errorf("定时清理通知失败: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("注册清理任务失败: %w", err)
	}

	s.cron.Start()
	s.logger.Info("通知清理定时任务已启动")
	return nil
}

// Stop 停止定时任务，等待正在执行的任务完成
func (s *CleanupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
