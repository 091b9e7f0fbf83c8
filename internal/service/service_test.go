package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"teamhub/internal/config"
	"teamhub/internal/logger"
	"teamhub/internal/model"
)

// setupTestEnv 初始化测试用的全局配置与日志
func setupTestEnv(t *testing.T) {
	t.Helper()

	config.GlobalConfig = &config.Config{
		Log: config.LogConfig{
			Level:  "error",
			Stdout: true,
		},
		JWT: config.JWTConfig{
			SecretKey:            "test-secret-key",
			AccessExpireSeconds:  3600,
			RefreshExpireSeconds: 86400,
			BufferSeconds:        300,
			Issuer:               "teamhub-test",
			MachineID:            1,
		},
		Notification: config.NotificationConfig{
			PageChunkSize:        10,
			MaxPageChunkSize:     50,
			CursorGraceSeconds:   10,
			StreamDelayMS:        50,
			StreamRetryTimeoutMS: 15000,
			CleanupDays:          90,
		},
	}
	logger.InitLogger(&config.GlobalConfig.Log)
}

// newTestDB 创建内存数据库并迁移全部表
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	setupTestEnv(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// 内存库随连接销毁，限制为单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, model.InitTables(db))
	return db
}

// createTestUser 创建测试用户，通知游标初始化到指定时刻
func createTestUser(t *testing.T, db *gorm.DB, username, email, role string, cursorAt time.Time) *model.User {
	t.Helper()

	user := &model.User{
		Username:                   username,
		Email:                      email,
		Password:                   "$2a$10$abcdefghijklmnopqrstuv",
		Role:                       role,
		Status:                     1,
		LastGlobalNotificationAt:   cursorAt,
		LastPersonalNotificationAt: cursorAt,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedGlobal 插入一条全局通知，时间戳完全由调用方控制
func seedGlobal(t *testing.T, db *gorm.DB, sender, role, title string, createdAt, updatedAt time.Time) *model.GlobalNotification {
	t.Helper()

	n := &model.GlobalNotification{
		Sender:       sender,
		ReceiverRole: role,
		Title:        title,
		Body:         "body of " + title,
		Label:        "info",
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

// seedPersonal 插入一条个人通知
func seedPersonal(t *testing.T, db *gorm.DB, sender, email, title string, createdAt, updatedAt time.Time) *model.PersonalNotification {
	t.Helper()

	n := &model.PersonalNotification{
		Sender:        sender,
		ReceiverEmail: email,
		Title:         title,
		Body:          "body of " + title,
		Label:         "info",
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}
