package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"teamhub/internal/config"
	"teamhub/internal/logger"
	"teamhub/internal/model"
	"teamhub/internal/router"
	"teamhub/pkg/auth"
)

// newTestServer 构建测试用路由与内存数据库
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.GlobalConfig = &config.Config{
		App: config.AppConfig{Mode: "test"},
		Log: config.LogConfig{Level: "error", Stdout: true},
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
	auth.UseBlacklist(auth.NewMemoryTokenBlacklist())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, model.InitTables(db))

	return router.SetupRouter(db), db
}

// createUserWithToken 创建用户并签发访问令牌
func createUserWithToken(t *testing.T, db *gorm.DB, username, email, role string, cursorAt time.Time) (*model.User, string) {
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

	pair, err := auth.GenerateTokenPair(user.ID, user.Email, user.Role, false)
	require.NoError(t, err)
	return user, pair.AccessToken
}

// doJSON 发送JSON请求
func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// parseData 解析统一响应外壳中的data字段
func parseData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 0, envelope.Code)
	if dest != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, dest))
	}
}
