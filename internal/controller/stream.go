package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"teamhub/internal/config"
	"teamhub/internal/dto"
	"teamhub/internal/logger"
	"teamhub/internal/service"
	"teamhub/pkg/auth"
	"teamhub/pkg/response"
)

// StreamApi 通知实时推送通道（SSE）
type StreamApi struct {
	userService         *service.UserService
	notificationService *service.NotificationService
	logger              *zap.SugaredLogger
}

// NewStreamApi 创建推送通道控制器
func NewStreamApi(db *gorm.DB) *StreamApi {
	return &StreamApi{
		userService:         service.NewUserService(db),
		notificationService: service.NewNotificationService(db),
		logger:              logger.GetSugaredLogger(),
	}
}

// Stream 建立SSE连接并周期推送未读状态。
// EventSource无法携带请求头，令牌通过query参数传入，只在建连时校验一次；
// 每个周期重新加载用户，游标在别处推进后下一个周期即生效。
func (a *StreamApi) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, "缺少令牌", nil)
		return
	}
	claims, err := auth.ParseToken(token)
	if err != nil || claims.Type != auth.AccessToken {
		response.Unauthorized(c, "令牌无效", err)
		return
	}

	// max_messages限制推送次数，0表示不限（测试与轮询客户端使用）
	maxMessages := 0
	if raw := c.Query("max_messages"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(c, "无效的max_messages", err)
			return
		}
		maxMessages = n
	}

	cfg := config.GlobalConfig.Notification
	delay := time.Duration(cfg.StreamDelayMS) * time.Millisecond

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	fmt.Fprintf(c.Writer, "retry: %d\n\n", cfg.StreamRetryTimeoutMS)
	c.Writer.Flush()

	sent := 0
	for {
		user, err := a.userService.GetUserByID(claims.UserID)
		if err != nil {
			a.logger.Warnf("推送通道加载用户失败，关闭连接: %v", err)
			return
		}

		status, err := a.notificationService.HasNewNotifications(user)
		if err != nil {
			a.logger.Errorf("推送通道查询未读状态失败: %v", err)
			return
		}

		event := dto.StreamEvent{
			ID:                          fmt.Sprintf("%s-%s", user.Email, time.Now().Format(time.RFC3339Nano)),
			HasNewGlobalNotifications:   status.HasNewGlobalNotifications,
			HasNewPersonalNotifications: status.HasNewPersonalNotifications,
		}
		c.SSEvent("notification_status", event)
		c.Writer.Flush()

		sent++
		if maxMessages > 0 && sent >= maxMessages {
			return
		}

		select {
		case <-c.Request.Context().Done():
			return
		case <-time.After(delay):
		}
	}
}
