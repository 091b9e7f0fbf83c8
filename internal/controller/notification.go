package controller

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teamhub/internal/dto"
	"teamhub/internal/middleware"
	"teamhub/internal/model"
	"teamhub/internal/service"
	"teamhub/pkg/response"
)

// NotificationApi 通知接口控制器
type NotificationApi struct {
	userService         *service.UserService
	notificationService *service.NotificationService
}

// NewNotificationApi 创建通知接口控制器
func NewNotificationApi(db *gorm.DB) *NotificationApi {
	return &NotificationApi{
		userService:         service.NewUserService(db),
		notificationService: service.NewNotificationService(db),
	}
}

// currentUser 从认证上下文加载当前用户
func (a *NotificationApi) currentUser(c *gin.Context) (*model.User, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "未登录", nil)
		return nil, false
	}
	user, err := a.userService.GetUserByID(userID)
	if err != nil {
		handleServiceError(c, err)
		return nil, false
	}
	return user, true
}

// bindFeedPage 解析分页参数，锚点缺省为请求时刻
func bindFeedPage(c *gin.Context) (time.Time, int, bool) {
	var req dto.FeedPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return time.Time{}, 0, false
	}

	anchor := time.Now()
	if req.StartingDate != nil {
		anchor = *req.StartingDate
	}
	return anchor, req.PageChunkSize, true
}

// GlobalFeedPage 按游标分页拉取全局通知信息流
func (a *NotificationApi) GlobalFeedPage(c *gin.Context) {
	a.feedPage(c, service.GlobalKind)
}

// PersonalFeedPage 按游标分页拉取个人通知信息流
func (a *NotificationApi) PersonalFeedPage(c *gin.Context) {
	a.feedPage(c, service.PersonalKind)
}

func (a *NotificationApi) feedPage(c *gin.Context, kind service.NotificationKind) {
	user, ok := a.currentUser(c)
	if !ok {
		return
	}
	anchor, chunkSize, ok := bindFeedPage(c)
	if !ok {
		return
	}

	items, err := a.notificationService.FetchFeedPage(user, kind, anchor, chunkSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "查询成功", items)
}

// GlobalFeedByLastRead 拉取全局通知已读边界之后的全部未读事件
func (a *NotificationApi) GlobalFeedByLastRead(c *gin.Context) {
	user, ok := a.currentUser(c)
	if !ok {
		return
	}

	items, err := a.notificationService.FetchGlobalFeedByLastRead(user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "查询成功", items)
}

// PersonalFeedByLastRead 拉取个人通知已读边界之后的全部未读事件
func (a *NotificationApi) PersonalFeedByLastRead(c *gin.Context) {
	user, ok := a.currentUser(c)
	if !ok {
		return
	}

	items, err := a.notificationService.FetchPersonalFeedByLastRead(user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "查询成功", items)
}

// HasNew 检查是否有未读通知
func (a *NotificationApi) HasNew(c *gin.Context) {
	user, ok := a.currentUser(c)
	if !ok {
		return
	}

	result, err := a.notificationService.HasNewNotifications(user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "查询成功", result)
}

// CreateGlobal 创建全局通知（manager及以上）
func (a *NotificationApi) CreateGlobal(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		response.Unauthorized(c, "未登录", nil)
		return
	}

	var req dto.CreateGlobalNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	notification, err := a.notificationService.CreateGlobalNotification(email, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "创建成功", notification)
}

// CreatePersonal 创建个人通知
func (a *NotificationApi) CreatePersonal(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		response.Unauthorized(c, "未登录", nil)
		return
	}

	var req dto.CreatePersonalNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	notification, err := a.notificationService.CreatePersonalNotification(email, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "创建成功", notification)
}

// DeleteGlobal 删除全局通知（admin）
func (a *NotificationApi) DeleteGlobal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := a.notificationService.DeleteGlobalNotification(id); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "删除成功", nil)
}

// DeletePersonal 删除个人通知，仅发送者本人
func (a *NotificationApi) DeletePersonal(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		response.Unauthorized(c, "未登录", nil)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := a.notificationService.DeletePersonalNotification(id, email); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "删除成功", nil)
}

// pathID 解析路径中的通知ID
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "无效的通知ID", err)
		return 0, false
	}
	return uint(id), true
}
