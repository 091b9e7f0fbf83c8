package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"teamhub/internal/service"
	"teamhub/pkg/response"
)

// handleServiceError 把服务层错误映射为HTTP响应
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidFeedParams),
		errors.Is(err, service.ErrInvalidNotification),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrUsernameExists),
		errors.Is(err, service.ErrResetRequestExists):
		response.BadRequest(c, err.Error(), err)
	case errors.Is(err, service.ErrWrongPassword):
		response.Unauthorized(c, err.Error(), err)
	case errors.Is(err, service.ErrNotificationForbidden):
		response.Forbidden(c, err.Error(), err)
	case errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrResetRequestNotFound):
		response.NotFound(c, err.Error(), err)
	default:
		response.InternalError(c, "服务器内部错误", err)
	}
}
