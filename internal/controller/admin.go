package controller

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teamhub/internal/dto"
	"teamhub/internal/model"
	"teamhub/internal/service"
	"teamhub/pkg/response"
)

// AdminApi 管理员接口控制器
type AdminApi struct {
	userService *service.UserService
}

// NewAdminApi 创建管理员接口控制器
func NewAdminApi(db *gorm.DB) *AdminApi {
	return &AdminApi{
		userService: service.NewUserService(db),
	}
}

// ListUsers 查询全部用户
func (a *AdminApi) ListUsers(c *gin.Context) {
	users, err := a.userService.ListUsers()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "查询成功", toUserResponses(users))
}

// ListUnverifiedUsers 查询待验证用户
func (a *AdminApi) ListUnverifiedUsers(c *gin.Context) {
	users, err := a.userService.ListUnverifiedUsers()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "查询成功", toUserResponses(users))
}

// VerifyUsers 批量验证用户
func (a *AdminApi) VerifyUsers(c *gin.Context) {
	var req dto.VerifyUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	verified, err := a.userService.VerifyUsers(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "验证成功", gin.H{"verified_count": verified})
}

// UpdateUserRole 修改用户角色
func (a *AdminApi) UpdateUserRole(c *gin.Context) {
	var req dto.RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	user, err := a.userService.UpdateUserRole(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "角色更新成功", service.ToUserResponse(user))
}

// ListPasswordResetRequests 查询待处理的密码重置申请
func (a *AdminApi) ListPasswordResetRequests(c *gin.Context) {
	requests, err := a.userService.ListPasswordResetRequests()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "查询成功", requests)
}

// ResetUserPassword 处理重置申请，返回生成的新密码
func (a *AdminApi) ResetUserPassword(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		response.BadRequest(c, "缺少邮箱参数", nil)
		return
	}

	newPassword, err := a.userService.ResetUserPassword(email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "密码已重置", gin.H{"new_password": newPassword})
}

// DeletePasswordResetRequest 驳回重置申请
func (a *AdminApi) DeletePasswordResetRequest(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		response.BadRequest(c, "缺少邮箱参数", nil)
		return
	}

	if err := a.userService.DeletePasswordResetRequest(email); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "已驳回重置申请", nil)
}

func toUserResponses(users []model.User) []*dto.UserResponse {
	responses := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, service.ToUserResponse(&users[i]))
	}
	return responses
}
