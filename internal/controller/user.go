package controller

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teamhub/internal/dto"
	"teamhub/internal/middleware"
	"teamhub/internal/service"
	"teamhub/pkg/response"
)

// UserApi 用户接口控制器
type UserApi struct {
	userService *service.UserService
}

// NewUserApi 创建用户接口控制器
func NewUserApi(db *gorm.DB) *UserApi {
	return &UserApi{
		userService: service.NewUserService(db),
	}
}

// Register 用户注册
func (a *UserApi) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	user, err := a.userService.Register(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "注册成功", service.ToUserResponse(user))
}

// Login 用户登录
func (a *UserApi) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	user, tokenPair, err := a.userService.Login(&req, c.ClientIP())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "登录成功", gin.H{
		"user":  service.ToUserResponse(user),
		"token": tokenPair,
	})
}

// RefreshToken 刷新令牌
func (a *UserApi) RefreshToken(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		response.Unauthorized(c, "缺少刷新令牌", nil)
		return
	}

	tokenPair, err := a.userService.RefreshToken(token)
	if err != nil {
		response.Unauthorized(c, "刷新令牌无效", err)
		return
	}
	response.Success(c, "刷新成功", tokenPair)
}

// Logout 用户登出
func (a *UserApi) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := a.userService.Logout(bearerToken(c), req.RefreshToken); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "登出成功", nil)
}

// Me 查询当前用户信息
func (a *UserApi) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "未登录", nil)
		return
	}

	user, err := a.userService.GetUserByID(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "查询成功", service.ToUserResponse(user))
}

// UpdateProfile 更新个人资料
func (a *UserApi) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "未登录", nil)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	user, err := a.userService.UpdateProfile(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "更新成功", service.ToUserResponse(user))
}

// ChangePassword 修改密码
func (a *UserApi) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "未登录", nil)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	if err := a.userService.ChangePassword(userID, &req); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "密码修改成功", nil)
}

// ForgotPassword 提交密码重置申请
func (a *UserApi) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	if err := a.userService.ForgotPassword(&req); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, "重置申请已提交，请等待管理员处理", nil)
}

// bearerToken 提取Authorization头中的令牌原文
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
