package dto

import (
	"time"
)

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=7,max=100"`
}

// LoginRequest 用户登录请求，支持用户名或邮箱
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	FullName    string `json:"full_name" binding:"omitempty,max=100"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,max=20"`
	Bio         string `json:"bio" binding:"omitempty,max=500"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=7,max=100"`
}

// ForgotPasswordRequest 密码重置申请请求
type ForgotPasswordRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"omitempty,max=255"`
}

// RoleUpdateRequest 管理员修改用户角色请求
type RoleUpdateRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,role"`
}

// VerifyUsersRequest 管理员批量验证用户请求
type VerifyUsersRequest struct {
	Emails []string `json:"emails" binding:"required,min=1,dive,email"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID                         uint      `json:"id"`
	Username                   string    `json:"username"`
	Email                      string    `json:"email"`
	Role                       string    `json:"role"`
	FullName                   string    `json:"full_name"`
	PhoneNumber                string    `json:"phone_number"`
	Bio                        string    `json:"bio"`
	IsVerified                 bool      `json:"is_verified"`
	LastGlobalNotificationAt   time.Time `json:"last_global_notification_at"`
	LastPersonalNotificationAt time.Time `json:"last_personal_notification_at"`
	CreatedAt                  time.Time `json:"created_at"`
}
